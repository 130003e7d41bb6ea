// Package identity resolves the acting user for every request. Authorization
// policy lives upstream (gateway); the services here only need a stable actor
// id to stamp on mutating writes and movement records.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const UserIDKey contextKey = "user_id"

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Config controls how the middleware resolves the actor.
type Config struct {
	// SigningKey verifies HS256 bearer tokens; the subject claim is the actor id.
	SigningKey []byte
	// DevMode accepts an X-User-ID header when no bearer token is present.
	DevMode bool
}

// Middleware extracts the acting user id and stores it on the request context.
// Requests that cannot be attributed to a user are rejected; every mutating
// call downstream relies on this id.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := resolve(c, cfg)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", actor.String())
			return next(c)
		}
	}
}

func resolve(c echo.Context, cfg Config) (uuid.UUID, error) {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return fromToken(strings.TrimPrefix(header, "Bearer "), cfg.SigningKey)
	}

	if cfg.DevMode {
		if raw := c.Request().Header.Get("X-User-ID"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid X-User-ID")
			}
			return id, nil
		}
	}

	return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
}

func fromToken(raw string, key []byte) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "token subject is not a user id")
	}
	return id, nil
}

// UserIDFromContext returns the acting user id, or uuid.Nil when the request
// carried no identity (background jobs pass their own actor explicitly).
func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}

// WithUserID returns a context carrying the given actor id. Used by tests and
// by background jobs that act as a system user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}
