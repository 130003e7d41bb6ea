package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func doRequest(cfg Config, mutate func(*http.Request)) (*httptest.ResponseRecorder, uuid.UUID) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mutate(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := Middleware(cfg)(func(c echo.Context) error {
		seen = UserIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func TestMiddlewareBearerToken(t *testing.T) {
	actor := uuid.New()
	rec, seen := doRequest(Config{SigningKey: testKey}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signedToken(t, actor.String()))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != actor {
		t.Errorf("expected actor %s, got %s", actor, seen)
	}
}

func TestMiddlewareBadToken(t *testing.T) {
	rec, _ := doRequest(Config{SigningKey: testKey}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareNonUUIDSubject(t *testing.T) {
	rec, _ := doRequest(Config{SigningKey: testKey}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signedToken(t, "alice"))
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareDevHeader(t *testing.T) {
	actor := uuid.New()
	rec, seen := doRequest(Config{DevMode: true}, func(r *http.Request) {
		r.Header.Set("X-User-ID", actor.String())
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != actor {
		t.Errorf("expected actor %s, got %s", actor, seen)
	}
}

func TestMiddlewareDevHeaderIgnoredInProduction(t *testing.T) {
	rec, _ := doRequest(Config{DevMode: false}, func(r *http.Request) {
		r.Header.Set("X-User-ID", uuid.New().String())
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareMissingCredentials(t *testing.T) {
	rec, _ := doRequest(Config{DevMode: true}, func(*http.Request) {})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil, got %s", got)
	}
}

func TestWithUserID(t *testing.T) {
	actor := uuid.New()
	ctx := WithUserID(context.Background(), actor)
	if got := UserIDFromContext(ctx); got != actor {
		t.Errorf("expected %s, got %s", actor, got)
	}
}
