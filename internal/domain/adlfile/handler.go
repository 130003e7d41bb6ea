package adlfile

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/internal/platform/identity"
	"github.com/clinrec/clinrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/adl-files/:id", h.GetFile)
	api.POST("/adl-files/:id/store", h.StoreFile)
	api.POST("/adl-files/:id/retrieve", h.RetrieveFile)
	api.POST("/adl-files/:id/return", h.ReturnFile)
	api.POST("/adl-files/:id/archive", h.ArchiveFile)
	api.DELETE("/adl-files/:id", h.DeleteFile)
	api.GET("/adl-files/:id/movements", h.MovementHistory)
	api.GET("/patients/:id/adl-files", h.ListByPatient)
}

func (h *Handler) GetFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFile(c.Request().Context(), id)
	if err != nil {
		return fileError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	files, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(files, total, pg.Limit, pg.Offset))
}

func (h *Handler) StoreFile(c echo.Context) error {
	return h.transition(c, h.svc.StoreFile)
}

func (h *Handler) RetrieveFile(c echo.Context) error {
	return h.transition(c, h.svc.RetrieveFile)
}

func (h *Handler) ReturnFile(c echo.Context) error {
	return h.transition(c, h.svc.ReturnFile)
}

func (h *Handler) ArchiveFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := identity.UserIDFromContext(c.Request().Context())

	var body struct {
		Note *string `json:"note"`
	}
	// An empty body is fine; the note is optional.
	_ = c.Bind(&body)

	f, err := h.svc.ArchiveFile(c.Request().Context(), id, actor, body.Note)
	if err != nil {
		return fileError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := identity.UserIDFromContext(c.Request().Context())

	f, err := h.svc.DeleteFile(c.Request().Context(), id, actor, c.QueryParam("reason"))
	if err != nil {
		return fileError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) MovementHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	movements, err := h.svc.MovementHistory(c.Request().Context(), id)
	if err != nil {
		return fileError(err)
	}
	return c.JSON(http.StatusOK, movements)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, id, actor uuid.UUID) (*ADLFile, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := identity.UserIDFromContext(c.Request().Context())

	f, err := op(c.Request().Context(), id, actor)
	if err != nil {
		return fileError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func fileError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "adl file not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrAlreadyArchived):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
