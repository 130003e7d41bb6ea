package linkage

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/internal/domain/patient"
	"github.com/clinrec/clinrec/internal/domain/proforma"
	"github.com/clinrec/clinrec/internal/platform/identity"
	"github.com/clinrec/clinrec/pkg/pagination"
)

// Handler owns encounter creation: every new proforma goes through the saga
// so a complex case can never be persisted without its file linkage running.
type Handler struct {
	coordinator *Coordinator
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/proformas", h.CreateProforma)
	api.GET("/linkage/sagas", h.ListSagas)
}

func (h *Handler) CreateProforma(c echo.Context) error {
	var p proforma.Proforma
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.AuthorID == uuid.Nil {
		p.AuthorID = identity.UserIDFromContext(c.Request().Context())
	}

	result, err := h.coordinator.LinkEncounter(c.Request().Context(), &p)
	if err != nil {
		switch {
		case errors.Is(err, proforma.ErrValidation), errors.Is(err, proforma.ErrInvalidDecision):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, patient.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) ListSagas(c echo.Context) error {
	pg := pagination.FromContext(c)
	sagas, total, err := h.coordinator.ListSagas(c.Request().Context(), c.QueryParam("state"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sagas, total, pg.Limit, pg.Offset))
}
