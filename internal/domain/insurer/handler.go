package insurer

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/insurers", h.CreateInsurer)
	api.GET("/insurers", h.ListInsurers)
	api.GET("/insurers/:id", h.GetInsurer)
}

func (h *Handler) CreateInsurer(c echo.Context) error {
	var i Insurer
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateInsurer(c.Request().Context(), &i); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) GetInsurer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	i, err := h.svc.GetInsurer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListInsurers(c echo.Context) error {
	items, err := h.svc.ListInsurers(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Insurer{}
	}
	return c.JSON(http.StatusOK, items)
}
