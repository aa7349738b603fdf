package person

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Persons are created through the staff and patient cascades; this surface
// only reads, corrects and answers uniqueness probes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/persons/exists", h.Exists)
	api.GET("/persons/:id", h.GetPerson)
	api.PUT("/persons/:id", h.UpdatePerson)
}

func (h *Handler) GetPerson(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPerson(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePerson(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Person
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePerson(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Exists answers ?email= or ?national_id=.
func (h *Handler) Exists(c echo.Context) error {
	ctx := c.Request().Context()
	if email := c.QueryParam("email"); email != "" {
		ok, err := h.svc.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]bool{"exists": ok})
	}
	if raw := c.QueryParam("national_id"); raw != "" {
		nid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid national_id")
		}
		ok, err := h.svc.ExistsByNationalID(ctx, nid)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]bool{"exists": ok})
	}
	return echo.NewHTTPError(http.StatusBadRequest, "email or national_id is required")
}
