package orders

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/treatment-orders", h.CreateOrder)
	api.GET("/treatment-orders/:id", h.GetOrder)
	api.GET("/patients/:id/treatment-orders", h.ListOrders)
	api.GET("/patients/:id/treatment-orders/current", h.CurrentOrder)

	api.POST("/study-coordinations", h.CreateStudyCoordination)
	api.POST("/study-coordinations/:id/close", h.CloseStudyCoordination)
	api.GET("/patients/:id/study-coordinations", h.ListStudyCoordinations)

	api.POST("/change-requests", h.CreateChangeRequest)
	api.POST("/change-requests/:id/close", h.CloseChangeRequest)
	api.GET("/patients/:id/change-requests", h.ListChangeRequests)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func openOnly(c echo.Context) bool {
	v, _ := strconv.ParseBool(c.QueryParam("open"))
	return v
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var o TreatmentOrder
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOrder(c.Request().Context(), &o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	o, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOrders(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListOrdersByPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*TreatmentOrder{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CurrentOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return apperr.Invalid("year", "must be a number")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return apperr.Invalid("month", "must be a number")
	}
	o, err := h.svc.CurrentOrder(c.Request().Context(), id, year, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) CreateStudyCoordination(c echo.Context) error {
	var sc StudyCoordination
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateStudyCoordination(c.Request().Context(), &sc); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) CloseStudyCoordination(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sc, err := h.svc.CloseStudyCoordination(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) ListStudyCoordinations(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListStudyCoordinations(c.Request().Context(), id, openOnly(c))
	if err != nil {
		return err
	}
	if out == nil {
		out = []*StudyCoordination{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateChangeRequest(c echo.Context) error {
	var cr ChangeRequest
	if err := c.Bind(&cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateChangeRequest(c.Request().Context(), &cr); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *Handler) CloseChangeRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	cr, err := h.svc.CloseChangeRequest(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) ListChangeRequests(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListChangeRequests(c.Request().Context(), id, openOnly(c))
	if err != nil {
		return err
	}
	if out == nil {
		out = []*ChangeRequest{}
	}
	return c.JSON(http.StatusOK, out)
}
