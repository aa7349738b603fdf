package facility

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
	api.POST("/rooms", h.CreateRoom)
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:id/stations", h.ListRoomStations)
	api.POST("/stations", h.CreateStation)
	api.GET("/stations", h.ListStations)
	api.GET("/stations/:id", h.GetStation)
	api.GET("/facility/config", h.GetConfig)
	api.PUT("/facility/config", h.UpdateConfig)
}

func (h *Handler) CreateRoom(c echo.Context) error {
	var r Room
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRoom(c.Request().Context(), &r); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return err
	}
	if rooms == nil {
		rooms = []*Room{}
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *Handler) CreateStation(c echo.Context) error {
	var s Station
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateStation(c.Request().Context(), &s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetStation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	s, err := h.svc.GetStation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) ListStations(c echo.Context) error {
	return h.listStations(c, uuid.Nil)
}

func (h *Handler) ListRoomStations(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return h.listStations(c, id)
}

func (h *Handler) listStations(c echo.Context, roomID uuid.UUID) error {
	stations, err := h.svc.ListStations(c.Request().Context(), roomID)
	if err != nil {
		return err
	}
	if stations == nil {
		stations = []*Station{}
	}
	return c.JSON(http.StatusOK, stations)
}

func (h *Handler) GetConfig(c echo.Context) error {
	cfg, err := h.svc.GetConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) UpdateConfig(c echo.Context) error {
	var cfg Config
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateConfig(c.Request().Context(), &cfg); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}
