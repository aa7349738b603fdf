package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nephro/dialysis/internal/domain/scheduling"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/sessions", h.RecordSession)
	api.GET("/sessions/:id", h.GetSession)
	api.GET("/patients/:id/sessions", h.ListSessions)

	api.POST("/sessions/:id/vitals", h.AppendVitals)
	api.GET("/sessions/:id/vitals", h.ListVitals)
	api.POST("/sessions/:id/recirculation-tests", h.RecordRecirculationTest)
	api.GET("/sessions/:id/recirculation-tests", h.ListRecirculationTests)

	api.POST("/patients/:id/dialyzers", h.RegisterDialyzer)
	api.GET("/patients/:id/dialyzers", h.ListDialyzers)
	api.POST("/dialyzers/:id/actions", h.RecordDialyzerAction)
	api.GET("/dialyzers/:id/actions", h.ListDialyzerActions)
	api.PUT("/dialyzers/:id/recirculation-tests/:test_id", h.LinkRecirculationTest)
	api.GET("/dialyzers/:id/recirculation-tests", h.ListLinkedTests)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// sessionRequest takes the session date as a plain calendar day.
type sessionRequest struct {
	TreatmentSession
	Date string `json:"date"`
}

func (h *Handler) RecordSession(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return err
	}
	ts := req.TreatmentSession
	ts.Date = date
	if err := h.svc.RecordSession(c.Request().Context(), &ts); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ts)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ts, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *Handler) ListSessions(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListSessionsByPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*TreatmentSession{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) AppendVitals(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var v VitalsCheck
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.SessionID = id
	if err := h.svc.AppendVitals(c.Request().Context(), &v); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListVitals(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListVitals(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*VitalsCheck{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RecordRecirculationTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var t RecirculationTest
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.SessionID = id
	if err := h.svc.RecordRecirculationTest(c.Request().Context(), &t); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListRecirculationTests(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListRecirculationTests(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*RecirculationTest{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RegisterDialyzer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.RegisterDialyzer(c.Request().Context(), id, req.Type)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListDialyzers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListDialyzers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*Dialyzer{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RecordDialyzerAction(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var a DialyzerAction
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.DialyzerID = id
	if err := h.svc.RecordDialyzerAction(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListDialyzerActions(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListDialyzerActions(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*DialyzerAction{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) LinkRecirculationTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	testID, err := pathID(c, "test_id")
	if err != nil {
		return err
	}
	if err := h.svc.LinkDialyzerToRecirculationTest(c.Request().Context(), id, testID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListLinkedTests(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListLinkedTests(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if out == nil {
		out = []*RecirculationTest{}
	}
	return c.JSON(http.StatusOK, out)
}
