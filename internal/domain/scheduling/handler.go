package scheduling

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/schedule", h.CreateEntry)
	api.GET("/schedule/:date", h.ListByDate)
	api.GET("/schedule/:date/roster", h.ExportRoster)
	api.GET("/schedule/:date/:shift/:patient_id", h.GetEntry)
	api.PATCH("/schedule/:date/:shift/:patient_id", h.UpdateEntry)
	api.GET("/patients/:id/schedule", h.ListByPatient)
}

// entryRequest accepts the date as a plain calendar day.
type entryRequest struct {
	Date                 string    `json:"date"`
	Shift                Shift     `json:"shift"`
	PatientID            uuid.UUID `json:"patient_id"`
	StationID            uuid.UUID `json:"station_id"`
	ArrivalWeightGrams   *int      `json:"arrival_weight_g"`
	DepartureWeightGrams *int      `json:"departure_weight_g"`
	NoShow               bool      `json:"no_show"`
}

func (h *Handler) CreateEntry(c echo.Context) error {
	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return err
	}
	e := &Entry{
		Date:                 date,
		Shift:                req.Shift,
		PatientID:            req.PatientID,
		StationID:            req.StationID,
		ArrivalWeightGrams:   req.ArrivalWeightGrams,
		DepartureWeightGrams: req.DepartureWeightGrams,
		NoShow:               req.NoShow,
	}
	if err := h.svc.CreateEntry(c.Request().Context(), e); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func keyFromPath(c echo.Context) (Key, error) {
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return Key{}, err
	}
	pid, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return Key{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	return Key{Date: date, Shift: Shift(c.Param("shift")), PatientID: pid}, nil
}

func (h *Handler) GetEntry(c echo.Context) error {
	k, err := keyFromPath(c)
	if err != nil {
		return err
	}
	e, err := h.svc.GetEntry(c.Request().Context(), k)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) UpdateEntry(c echo.Context) error {
	k, err := keyFromPath(c)
	if err != nil {
		return err
	}
	var in UpdateEntryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.UpdateEntry(c.Request().Context(), k, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListByDate(c echo.Context) error {
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return err
	}
	entries, err := h.svc.ListByDate(c.Request().Context(), date)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, err := ParseDate(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := ParseDate(c.QueryParam("to"))
	if err != nil {
		return err
	}
	entries, err := h.svc.ListByPatient(c.Request().Context(), id, from, to)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ExportRoster(c echo.Context) error {
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return err
	}
	out, err := h.svc.ExportRoster(c.Request().Context(), date)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="roster-`+date.Format(DateLayout)+`.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, out)
}
