package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

// Shift is one of the facility's three daily operating shifts.
type Shift string

const (
	ShiftMorning   Shift = "M"
	ShiftAfternoon Shift = "A"
	ShiftEvening   Shift = "E"
)

var shiftOrder = map[Shift]int{ShiftMorning: 0, ShiftAfternoon: 1, ShiftEvening: 2}

func (s Shift) Valid() bool {
	_, ok := shiftOrder[s]
	return ok
}

// Before reports whether s runs earlier in the day than o.
func (s Shift) Before(o Shift) bool {
	return shiftOrder[s] < shiftOrder[o]
}

const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar day. Schedule dates carry no time
// zone; the day is taken as written.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Invalid("date", "must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// Key identifies a schedule entry: one patient per shift per day.
type Key struct {
	Date      time.Time `json:"date"`
	Shift     Shift     `json:"shift"`
	PatientID uuid.UUID `json:"patient_id"`
}

func (k Key) Validate() error {
	if k.Date.IsZero() {
		return apperr.Required("date")
	}
	if !k.Shift.Valid() {
		return apperr.Invalid("shift", "must be one of M, A, E")
	}
	if k.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	return nil
}

func (k Key) String() string {
	return k.Date.Format(DateLayout) + "/" + string(k.Shift) + "/" + k.PatientID.String()
}

// Entry maps to the schedule_entry table. Weights are in grams.
type Entry struct {
	Date                 time.Time `db:"entry_date" json:"date"`
	Shift                Shift     `db:"shift" json:"shift"`
	PatientID            uuid.UUID `db:"patient_id" json:"patient_id"`
	StationID            uuid.UUID `db:"station_id" json:"station_id"`
	ArrivalWeightGrams   *int      `db:"arrival_weight_g" json:"arrival_weight_g,omitempty"`
	DepartureWeightGrams *int      `db:"departure_weight_g" json:"departure_weight_g,omitempty"`
	NoShow               bool      `db:"no_show" json:"no_show"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

func (e *Entry) Key() Key {
	return Key{Date: e.Date, Shift: e.Shift, PatientID: e.PatientID}
}

func validWeight(field string, w *int) error {
	if w != nil && *w <= 0 {
		return apperr.Invalid(field, "must be positive")
	}
	return nil
}

func (e *Entry) Validate() error {
	if err := e.Key().Validate(); err != nil {
		return err
	}
	if e.StationID == uuid.Nil {
		return apperr.Required("station_id")
	}
	if err := validWeight("arrival_weight_g", e.ArrivalWeightGrams); err != nil {
		return err
	}
	return validWeight("departure_weight_g", e.DepartureWeightGrams)
}

// UpdateEntryInput carries the mutable fields; nil leaves a field as is.
type UpdateEntryInput struct {
	ArrivalWeightGrams   *int  `json:"arrival_weight_g"`
	DepartureWeightGrams *int  `json:"departure_weight_g"`
	NoShow               *bool `json:"no_show"`
}

// RosterRow is one line of the printable daily roster.
type RosterRow struct {
	Shift                Shift
	Room                 string
	Station              string
	PatientName          string
	NationalID           int64
	ArrivalWeightGrams   *int
	DepartureWeightGrams *int
	NoShow               bool
}
