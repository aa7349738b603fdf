package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

// TreatmentOrder is the physician's monthly dialysis prescription for a patient.
type TreatmentOrder struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientID         uuid.UUID `db:"patient_id" json:"patient_id"`
	PhysicianID       uuid.UUID `db:"physician_id" json:"physician_id"`
	Year              int       `db:"valid_year" json:"year"`
	Month             int       `db:"valid_month" json:"month"`
	TargetMinutes     int       `db:"target_minutes" json:"target_minutes"`
	DryWeightGrams    int       `db:"dry_weight_g" json:"dry_weight_g"`
	PumpFlow          int       `db:"pump_flow" json:"pump_flow"`
	BathFlow          int       `db:"bath_flow" json:"bath_flow"`
	Bicarbonate       int       `db:"bicarbonate" json:"bicarbonate"`
	AnticoagulantDose int       `db:"anticoagulant_dose" json:"anticoagulant_dose"`
	Washes            string    `db:"washes" json:"washes"`
	DialyzerType      string    `db:"dialyzer_type" json:"dialyzer_type"`
	EPOWeekly         int       `db:"epo_weekly" json:"epo_weekly"`
	EPOSession1       int       `db:"epo_session1" json:"epo_session1"`
	EPOSession2       int       `db:"epo_session2" json:"epo_session2"`
	EPOSession3       int       `db:"epo_session3" json:"epo_session3"`
	Iron              string    `db:"iron" json:"iron"`
	Sodium            int       `db:"sodium" json:"sodium"`
	PostHDMedication  string    `db:"post_hd_medication" json:"post_hd_medication"`
	Vaccines          string    `db:"vaccines" json:"vaccines"`
	LabExams          string    `db:"lab_exams" json:"lab_exams"`
	Notes             string    `db:"notes" json:"notes"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Before reports whether the order's period precedes (year, month).
func (o *TreatmentOrder) Before(year, month int) bool {
	return o.Year < year || (o.Year == year && o.Month < month)
}

func (o *TreatmentOrder) Validate() error {
	if o.PatientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	if o.PhysicianID == uuid.Nil {
		return apperr.Required("physician_id")
	}
	if err := validPeriod(o.Year, o.Month); err != nil {
		return err
	}
	if o.TargetMinutes <= 0 {
		return apperr.Invalid("target_minutes", "must be positive")
	}
	if o.DryWeightGrams <= 0 {
		return apperr.Invalid("dry_weight_g", "must be positive")
	}
	nonNegative := []struct {
		field string
		v     int
	}{
		{"pump_flow", o.PumpFlow},
		{"bath_flow", o.BathFlow},
		{"bicarbonate", o.Bicarbonate},
		{"anticoagulant_dose", o.AnticoagulantDose},
		{"epo_weekly", o.EPOWeekly},
		{"epo_session1", o.EPOSession1},
		{"epo_session2", o.EPOSession2},
		{"epo_session3", o.EPOSession3},
		{"sodium", o.Sodium},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return apperr.Invalid(n.field, "must not be negative")
		}
	}
	if len(o.Washes) > 45 {
		return apperr.Invalid("washes", "is too long")
	}
	if len(o.DialyzerType) > 20 {
		return apperr.Invalid("dialyzer_type", "is too long")
	}
	if len(o.Iron) > 45 {
		return apperr.Invalid("iron", "is too long")
	}
	return nil
}

func validPeriod(year, month int) error {
	if year < 2000 {
		return apperr.Invalid("year", "must be 2000 or later")
	}
	if month < 1 || month > 12 {
		return apperr.Invalid("month", "must be between 1 and 12")
	}
	return nil
}

// StudyCoordination lists studies to arrange for a patient until closed.
type StudyCoordination struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	AccountID uuid.UUID  `db:"account_id" json:"account_id"`
	Studies   string     `db:"studies" json:"studies"`
	Open      bool       `db:"open" json:"open"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// ChangeRequest asks for a change to a patient's treatment until closed.
type ChangeRequest struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	AccountID uuid.UUID  `db:"account_id" json:"account_id"`
	Request   string     `db:"request" json:"request"`
	Open      bool       `db:"open" json:"open"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

func validFollowUp(patientID, accountID uuid.UUID, textField, text string) error {
	if patientID == uuid.Nil {
		return apperr.Required("patient_id")
	}
	if accountID == uuid.Nil {
		return apperr.Required("account_id")
	}
	if strings.TrimSpace(text) == "" {
		return apperr.Required(textField)
	}
	return nil
}
