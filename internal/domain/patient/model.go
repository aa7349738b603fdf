package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

var (
	validBloodGroups = map[string]bool{"A": true, "B": true, "AB": true, "O": true}
	validRh          = map[string]bool{"+": true, "-": true}
)

// Patient maps to the patient table. Person is populated on reads and is
// required on writes.
type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PersonID       uuid.UUID `db:"person_id" json:"person_id"`
	InsurerID      uuid.UUID `db:"insurer_id" json:"insurer_id"`
	PhysicianID    uuid.UUID `db:"physician_id" json:"physician_id"`
	AuxNurseID     uuid.UUID `db:"aux_nurse_id" json:"aux_nurse_id"`
	HeightCM       int       `db:"height_cm" json:"height_cm"`
	PatientType    string    `db:"patient_type" json:"patient_type"`
	VascularAccess string    `db:"vascular_access" json:"vascular_access"`
	BloodGroup     string    `db:"blood_group" json:"blood_group"`
	Rh             string    `db:"rh" json:"rh"`
	FirstDialysis  time.Time `db:"first_dialysis" json:"first_dialysis"`
	Diabetic       bool      `db:"diabetic" json:"diabetic"`
	Hypertensive   bool      `db:"hypertensive" json:"hypertensive"`
	Allergic       bool      `db:"allergic" json:"allergic"`
	FundNumber     *int64    `db:"fund_number" json:"fund_number,omitempty"`
	CapillaryWash  bool      `db:"capillary_wash" json:"capillary_wash"`
	StationType    string    `db:"station_type" json:"station_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Person *person.Person `json:"person,omitempty"`
}

// Validate checks the clinical fields and the presence of references.
// Reference existence is checked by the service and the store.
func (p *Patient) Validate() error {
	if p.Person == nil {
		return apperr.Required("person")
	}
	refs := []struct {
		field string
		id    uuid.UUID
	}{
		{"insurer_id", p.InsurerID},
		{"physician_id", p.PhysicianID},
		{"aux_nurse_id", p.AuxNurseID},
	}
	for _, r := range refs {
		if r.id == uuid.Nil {
			return apperr.Required(r.field)
		}
	}
	if p.HeightCM <= 0 {
		return apperr.Invalid("height_cm", "must be positive")
	}
	texts := []struct{ field, value string }{
		{"patient_type", p.PatientType},
		{"vascular_access", p.VascularAccess},
		{"station_type", p.StationType},
	}
	for _, t := range texts {
		if t.value == "" {
			return apperr.Required(t.field)
		}
		if len(t.value) > 20 {
			return apperr.Invalid(t.field, "is too long")
		}
	}
	if !validBloodGroups[p.BloodGroup] {
		return apperr.Invalid("blood_group", "must be one of A, B, AB, O")
	}
	if !validRh[p.Rh] {
		return apperr.Invalid("rh", "must be + or -")
	}
	if p.FirstDialysis.IsZero() {
		return apperr.Required("first_dialysis")
	}
	if p.FundNumber != nil && *p.FundNumber <= 0 {
		return apperr.Invalid("fund_number", "must be positive")
	}
	return nil
}
