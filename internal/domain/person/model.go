package person

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

// Kind partitions persons into staff and patients. A person is never both.
type Kind string

const (
	KindStaff   Kind = "staff"
	KindPatient Kind = "patient"
)

func (k Kind) Valid() bool {
	return k == KindStaff || k == KindPatient
}

// Person maps to the person table.
type Person struct {
	ID           uuid.UUID `db:"id" json:"id"`
	GivenNames   string    `db:"given_names" json:"given_names"`
	Surnames     string    `db:"surnames" json:"surnames"`
	Email        string    `db:"email" json:"email"`
	NationalID   int64     `db:"national_id" json:"national_id"`
	Phone1       string    `db:"phone1" json:"phone1"`
	Phone2       *string   `db:"phone2" json:"phone2,omitempty"`
	Phone3       *string   `db:"phone3" json:"phone3,omitempty"`
	Address      string    `db:"address" json:"address"`
	Locality     string    `db:"locality" json:"locality"`
	Region       string    `db:"region" json:"region"`
	Country      string    `db:"country" json:"country"`
	BirthDate    time.Time `db:"birth_date" json:"birth_date"`
	Sex          string    `db:"sex" json:"sex"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	Active       bool      `db:"active" json:"active"`
	Kind         Kind      `db:"kind" json:"kind"`
}

var validSex = map[string]bool{"m": true, "f": true, "x": true}

// Normalize trims text fields and lowercases email and sex.
func (p *Person) Normalize() {
	p.GivenNames = strings.TrimSpace(p.GivenNames)
	p.Surnames = strings.TrimSpace(p.Surnames)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone1 = strings.TrimSpace(p.Phone1)
	p.Address = strings.TrimSpace(p.Address)
	p.Locality = strings.TrimSpace(p.Locality)
	p.Region = strings.TrimSpace(p.Region)
	p.Country = strings.TrimSpace(p.Country)
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
}

// Validate checks required fields and column limits.
func (p *Person) Validate() error {
	required := []struct {
		field, value string
		max          int
	}{
		{"given_names", p.GivenNames, 45},
		{"surnames", p.Surnames, 45},
		{"email", p.Email, 255},
		{"phone1", p.Phone1, 20},
		{"address", p.Address, 0},
		{"locality", p.Locality, 40},
		{"region", p.Region, 40},
		{"country", p.Country, 40},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Required(r.field)
		}
		if r.max > 0 && len(r.value) > r.max {
			return apperr.Invalid(r.field, "is too long")
		}
	}
	if !strings.Contains(p.Email, "@") {
		return apperr.Invalid("email", "must contain @")
	}
	if p.NationalID <= 0 {
		return apperr.Invalid("national_id", "must be a positive number")
	}
	if p.Phone2 != nil && len(*p.Phone2) > 20 {
		return apperr.Invalid("phone2", "is too long")
	}
	if p.Phone3 != nil && len(*p.Phone3) > 20 {
		return apperr.Invalid("phone3", "is too long")
	}
	if p.BirthDate.IsZero() {
		return apperr.Required("birth_date")
	}
	if !validSex[p.Sex] {
		return apperr.Invalid("sex", "must be one of m, f, x")
	}
	if !p.Kind.Valid() {
		return apperr.Invalid("kind", "must be staff or patient")
	}
	return nil
}
