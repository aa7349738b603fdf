package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

// Role is the tag carried by every account. It selects which profile
// variant the account holds.
type Role string

const (
	RolePhysician Role = "physician"
	RoleNurse     Role = "nurse"
	RoleAuxNurse  Role = "aux_nurse"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePhysician, RoleNurse, RoleAuxNurse, RoleAdmin:
		return true
	}
	return false
}

// Physician maps to the physician table.
type Physician struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AccountID     uuid.UUID `db:"account_id" json:"account_id"`
	LicenseNumber int       `db:"license_number" json:"license_number"`
	Supervisor    bool      `db:"supervisor" json:"supervisor"`
}

// Nurse maps to the nurse table. Supervisor marks a nurse supervisor.
type Nurse struct {
	ID         uuid.UUID `db:"id" json:"id"`
	AccountID  uuid.UUID `db:"account_id" json:"account_id"`
	Supervisor bool      `db:"supervisor" json:"supervisor"`
}

type AuxNurse struct {
	ID        uuid.UUID `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
}

type AdminStaff struct {
	ID        uuid.UUID `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
}

// Account maps to the account table. Exactly one profile field is set and it
// matches Role.
type Account struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PersonID       uuid.UUID `db:"person_id" json:"person_id"`
	Role           Role      `db:"role" json:"role"`
	Login          string    `db:"login" json:"login"`
	CredentialHash string    `db:"credential_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Person    *person.Person `json:"person,omitempty"`
	Physician *Physician     `json:"physician,omitempty"`
	Nurse     *Nurse         `json:"nurse,omitempty"`
	AuxNurse  *AuxNurse      `json:"aux_nurse,omitempty"`
	Admin     *AdminStaff    `json:"admin,omitempty"`
}

// ProfileRole returns the role of the populated profile, or "" when the
// account has none.
func (a *Account) ProfileRole() Role {
	switch {
	case a.Physician != nil:
		return RolePhysician
	case a.Nurse != nil:
		return RoleNurse
	case a.AuxNurse != nil:
		return RoleAuxNurse
	case a.Admin != nil:
		return RoleAdmin
	}
	return ""
}

// Validate checks the role tag and its pairing with the profile variant.
func (a *Account) Validate() error {
	if !a.Role.Valid() {
		return apperr.Invalid("role", "must be one of physician, nurse, aux_nurse, admin")
	}
	populated := 0
	for _, set := range []bool{a.Physician != nil, a.Nurse != nil, a.AuxNurse != nil, a.Admin != nil} {
		if set {
			populated++
		}
	}
	switch {
	case populated == 0:
		return apperr.Invalid("role", "account holds no "+string(a.Role)+" profile")
	case populated > 1:
		return apperr.Invalid("role", "account holds more than one profile")
	}
	if pr := a.ProfileRole(); pr != a.Role {
		return apperr.Invalid("role", "profile "+string(pr)+" does not match role "+string(a.Role))
	}
	return nil
}

type RegisterAccountInput struct {
	Person     person.Person `json:"person"`
	Role       Role          `json:"role"`
	Login      string        `json:"login"`
	Credential string        `json:"credential"`
}

type RegisterPhysicianInput struct {
	RegisterAccountInput
	LicenseNumber int  `json:"license_number"`
	Supervisor    bool `json:"supervisor"`
}

type RegisterNurseInput struct {
	RegisterAccountInput
	Supervisor bool `json:"supervisor"`
}

// UpdateAccountInput replaces the account and its person. An empty Role
// keeps the current one; an empty Credential keeps the current hash.
type UpdateAccountInput struct {
	AccountID  uuid.UUID     `json:"-"`
	Person     person.Person `json:"person"`
	Role       Role          `json:"role"`
	Login      string        `json:"login"`
	Credential string        `json:"credential"`
}
