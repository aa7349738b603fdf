package facility

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

type Room struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// Station is a dialysis chair or bed inside a room.
type Station struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RoomID      uuid.UUID `db:"room_id" json:"room_id"`
	Label       string    `db:"label" json:"label"`
	Special     bool      `db:"special" json:"special"`
	StationType string    `db:"station_type" json:"station_type"`
}

func (s *Station) Validate() error {
	s.Label = strings.TrimSpace(s.Label)
	s.StationType = strings.TrimSpace(s.StationType)
	if s.RoomID == uuid.Nil {
		return apperr.Required("room_id")
	}
	if s.Label == "" {
		return apperr.Required("label")
	}
	if len(s.Label) > 20 {
		return apperr.Invalid("label", "is too long")
	}
	if s.StationType == "" {
		return apperr.Required("station_type")
	}
	if len(s.StationType) > 20 {
		return apperr.Invalid("station_type", "is too long")
	}
	return nil
}

// Config is the single facility_config row.
type Config struct {
	AdminName       string    `db:"admin_name" json:"admin_name"`
	AdminEmail      string    `db:"admin_email" json:"admin_email"`
	AdminPhone      string    `db:"admin_phone" json:"admin_phone"`
	ScaleAccessCode int       `db:"scale_access_code" json:"scale_access_code"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Config) Validate() error {
	c.AdminName = strings.TrimSpace(c.AdminName)
	c.AdminEmail = strings.ToLower(strings.TrimSpace(c.AdminEmail))
	c.AdminPhone = strings.TrimSpace(c.AdminPhone)
	if c.AdminName == "" {
		return apperr.Required("admin_name")
	}
	if len(c.AdminName) > 60 {
		return apperr.Invalid("admin_name", "is too long")
	}
	if !strings.Contains(c.AdminEmail, "@") || len(c.AdminEmail) > 60 {
		return apperr.Invalid("admin_email", "must be an address of at most 60 characters")
	}
	if len(c.AdminPhone) > 20 {
		return apperr.Invalid("admin_phone", "is too long")
	}
	if c.ScaleAccessCode < 0 {
		return apperr.Invalid("scale_access_code", "must not be negative")
	}
	return nil
}
