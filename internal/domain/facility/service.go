package facility

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/clock"
)

type Service struct {
	repo  Repository
	clock clock.Clock
	log   zerolog.Logger
}

func NewService(repo Repository, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{repo: repo, clock: clk, log: logger.With().Str("component", "facility").Logger()}
}

func normalizeRoomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Required("name")
	}
	if len(name) > 45 {
		return "", apperr.Invalid("name", "is too long")
	}
	return name, nil
}

// -- Rooms --

func (s *Service) CreateRoom(ctx context.Context, r *Room) error {
	name, err := normalizeRoomName(r.Name)
	if err != nil {
		return err
	}
	r.Name = name
	return s.repo.CreateRoom(ctx, r)
}

// EnsureRoom returns the room called name, creating it when absent.
func (s *Service) EnsureRoom(ctx context.Context, name string) (*Room, bool, error) {
	name, err := normalizeRoomName(name)
	if err != nil {
		return nil, false, err
	}
	if r, err := s.repo.GetRoomByName(ctx, name); err == nil {
		return r, false, nil
	} else if !apperr.IsNotFound(err) {
		return nil, false, err
	}
	r := &Room{Name: name}
	if err := s.repo.CreateRoom(ctx, r); err != nil {
		if _, dup := apperr.IsDuplicate(err); dup {
			existing, err := s.repo.GetRoomByName(ctx, name)
			return existing, false, err
		}
		return nil, false, err
	}
	return r, true, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]*Room, error) {
	return s.repo.ListRooms(ctx)
}

// -- Stations --

func (s *Service) CreateStation(ctx context.Context, st *Station) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetRoom(ctx, st.RoomID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("station", "room")
		}
		return err
	}
	return s.repo.CreateStation(ctx, st)
}

// EnsureStation returns the station with st's label in st's room, creating
// it from st when absent.
func (s *Service) EnsureStation(ctx context.Context, st *Station) (*Station, bool, error) {
	if err := st.Validate(); err != nil {
		return nil, false, err
	}
	if existing, err := s.repo.GetStationByLabel(ctx, st.RoomID, st.Label); err == nil {
		return existing, false, nil
	} else if !apperr.IsNotFound(err) {
		return nil, false, err
	}
	if err := s.CreateStation(ctx, st); err != nil {
		if _, dup := apperr.IsDuplicate(err); dup {
			existing, err := s.repo.GetStationByLabel(ctx, st.RoomID, st.Label)
			return existing, false, err
		}
		return nil, false, err
	}
	return st, true, nil
}

func (s *Service) GetStation(ctx context.Context, id uuid.UUID) (*Station, error) {
	return s.repo.GetStation(ctx, id)
}

func (s *Service) ListStations(ctx context.Context, roomID uuid.UUID) ([]*Station, error) {
	return s.repo.ListStations(ctx, roomID)
}

// -- Config --

// EnsureConfig writes defaults as the facility config unless a row already
// exists, and returns the stored row.
func (s *Service) EnsureConfig(ctx context.Context, defaults Config) (*Config, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	defaults.UpdatedAt = s.clock.Now()
	if err := s.repo.InsertConfigIfAbsent(ctx, &defaults); err != nil {
		return nil, err
	}
	return s.repo.GetConfig(ctx)
}

func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	return s.repo.GetConfig(ctx)
}

func (s *Service) UpdateConfig(ctx context.Context, c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateConfig(ctx, c); err != nil {
		return err
	}
	s.log.Info().Str("admin_email", c.AdminEmail).Msg("facility config updated")
	return nil
}
