package facility

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	GetRoomByName(ctx context.Context, name string) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)

	CreateStation(ctx context.Context, s *Station) error
	GetStation(ctx context.Context, id uuid.UUID) (*Station, error)
	GetStationByLabel(ctx context.Context, roomID uuid.UUID, label string) (*Station, error)
	// ListStations returns every station when roomID is uuid.Nil.
	ListStations(ctx context.Context, roomID uuid.UUID) ([]*Station, error)

	// InsertConfigIfAbsent writes c only when no config row exists yet.
	InsertConfigIfAbsent(ctx context.Context, c *Config) error
	GetConfig(ctx context.Context) (*Config, error)
	UpdateConfig(ctx context.Context, c *Config) error
}
