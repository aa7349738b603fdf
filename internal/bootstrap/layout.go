// Package bootstrap loads facility reference data (rooms, stations and
// insurers) from a YAML file. Imports are idempotent: rows that already
// exist are left untouched.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/nephro/dialysis/internal/domain/facility"
	"github.com/nephro/dialysis/internal/domain/insurer"
)

type StationLayout struct {
	Label   string `yaml:"label"`
	Special bool   `yaml:"special"`
	Type    string `yaml:"type"`
}

type RoomLayout struct {
	Name     string          `yaml:"name"`
	Stations []StationLayout `yaml:"stations"`
}

type Layout struct {
	Insurers []string     `yaml:"insurers"`
	Rooms    []RoomLayout `yaml:"rooms"`
}

func Parse(content []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(content, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(l.Insurers) == 0 && len(l.Rooms) == 0 {
		return nil, errors.New("layout defines no rooms or insurers")
	}
	return &l, nil
}

func Load(path string) (*Layout, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(content)
}

type Facility interface {
	EnsureRoom(ctx context.Context, name string) (*facility.Room, bool, error)
	EnsureStation(ctx context.Context, st *facility.Station) (*facility.Station, bool, error)
}

type Insurers interface {
	EnsureInsurer(ctx context.Context, name string) (*insurer.Insurer, error)
}

// Summary counts the rooms and stations an import created and the insurer
// names it ensured.
type Summary struct {
	Rooms    int
	Stations int
	Insurers int
}

type Importer struct {
	facility Facility
	insurers Insurers
	log      zerolog.Logger
}

func NewImporter(f Facility, i Insurers, logger zerolog.Logger) *Importer {
	return &Importer{facility: f, insurers: i, log: logger.With().Str("component", "bootstrap").Logger()}
}

func (im *Importer) Import(ctx context.Context, l *Layout) (Summary, error) {
	var sum Summary
	for _, name := range l.Insurers {
		if _, err := im.insurers.EnsureInsurer(ctx, name); err != nil {
			return sum, fmt.Errorf("insurer %q: %w", name, err)
		}
		sum.Insurers++
	}
	for _, rs := range l.Rooms {
		room, created, err := im.facility.EnsureRoom(ctx, rs.Name)
		if err != nil {
			return sum, fmt.Errorf("room %q: %w", rs.Name, err)
		}
		if created {
			sum.Rooms++
		}
		for _, ss := range rs.Stations {
			st := &facility.Station{RoomID: room.ID, Label: ss.Label, Special: ss.Special, StationType: ss.Type}
			_, created, err := im.facility.EnsureStation(ctx, st)
			if err != nil {
				return sum, fmt.Errorf("station %q in room %q: %w", ss.Label, rs.Name, err)
			}
			if created {
				sum.Stations++
			}
		}
	}
	im.log.Info().Int("rooms", sum.Rooms).Int("stations", sum.Stations).Int("insurers", sum.Insurers).
		Msg("layout imported")
	return sum, nil
}
