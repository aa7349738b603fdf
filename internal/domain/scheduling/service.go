package scheduling

import (
	"context"
	"time"

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
	return &Service{repo: repo, clock: clk, log: logger.With().Str("component", "scheduling").Logger()}
}

// CreateEntry books a patient onto a station for one shift. The composite
// key is enforced by the store alone; no read precedes the insert.
func (s *Service) CreateEntry(ctx context.Context, e *Entry) error {
	e.Date = DateOf(e.Date)
	if err := e.Validate(); err != nil {
		return err
	}
	now := s.clock.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.repo.Create(ctx, e); err != nil {
		if field, dup := apperr.IsDuplicate(err); dup {
			s.log.Warn().Str("key", e.Key().String()).Str("field", field).Msg("schedule conflict")
		}
		return err
	}
	s.log.Debug().Str("key", e.Key().String()).Str("station_id", e.StationID.String()).Msg("schedule entry created")
	return nil
}

func (s *Service) UpdateEntry(ctx context.Context, k Key, in UpdateEntryInput) (*Entry, error) {
	k.Date = DateOf(k.Date)
	if err := k.Validate(); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	if in.ArrivalWeightGrams != nil {
		e.ArrivalWeightGrams = in.ArrivalWeightGrams
	}
	if in.DepartureWeightGrams != nil {
		e.DepartureWeightGrams = in.DepartureWeightGrams
	}
	if in.NoShow != nil {
		e.NoShow = *in.NoShow
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetEntry(ctx context.Context, k Key) (*Entry, error) {
	k.Date = DateOf(k.Date)
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, k)
}

func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*Entry, error) {
	if date.IsZero() {
		return nil, apperr.Required("date")
	}
	return s.repo.ListByDate(ctx, DateOf(date))
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*Entry, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return nil, apperr.Invalid("to", "must not precede from")
	}
	return s.repo.ListByPatient(ctx, patientID, from, to)
}

// ExportRoster renders the day's schedule as an xlsx workbook.
func (s *Service) ExportRoster(ctx context.Context, date time.Time) ([]byte, error) {
	if date.IsZero() {
		return nil, apperr.Required("date")
	}
	date = DateOf(date)
	rows, err := s.repo.Roster(ctx, date)
	if err != nil {
		return nil, err
	}
	out, err := writeRoster(date, rows)
	if err != nil {
		return nil, apperr.Storage("roster export", err)
	}
	s.log.Debug().Str("date", date.Format(DateLayout)).Int("rows", len(rows)).Msg("roster exported")
	return out, nil
}
