package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/clock"
	"github.com/nephro/dialysis/internal/platform/db"
)

// ScheduleLookup resolves the schedule entry a session is recorded against.
type ScheduleLookup interface {
	GetEntry(ctx context.Context, k scheduling.Key) (*scheduling.Entry, error)
}

type Service struct {
	repo     Repository
	schedule ScheduleLookup
	tx       db.TxRunner
	clock    clock.Clock
	log      zerolog.Logger
}

func NewService(repo Repository, schedule ScheduleLookup, tx db.TxRunner, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		schedule: schedule,
		tx:       tx,
		clock:    clk,
		log:      logger.With().Str("component", "session").Logger(),
	}
}

// -- Treatment sessions --

// RecordSession stores a completed run. The (date, shift, patient) triple
// must name a schedule entry the patient attended, on the booked station.
func (s *Service) RecordSession(ctx context.Context, ts *TreatmentSession) error {
	ts.Date = scheduling.DateOf(ts.Date)
	if err := ts.Validate(); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		entry, err := s.schedule.GetEntry(ctx, ts.ScheduleKey())
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("treatment session", "schedule_entry")
		}
		if err != nil {
			return err
		}
		if entry.NoShow {
			return apperr.Invalid("schedule_entry", "is flagged as no-show")
		}
		if entry.StationID != ts.StationID {
			return apperr.Invalid("station_id", "does not match the scheduled station")
		}
		ts.RecordedAt = s.clock.Now()
		return s.repo.CreateSession(ctx, ts)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", ts.ScheduleKey().String()).Msg("session rejected")
		return err
	}
	s.log.Debug().Str("session_id", ts.ID.String()).Str("key", ts.ScheduleKey().String()).Msg("session recorded")
	return nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*TreatmentSession, error) {
	return s.repo.GetSession(ctx, id)
}

// ListSessionsByPatient returns the patient's sessions, most recent first.
func (s *Service) ListSessionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentSession, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	return s.repo.ListSessionsByPatient(ctx, patientID)
}

// -- Vitals --

func (s *Service) AppendVitals(ctx context.Context, v *VitalsCheck) error {
	if v.TakenAt.IsZero() {
		v.TakenAt = s.clock.Now()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return s.repo.CreateVitals(ctx, v)
}

// ListVitals returns readings in the order they were taken.
func (s *Service) ListVitals(ctx context.Context, sessionID uuid.UUID) ([]*VitalsCheck, error) {
	return s.repo.ListVitals(ctx, sessionID)
}

// -- Recirculation tests --

func (s *Service) RecordRecirculationTest(ctx context.Context, t *RecirculationTest) error {
	if t.SessionID == uuid.Nil {
		return apperr.Required("session_id")
	}
	if t.AuxNurseID == uuid.Nil {
		return apperr.Required("aux_nurse_id")
	}
	t.RecordedAt = s.clock.Now()
	return s.repo.CreateRecirculationTest(ctx, t)
}

func (s *Service) ListRecirculationTests(ctx context.Context, sessionID uuid.UUID) ([]*RecirculationTest, error) {
	return s.repo.ListRecirculationTests(ctx, sessionID)
}

// -- Dialyzers --

func (s *Service) RegisterDialyzer(ctx context.Context, patientID uuid.UUID, dialyzerType string) (*Dialyzer, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	dialyzerType = strings.TrimSpace(dialyzerType)
	if dialyzerType == "" {
		return nil, apperr.Required("type")
	}
	if len(dialyzerType) > 45 {
		return nil, apperr.Invalid("type", "is too long")
	}
	d := &Dialyzer{PatientID: patientID, Type: dialyzerType, Active: true, CreatedAt: s.clock.Now()}
	if err := s.repo.CreateDialyzer(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDialyzers(ctx context.Context, patientID uuid.UUID) ([]*Dialyzer, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	return s.repo.ListDialyzers(ctx, patientID)
}

// RecordDialyzerAction appends to the dialyzer's reuse log. A discard
// retires the dialyzer in the same transaction; retired dialyzers accept
// no further actions.
func (s *Service) RecordDialyzerAction(ctx context.Context, a *DialyzerAction) error {
	if a.PerformedAt.IsZero() {
		a.PerformedAt = s.clock.Now()
	}
	if err := a.Validate(); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		d, err := s.repo.LockDialyzer(ctx, a.DialyzerID)
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("dialyzer action", "dialyzer")
		}
		if err != nil {
			return err
		}
		if !d.Active {
			return apperr.Invalid("dialyzer_id", "dialyzer has been discarded")
		}
		if err := s.repo.CreateDialyzerAction(ctx, a); err != nil {
			return err
		}
		if a.Action == ActionDiscard {
			return s.repo.DeactivateDialyzer(ctx, d.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug().Str("dialyzer_id", a.DialyzerID.String()).Str("action", string(a.Action)).Msg("dialyzer action recorded")
	return nil
}

func (s *Service) ListDialyzerActions(ctx context.Context, dialyzerID uuid.UUID) ([]*DialyzerAction, error) {
	return s.repo.ListDialyzerActions(ctx, dialyzerID)
}

// LinkDialyzerToRecirculationTest pairs a dialyzer with a test taken during
// one of the same patient's sessions.
func (s *Service) LinkDialyzerToRecirculationTest(ctx context.Context, dialyzerID, testID uuid.UUID) error {
	if dialyzerID == uuid.Nil {
		return apperr.Required("dialyzer_id")
	}
	if testID == uuid.Nil {
		return apperr.Required("recirculation_test_id")
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		d, err := s.repo.LockDialyzer(ctx, dialyzerID)
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("dialyzer recirculation link", "dialyzer")
		}
		if err != nil {
			return err
		}
		t, err := s.repo.GetRecirculationTest(ctx, testID)
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("dialyzer recirculation link", "recirculation_test")
		}
		if err != nil {
			return err
		}
		ts, err := s.repo.GetSession(ctx, t.SessionID)
		if err != nil {
			return err
		}
		if ts.PatientID != d.PatientID {
			return apperr.Invalid("recirculation_test_id", "was taken on another patient's session")
		}
		return s.repo.CreateLink(ctx, dialyzerID, testID)
	})
}

func (s *Service) ListLinkedTests(ctx context.Context, dialyzerID uuid.UUID) ([]*RecirculationTest, error) {
	return s.repo.ListLinkedTests(ctx, dialyzerID)
}
