package orders

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
	return &Service{repo: repo, clock: clk, log: logger.With().Str("component", "orders").Logger()}
}

// -- Treatment orders --

func (s *Service) CreateOrder(ctx context.Context, o *TreatmentOrder) error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.CreatedAt = s.clock.Now()
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return err
	}
	s.log.Debug().Str("order_id", o.ID.String()).Str("patient_id", o.PatientID.String()).
		Int("year", o.Year).Int("month", o.Month).Msg("treatment order created")
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*TreatmentOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrdersByPatient returns a patient's orders, newest period first.
func (s *Service) ListOrdersByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentOrder, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	return s.repo.ListOrdersByPatient(ctx, patientID)
}

// CurrentOrder returns the order in force for (year, month): the newest one
// issued for that period or, failing that, for the closest earlier period.
func (s *Service) CurrentOrder(ctx context.Context, patientID uuid.UUID, year, month int) (*TreatmentOrder, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	if err := validPeriod(year, month); err != nil {
		return nil, err
	}
	return s.repo.LatestOrder(ctx, patientID, year, month)
}

// -- Study coordinations --

func (s *Service) CreateStudyCoordination(ctx context.Context, sc *StudyCoordination) error {
	sc.Studies = strings.TrimSpace(sc.Studies)
	if err := validFollowUp(sc.PatientID, sc.AccountID, "studies", sc.Studies); err != nil {
		return err
	}
	sc.Open = true
	sc.ClosedAt = nil
	sc.CreatedAt = s.clock.Now()
	return s.repo.CreateStudyCoordination(ctx, sc)
}

func (s *Service) CloseStudyCoordination(ctx context.Context, id uuid.UUID) (*StudyCoordination, error) {
	return s.repo.CloseStudyCoordination(ctx, id, s.clock.Now())
}

func (s *Service) ListStudyCoordinations(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*StudyCoordination, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	return s.repo.ListStudyCoordinations(ctx, patientID, openOnly)
}

// -- Change requests --

func (s *Service) CreateChangeRequest(ctx context.Context, cr *ChangeRequest) error {
	cr.Request = strings.TrimSpace(cr.Request)
	if err := validFollowUp(cr.PatientID, cr.AccountID, "request", cr.Request); err != nil {
		return err
	}
	cr.Open = true
	cr.ClosedAt = nil
	cr.CreatedAt = s.clock.Now()
	return s.repo.CreateChangeRequest(ctx, cr)
}

func (s *Service) CloseChangeRequest(ctx context.Context, id uuid.UUID) (*ChangeRequest, error) {
	return s.repo.CloseChangeRequest(ctx, id, s.clock.Now())
}

func (s *Service) ListChangeRequests(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*ChangeRequest, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Required("patient_id")
	}
	return s.repo.ListChangeRequests(ctx, patientID, openOnly)
}
