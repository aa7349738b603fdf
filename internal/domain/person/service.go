package person

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
	return &Service{repo: repo, clock: clk, log: logger.With().Str("component", "person").Logger()}
}

// RegisterPerson validates p, rejects a taken email or national ID and
// inserts it as active. ID and RegisteredAt are assigned here.
func (s *Service) RegisterPerson(ctx context.Context, p *Person) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, p, uuid.Nil); err != nil {
		return err
	}
	p.RegisteredAt = s.clock.Now()
	p.Active = true
	if err := s.repo.Create(ctx, p); err != nil {
		s.logConflict(err, p)
		return err
	}
	s.log.Debug().Str("person_id", p.ID.String()).Str("kind", string(p.Kind)).Msg("person registered")
	return nil
}

// UpdatePerson overwrites the person's fields. Kind, RegisteredAt and Active
// keep their stored values.
func (s *Service) UpdatePerson(ctx context.Context, p *Person) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Kind = existing.Kind
	p.RegisteredAt = existing.RegisteredAt
	p.Active = existing.Active

	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, p, p.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		s.logConflict(err, p)
		return err
	}
	return nil
}

func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), uuid.Nil)
}

func (s *Service) ExistsByNationalID(ctx context.Context, nationalID int64) (bool, error) {
	return s.repo.ExistsByNationalID(ctx, nationalID, uuid.Nil)
}

// checkUnique is advisory. The unique constraints still decide races.
func (s *Service) checkUnique(ctx context.Context, p *Person, exclude uuid.UUID) error {
	taken, err := s.repo.ExistsByEmail(ctx, p.Email, exclude)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate("person", "email")
	}
	taken, err = s.repo.ExistsByNationalID(ctx, p.NationalID, exclude)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate("person", "national_id")
	}
	return nil
}

func (s *Service) logConflict(err error, p *Person) {
	if field, ok := apperr.IsDuplicate(err); ok {
		s.log.Warn().Str("field", field).Str("kind", string(p.Kind)).Msg("person uniqueness conflict")
	}
}
