package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/domain/insurer"
	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/clock"
	"github.com/nephro/dialysis/internal/platform/db"
)

type PersonRegistry interface {
	RegisterPerson(ctx context.Context, p *person.Person) error
	UpdatePerson(ctx context.Context, p *person.Person) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNationalID(ctx context.Context, nationalID int64) (bool, error)
}

// StaffDirectory resolves profile ids to the active flag of the staff member.
// Unknown ids return apperr.NotFoundError.
type StaffDirectory interface {
	PhysicianActive(ctx context.Context, physicianID uuid.UUID) (bool, error)
	AuxNurseActive(ctx context.Context, auxNurseID uuid.UUID) (bool, error)
}

type InsurerLookup interface {
	GetInsurer(ctx context.Context, id uuid.UUID) (*insurer.Insurer, error)
}

type Service struct {
	repo     Repository
	persons  PersonRegistry
	staff    StaffDirectory
	insurers InsurerLookup
	tx       db.TxRunner
	clock    clock.Clock
	log      zerolog.Logger
}

func NewService(repo Repository, persons PersonRegistry, staff StaffDirectory, insurers InsurerLookup, tx db.TxRunner, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		persons:  persons,
		staff:    staff,
		insurers: insurers,
		tx:       tx,
		clock:    clk,
		log:      logger.With().Str("component", "patient").Logger(),
	}
}

// RegisterPatient registers p.Person as a patient and then the patient row,
// in one transaction.
func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	// p and p.Person are written only after commit.
	var stored Patient
	var per person.Person
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkInsurer(ctx, p.InsurerID); err != nil {
			return err
		}
		if err := s.checkStaff(ctx, p.PhysicianID, p.AuxNurseID); err != nil {
			return err
		}

		per = *p.Person
		per.Kind = person.KindPatient
		if err := s.persons.RegisterPerson(ctx, &per); err != nil {
			return err
		}
		now := s.clock.Now()
		stored = *p
		stored.Person = &per
		stored.PersonID = per.ID
		stored.CreatedAt, stored.UpdatedAt = now, now
		return s.repo.Create(ctx, &stored)
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("patient registration rolled back")
		return err
	}
	*p.Person = per
	stored.Person = p.Person
	*p = stored
	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return nil
}

// UpdatePatient rewrites the patient row and its person, both or neither.
// Staff activity is only checked for references that change.
func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if p.InsurerID != existing.InsurerID {
			if err := s.checkInsurer(ctx, p.InsurerID); err != nil {
				return err
			}
		}
		physician, aux := uuid.Nil, uuid.Nil
		if p.PhysicianID != existing.PhysicianID {
			physician = p.PhysicianID
		}
		if p.AuxNurseID != existing.AuxNurseID {
			aux = p.AuxNurseID
		}
		if err := s.checkStaff(ctx, physician, aux); err != nil {
			return err
		}

		p.PersonID = existing.PersonID
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		p.Person.ID = existing.PersonID
		return s.persons.UpdatePerson(ctx, p.Person)
	})
}

func (s *Service) checkInsurer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.insurers.GetInsurer(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("patient", "insurer")
		}
		return err
	}
	return nil
}

// checkStaff verifies each non-nil id names an existing, active profile.
func (s *Service) checkStaff(ctx context.Context, physicianID, auxNurseID uuid.UUID) error {
	checks := []struct {
		id    uuid.UUID
		ref   string
		field string
		fn    func(context.Context, uuid.UUID) (bool, error)
	}{
		{physicianID, "physician", "physician_id", s.staff.PhysicianActive},
		{auxNurseID, "aux_nurse", "aux_nurse_id", s.staff.AuxNurseActive},
	}
	for _, c := range checks {
		if c.id == uuid.Nil {
			continue
		}
		active, err := c.fn(ctx, c.id)
		if apperr.IsNotFound(err) {
			return apperr.ForeignKey("patient", c.ref)
		}
		if err != nil {
			return err
		}
		if !active {
			return apperr.Invalid(c.field, "refers to inactive staff")
		}
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPatients pages through patients by given names, surnames, then id.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	if limit <= 0 {
		return nil, 0, apperr.Invalid("limit", "must be positive")
	}
	if offset < 0 {
		return nil, 0, apperr.Invalid("offset", "must not be negative")
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.persons.ExistsByEmail(ctx, email)
}

func (s *Service) ExistsByNationalID(ctx context.Context, nationalID int64) (bool, error) {
	return s.persons.ExistsByNationalID(ctx, nationalID)
}
