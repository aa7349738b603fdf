package insurer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger.With().Str("component", "insurer").Logger()}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Required("name")
	}
	if len(name) > 45 {
		return "", apperr.Invalid("name", "is too long")
	}
	return name, nil
}

func (s *Service) CreateInsurer(ctx context.Context, i *Insurer) error {
	name, err := normalizeName(i.Name)
	if err != nil {
		return err
	}
	i.Name = name
	return s.repo.Create(ctx, i)
}

// EnsureInsurer returns the insurer called name, creating it when absent. A
// concurrent creator winning the race is resolved by re-reading.
func (s *Service) EnsureInsurer(ctx context.Context, name string) (*Insurer, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	i := &Insurer{Name: name}
	if err := s.repo.Create(ctx, i); err != nil {
		if _, dup := apperr.IsDuplicate(err); dup {
			return s.repo.GetByName(ctx, name)
		}
		return nil, err
	}
	s.log.Info().Str("insurer", name).Msg("insurer created")
	return i, nil
}

func (s *Service) ExistsByInsurerName(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) GetInsurer(ctx context.Context, id uuid.UUID) (*Insurer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListInsurers(ctx context.Context) ([]*Insurer, error) {
	return s.repo.List(ctx)
}
