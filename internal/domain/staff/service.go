package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/clock"
	"github.com/nephro/dialysis/internal/platform/credential"
	"github.com/nephro/dialysis/internal/platform/db"
)

// PersonRegistry is the slice of person.Service the account cascades use.
type PersonRegistry interface {
	RegisterPerson(ctx context.Context, p *person.Person) error
	UpdatePerson(ctx context.Context, p *person.Person) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNationalID(ctx context.Context, nationalID int64) (bool, error)
}

type Service struct {
	repo    Repository
	persons PersonRegistry
	hasher  credential.Hasher
	tx      db.TxRunner
	clock   clock.Clock
	log     zerolog.Logger
}

func NewService(repo Repository, persons PersonRegistry, hasher credential.Hasher, tx db.TxRunner, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		persons: persons,
		hasher:  hasher,
		tx:      tx,
		clock:   clk,
		log:     logger.With().Str("component", "staff").Logger(),
	}
}

const maxLoginLen = 20

func normalizeLogin(login string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return "", apperr.Required("login")
	}
	if len(login) > maxLoginLen {
		return "", apperr.Invalid("login", "is too long")
	}
	return login, nil
}

func (s *Service) hash(raw string) (string, error) {
	if raw == "" {
		return "", apperr.Required("credential")
	}
	h, err := s.hasher.Hash(raw)
	if err != nil {
		return "", apperr.Invalid("credential", err.Error())
	}
	return h, nil
}

// RegisterAccount registers the person, the account and the profile selected
// by in.Role in one transaction. Physicians need a license number and are
// registered through RegisterPhysician.
func (s *Service) RegisterAccount(ctx context.Context, in RegisterAccountInput) (*Account, error) {
	switch in.Role {
	case RolePhysician:
		return nil, apperr.Required("license_number")
	case RoleNurse:
		return s.RegisterNurse(ctx, RegisterNurseInput{RegisterAccountInput: in})
	case RoleAuxNurse:
		return s.RegisterAuxNurse(ctx, in)
	case RoleAdmin:
		return s.RegisterAdminStaff(ctx, in)
	}
	return nil, apperr.Invalid("role", "must be one of physician, nurse, aux_nurse, admin")
}

func (s *Service) RegisterPhysician(ctx context.Context, in RegisterPhysicianInput) (*Account, error) {
	if in.LicenseNumber <= 0 {
		return nil, apperr.Invalid("license_number", "must be a positive number")
	}
	in.Role = RolePhysician
	return s.register(ctx, in.RegisterAccountInput, func(ctx context.Context, a *Account) error {
		p := &Physician{AccountID: a.ID, LicenseNumber: in.LicenseNumber, Supervisor: in.Supervisor}
		if err := s.repo.CreatePhysician(ctx, p); err != nil {
			return err
		}
		a.Physician = p
		return nil
	})
}

func (s *Service) RegisterNurse(ctx context.Context, in RegisterNurseInput) (*Account, error) {
	in.Role = RoleNurse
	return s.register(ctx, in.RegisterAccountInput, func(ctx context.Context, a *Account) error {
		n := &Nurse{AccountID: a.ID, Supervisor: in.Supervisor}
		if err := s.repo.CreateNurse(ctx, n); err != nil {
			return err
		}
		a.Nurse = n
		return nil
	})
}

func (s *Service) RegisterAuxNurse(ctx context.Context, in RegisterAccountInput) (*Account, error) {
	in.Role = RoleAuxNurse
	return s.register(ctx, in, func(ctx context.Context, a *Account) error {
		n := &AuxNurse{AccountID: a.ID}
		if err := s.repo.CreateAuxNurse(ctx, n); err != nil {
			return err
		}
		a.AuxNurse = n
		return nil
	})
}

func (s *Service) RegisterAdminStaff(ctx context.Context, in RegisterAccountInput) (*Account, error) {
	in.Role = RoleAdmin
	return s.register(ctx, in, func(ctx context.Context, a *Account) error {
		ad := &AdminStaff{AccountID: a.ID}
		if err := s.repo.CreateAdminStaff(ctx, ad); err != nil {
			return err
		}
		a.Admin = ad
		return nil
	})
}

// register runs person -> account -> profile inside one transaction. Any
// failure leaves none of the three rows behind.
func (s *Service) register(ctx context.Context, in RegisterAccountInput, attach func(context.Context, *Account) error) (*Account, error) {
	if !in.Role.Valid() {
		return nil, apperr.Invalid("role", "must be one of physician, nurse, aux_nurse, admin")
	}
	login, err := normalizeLogin(in.Login)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Credential)
	if err != nil {
		return nil, err
	}

	var acct *Account
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		taken, err := s.repo.ExistsByLogin(ctx, login, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("account", "login")
		}

		p := in.Person
		p.Kind = person.KindStaff
		if err := s.persons.RegisterPerson(ctx, &p); err != nil {
			return err
		}

		now := s.clock.Now()
		a := &Account{
			PersonID:       p.ID,
			Role:           in.Role,
			Login:          login,
			CredentialHash: hash,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.CreateAccount(ctx, a); err != nil {
			return err
		}
		a.Person = &p

		if err := attach(ctx, a); err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return err
		}
		acct = a
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("role", string(in.Role)).Msg("account registration rolled back")
		return nil, err
	}
	s.log.Info().Str("account_id", acct.ID.String()).Str("role", string(acct.Role)).Msg("account registered")
	return acct, nil
}

// UpdateAccount rewrites the account and its person atomically. The stored
// hash is replaced only when a new credential is supplied.
func (s *Service) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*Account, error) {
	login, err := normalizeLogin(in.Login)
	if err != nil {
		return nil, err
	}
	if in.Role != "" && !in.Role.Valid() {
		return nil, apperr.Invalid("role", "must be one of physician, nurse, aux_nurse, admin")
	}
	var hash string
	if in.Credential != "" {
		if hash, err = s.hash(in.Credential); err != nil {
			return nil, err
		}
	}

	var acct *Account
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetAccount(ctx, in.AccountID)
		if err != nil {
			return err
		}
		if in.Role != "" && in.Role != a.Role {
			return apperr.Invalid("role", "account holds a "+string(a.Role)+" profile")
		}
		taken, err := s.repo.ExistsByLogin(ctx, login, a.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("account", "login")
		}
		a.Login = login
		if hash != "" {
			a.CredentialHash = hash
		}
		a.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateAccount(ctx, a); err != nil {
			return err
		}

		p := in.Person
		p.ID = a.PersonID
		if err := s.persons.UpdatePerson(ctx, &p); err != nil {
			return err
		}
		a.Person = &p
		acct = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) GetAccountByLogin(ctx context.Context, login string) (*Account, error) {
	return s.repo.GetAccountByLogin(ctx, strings.TrimSpace(login))
}

// Authenticate returns the account when raw matches its stored hash.
func (s *Service) Authenticate(ctx context.Context, login, raw string) (*Account, error) {
	a, err := s.GetAccountByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Matches(a.CredentialHash, raw) || a.Person == nil || !a.Person.Active {
		return nil, apperr.Invalid("credential", "does not match")
	}
	return a, nil
}

// ListAccounts pages through accounts by surnames, given names, then id.
func (s *Service) ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	if limit <= 0 {
		return nil, 0, apperr.Invalid("limit", "must be positive")
	}
	if offset < 0 {
		return nil, 0, apperr.Invalid("offset", "must not be negative")
	}
	return s.repo.ListAccounts(ctx, limit, offset)
}

func (s *Service) ListPhysicians(ctx context.Context) ([]*Account, error) {
	return s.repo.ListByRole(ctx, RolePhysician)
}

func (s *Service) ListNurses(ctx context.Context) ([]*Account, error) {
	return s.repo.ListByRole(ctx, RoleNurse)
}

func (s *Service) ListAuxNurses(ctx context.Context) ([]*Account, error) {
	return s.repo.ListByRole(ctx, RoleAuxNurse)
}

func (s *Service) ListAdminStaff(ctx context.Context) ([]*Account, error) {
	return s.repo.ListByRole(ctx, RoleAdmin)
}

// SetActive toggles the active flag of the account's person. Existing
// references to the account are kept.
func (s *Service) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	a, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.persons.SetActive(ctx, a.PersonID, active); err != nil {
		return err
	}
	s.log.Info().Str("account_id", accountID.String()).Bool("active", active).Msg("staff activation changed")
	return nil
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.persons.ExistsByEmail(ctx, email)
}

func (s *Service) ExistsByNationalID(ctx context.Context, nationalID int64) (bool, error) {
	return s.persons.ExistsByNationalID(ctx, nationalID)
}

func (s *Service) PhysicianActive(ctx context.Context, physicianID uuid.UUID) (bool, error) {
	return s.repo.ProfileActive(ctx, RolePhysician, physicianID)
}

func (s *Service) NurseActive(ctx context.Context, nurseID uuid.UUID) (bool, error) {
	return s.repo.ProfileActive(ctx, RoleNurse, nurseID)
}

func (s *Service) AuxNurseActive(ctx context.Context, auxNurseID uuid.UUID) (bool, error) {
	return s.repo.ProfileActive(ctx, RoleAuxNurse, auxNurseID)
}
