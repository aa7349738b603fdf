package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	UpdateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByLogin(ctx context.Context, login string) (*Account, error)
	ExistsByLogin(ctx context.Context, login string, exclude uuid.UUID) (bool, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error)
	ListByRole(ctx context.Context, role Role) ([]*Account, error)

	CreatePhysician(ctx context.Context, p *Physician) error
	CreateNurse(ctx context.Context, n *Nurse) error
	CreateAuxNurse(ctx context.Context, n *AuxNurse) error
	CreateAdminStaff(ctx context.Context, a *AdminStaff) error

	// ProfileActive reports the active flag of the person behind the
	// profile row id of the given role.
	ProfileActive(ctx context.Context, role Role, profileID uuid.UUID) (bool, error)
}
