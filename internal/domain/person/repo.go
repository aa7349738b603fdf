package person

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)
	Update(ctx context.Context, p *Person) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// ExistsByEmail and ExistsByNationalID ignore the row identified by
	// exclude; pass uuid.Nil to consider every row.
	ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	ExistsByNationalID(ctx context.Context, nationalID int64, exclude uuid.UUID) (bool, error)
}
