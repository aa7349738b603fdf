package insurer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Insurer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Insurer, error)
	GetByName(ctx context.Context, name string) (*Insurer, error)
	List(ctx context.Context) ([]*Insurer, error)
}
