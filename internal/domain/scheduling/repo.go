package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, k Key) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	ListByDate(ctx context.Context, date time.Time) ([]*Entry, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*Entry, error)
	Roster(ctx context.Context, date time.Time) ([]RosterRow, error)
}
