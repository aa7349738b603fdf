package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *TreatmentOrder) error
	GetOrder(ctx context.Context, id uuid.UUID) (*TreatmentOrder, error)
	ListOrdersByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentOrder, error)
	// LatestOrder returns the newest order whose period is at or before (year, month).
	LatestOrder(ctx context.Context, patientID uuid.UUID, year, month int) (*TreatmentOrder, error)

	CreateStudyCoordination(ctx context.Context, sc *StudyCoordination) error
	CloseStudyCoordination(ctx context.Context, id uuid.UUID, at time.Time) (*StudyCoordination, error)
	ListStudyCoordinations(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*StudyCoordination, error)

	CreateChangeRequest(ctx context.Context, cr *ChangeRequest) error
	CloseChangeRequest(ctx context.Context, id uuid.UUID, at time.Time) (*ChangeRequest, error)
	ListChangeRequests(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*ChangeRequest, error)
}
