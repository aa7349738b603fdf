package session

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateSession(ctx context.Context, s *TreatmentSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*TreatmentSession, error)
	ListSessionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentSession, error)

	CreateVitals(ctx context.Context, v *VitalsCheck) error
	ListVitals(ctx context.Context, sessionID uuid.UUID) ([]*VitalsCheck, error)

	CreateRecirculationTest(ctx context.Context, t *RecirculationTest) error
	GetRecirculationTest(ctx context.Context, id uuid.UUID) (*RecirculationTest, error)
	ListRecirculationTests(ctx context.Context, sessionID uuid.UUID) ([]*RecirculationTest, error)

	CreateDialyzer(ctx context.Context, d *Dialyzer) error
	// LockDialyzer reads a dialyzer and, inside a transaction, holds its row
	// until commit.
	LockDialyzer(ctx context.Context, id uuid.UUID) (*Dialyzer, error)
	DeactivateDialyzer(ctx context.Context, id uuid.UUID) error
	ListDialyzers(ctx context.Context, patientID uuid.UUID) ([]*Dialyzer, error)

	CreateDialyzerAction(ctx context.Context, a *DialyzerAction) error
	ListDialyzerActions(ctx context.Context, dialyzerID uuid.UUID) ([]*DialyzerAction, error)

	CreateLink(ctx context.Context, dialyzerID, testID uuid.UUID) error
	ListLinkedTests(ctx context.Context, dialyzerID uuid.UUID) ([]*RecirculationTest, error)
}
