package insurer

import "github.com/google/uuid"

// Insurer maps to the insurer table: the health provider covering a patient.
type Insurer struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}
