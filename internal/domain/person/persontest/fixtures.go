package persontest

import (
	"time"

	"github.com/nephro/dialysis/internal/domain/person"
)

// Valid returns a person that passes validation, keyed by email and
// national ID so fixtures do not collide.
func Valid(kind person.Kind, email string, nationalID int64) *person.Person {
	return &person.Person{
		GivenNames: "Ana",
		Surnames:   "Ruiz",
		Email:      email,
		NationalID: nationalID,
		Phone1:     "099123456",
		Address:    "Av. Italia 2020",
		Locality:   "Montevideo",
		Region:     "Montevideo",
		Country:    "Uruguay",
		BirthDate:  time.Date(1968, 3, 14, 0, 0, 0, 0, time.UTC),
		Sex:        "f",
		Kind:       kind,
	}
}
