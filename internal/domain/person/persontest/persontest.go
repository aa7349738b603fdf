// Package persontest provides an in-memory person.Repository that enforces
// the same uniqueness rules as the person table.
package persontest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

type Repo struct {
	mu      sync.Mutex
	persons map[uuid.UUID]person.Person

	// FailCreate, when set, is returned by the next Create call.
	FailCreate error
}

func NewRepo() *Repo {
	return &Repo{persons: make(map[uuid.UUID]person.Person)}
}

func (m *Repo) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]person.Person, len(m.persons))
	for k, v := range m.persons {
		saved[k] = v
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.persons = saved
	}
}

func (m *Repo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.persons)
}

func (m *Repo) conflict(p *person.Person) error {
	for id, other := range m.persons {
		if id == p.ID {
			continue
		}
		if other.Email == p.Email {
			return apperr.Duplicate("person", "email")
		}
		if other.NationalID == p.NationalID {
			return apperr.Duplicate("person", "national_id")
		}
	}
	return nil
}

func (m *Repo) Create(_ context.Context, p *person.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		err := m.FailCreate
		m.FailCreate = nil
		return err
	}
	p.ID = uuid.New()
	if err := m.conflict(p); err != nil {
		return err
	}
	m.persons[p.ID] = *p
	return nil
}

func (m *Repo) GetByID(_ context.Context, id uuid.UUID) (*person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return nil, apperr.NotFound("person", id)
	}
	return &p, nil
}

func (m *Repo) Update(_ context.Context, p *person.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.persons[p.ID]
	if !ok {
		return apperr.NotFound("person", p.ID)
	}
	if err := m.conflict(p); err != nil {
		return err
	}
	updated := *p
	updated.RegisteredAt = existing.RegisteredAt
	updated.Active = existing.Active
	updated.Kind = existing.Kind
	m.persons[p.ID] = updated
	return nil
}

func (m *Repo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return apperr.NotFound("person", id)
	}
	p.Active = active
	m.persons[id] = p
	return nil
}

func (m *Repo) ExistsByEmail(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.persons {
		if id != exclude && p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Repo) ExistsByNationalID(_ context.Context, nationalID int64, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.persons {
		if id != exclude && p.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}
