package staff

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/domain/person/persontest"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

type mockRepo struct {
	mu         sync.Mutex
	persons    *persontest.Repo
	accounts   map[uuid.UUID]Account
	physicians map[uuid.UUID]Physician
	nurses     map[uuid.UUID]Nurse
	auxNurses  map[uuid.UUID]AuxNurse
	admins     map[uuid.UUID]AdminStaff
}

func newMockRepo(persons *persontest.Repo) *mockRepo {
	return &mockRepo{
		persons:    persons,
		accounts:   make(map[uuid.UUID]Account),
		physicians: make(map[uuid.UUID]Physician),
		nurses:     make(map[uuid.UUID]Nurse),
		auxNurses:  make(map[uuid.UUID]AuxNurse),
		admins:     make(map[uuid.UUID]AdminStaff),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *mockRepo) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ph, n, ax, ad := copyMap(m.accounts), copyMap(m.physicians), copyMap(m.nurses), copyMap(m.auxNurses), copyMap(m.admins)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.accounts, m.physicians, m.nurses, m.auxNurses, m.admins = a, ph, n, ax, ad
	}
}

func (m *mockRepo) CreateAccount(ctx context.Context, a *Account) error {
	p, err := m.persons.GetByID(ctx, a.PersonID)
	if err != nil || p.Kind != person.KindStaff {
		return apperr.ForeignKey("account", "person")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.accounts {
		if other.Login == a.Login {
			return apperr.Duplicate("account", "login")
		}
		if other.PersonID == a.PersonID {
			return apperr.Duplicate("account", "person")
		}
	}
	a.ID = uuid.New()
	stored := *a
	stored.Person, stored.Physician, stored.Nurse, stored.AuxNurse, stored.Admin = nil, nil, nil, nil, nil
	m.accounts[a.ID] = stored
	return nil
}

func (m *mockRepo) UpdateAccount(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[a.ID]
	if !ok {
		return apperr.NotFound("account", a.ID)
	}
	for id, other := range m.accounts {
		if id != a.ID && other.Login == a.Login {
			return apperr.Duplicate("account", "login")
		}
	}
	stored.Role, stored.Login, stored.CredentialHash, stored.UpdatedAt = a.Role, a.Login, a.CredentialHash, a.UpdatedAt
	m.accounts[a.ID] = stored
	return nil
}

// hydrate loads the person and profile; callers hold m.mu.
func (m *mockRepo) hydrate(ctx context.Context, a Account) *Account {
	if p, err := m.persons.GetByID(ctx, a.PersonID); err == nil {
		a.Person = p
	}
	for _, v := range m.physicians {
		if v.AccountID == a.ID {
			v := v
			a.Physician = &v
		}
	}
	for _, v := range m.nurses {
		if v.AccountID == a.ID {
			v := v
			a.Nurse = &v
		}
	}
	for _, v := range m.auxNurses {
		if v.AccountID == a.ID {
			v := v
			a.AuxNurse = &v
		}
	}
	for _, v := range m.admins {
		if v.AccountID == a.ID {
			v := v
			a.Admin = &v
		}
	}
	return &a
}

func (m *mockRepo) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, apperr.NotFound("account", id)
	}
	return m.hydrate(ctx, a), nil
}

func (m *mockRepo) GetAccountByLogin(ctx context.Context, login string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Login == login {
			return m.hydrate(ctx, a), nil
		}
	}
	return nil, &apperr.NotFoundError{Entity: "account", ID: login}
}

func (m *mockRepo) ExistsByLogin(_ context.Context, login string, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.accounts {
		if id != exclude && a.Login == login {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) sorted(ctx context.Context, keep func(Account) bool) []*Account {
	var out []*Account
	for _, a := range m.accounts {
		if keep(a) {
			out = append(out, m.hydrate(ctx, a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Person, out[j].Person
		if pi.Surnames != pj.Surnames {
			return pi.Surnames < pj.Surnames
		}
		if pi.GivenNames != pj.GivenNames {
			return pi.GivenNames < pj.GivenNames
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *mockRepo) ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(ctx, func(Account) bool { return true })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListByRole(ctx context.Context, role Role) ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(ctx, func(a Account) bool { return a.Role == role }), nil
}

// profileAccount emulates the (account_id, account_role) foreign key.
func (m *mockRepo) profileAccount(entity string, accountID uuid.UUID, role Role) error {
	a, ok := m.accounts[accountID]
	if !ok || a.Role != role {
		return apperr.ForeignKey(entity, "account")
	}
	return nil
}

func (m *mockRepo) CreatePhysician(_ context.Context, p *Physician) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.profileAccount("physician", p.AccountID, RolePhysician); err != nil {
		return err
	}
	for _, other := range m.physicians {
		if other.LicenseNumber == p.LicenseNumber {
			return apperr.Duplicate("physician", "license_number")
		}
		if other.AccountID == p.AccountID {
			return apperr.Duplicate("physician", "account")
		}
	}
	p.ID = uuid.New()
	m.physicians[p.ID] = *p
	return nil
}

func (m *mockRepo) CreateNurse(_ context.Context, n *Nurse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.profileAccount("nurse", n.AccountID, RoleNurse); err != nil {
		return err
	}
	n.ID = uuid.New()
	m.nurses[n.ID] = *n
	return nil
}

func (m *mockRepo) CreateAuxNurse(_ context.Context, n *AuxNurse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.profileAccount("aux_nurse", n.AccountID, RoleAuxNurse); err != nil {
		return err
	}
	n.ID = uuid.New()
	m.auxNurses[n.ID] = *n
	return nil
}

func (m *mockRepo) CreateAdminStaff(_ context.Context, a *AdminStaff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.profileAccount("admin_staff", a.AccountID, RoleAdmin); err != nil {
		return err
	}
	a.ID = uuid.New()
	m.admins[a.ID] = *a
	return nil
}

func (m *mockRepo) ProfileActive(ctx context.Context, role Role, profileID uuid.UUID) (bool, error) {
	m.mu.Lock()
	var accountID uuid.UUID
	found := false
	switch role {
	case RolePhysician:
		var v Physician
		v, found = m.physicians[profileID]
		accountID = v.AccountID
	case RoleNurse:
		var v Nurse
		v, found = m.nurses[profileID]
		accountID = v.AccountID
	case RoleAuxNurse:
		var v AuxNurse
		v, found = m.auxNurses[profileID]
		accountID = v.AccountID
	case RoleAdmin:
		var v AdminStaff
		v, found = m.admins[profileID]
		accountID = v.AccountID
	}
	a := m.accounts[accountID]
	m.mu.Unlock()
	if !found {
		return false, apperr.NotFound(string(role), profileID)
	}
	p, err := m.persons.GetByID(ctx, a.PersonID)
	if err != nil {
		return false, err
	}
	return p.Active, nil
}
