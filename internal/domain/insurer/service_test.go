package insurer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/platform/apperr"
)

type mockRepo struct {
	mu       sync.Mutex
	insurers map[uuid.UUID]Insurer
	// hideNext makes the next GetByName miss, simulating a concurrent
	// creator that commits between the lookup and the insert.
	hideNext bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{insurers: make(map[uuid.UUID]Insurer)}
}

func (m *mockRepo) Create(_ context.Context, i *Insurer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.insurers {
		if other.Name == i.Name {
			return apperr.Duplicate("insurer", "name")
		}
	}
	i.ID = uuid.New()
	m.insurers[i.ID] = *i
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Insurer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.insurers[id]
	if !ok {
		return nil, apperr.NotFound("insurer", id)
	}
	return &i, nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Insurer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideNext {
		m.hideNext = false
		return nil, &apperr.NotFoundError{Entity: "insurer", ID: name}
	}
	for _, i := range m.insurers {
		if i.Name == name {
			i := i
			return &i, nil
		}
	}
	return nil, &apperr.NotFoundError{Entity: "insurer", ID: name}
}

func (m *mockRepo) List(_ context.Context) ([]*Insurer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Insurer
	for _, i := range m.insurers {
		i := i
		out = append(out, &i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestCreateInsurer_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.CreateInsurer(ctx, &Insurer{Name: "ASSE"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.CreateInsurer(ctx, &Insurer{Name: " ASSE "})
	if field, ok := apperr.IsDuplicate(err); !ok || field != "name" {
		t.Fatalf("expected duplicate name, got %v", err)
	}
	if _, ok := apperr.IsValidation(svc.CreateInsurer(ctx, &Insurer{})); !ok {
		t.Error("expected validation error for empty name")
	}
}

func TestEnsureInsurer_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, err := svc.EnsureInsurer(ctx, "ASSE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.EnsureInsurer(ctx, "ASSE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != b.ID {
		t.Error("expected the same insurer on the second call")
	}
	if len(repo.insurers) != 1 {
		t.Errorf("expected 1 insurer, got %d", len(repo.insurers))
	}
}

func TestEnsureInsurer_LostRaceRereads(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	winner := &Insurer{Name: "CASMU"}
	repo.Create(ctx, winner)
	repo.hideNext = true

	got, err := svc.EnsureInsurer(ctx, "CASMU")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != winner.ID {
		t.Error("expected the concurrently created insurer")
	}
}

func TestExistsByInsurerName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	ok, err := svc.ExistsByInsurerName(ctx, "MUCAM")
	if err != nil || ok {
		t.Fatalf("expected false, got %v (%v)", ok, err)
	}
	svc.EnsureInsurer(ctx, "MUCAM")
	if ok, _ := svc.ExistsByInsurerName(ctx, "MUCAM"); !ok {
		t.Error("expected insurer to exist")
	}
}

func TestListInsurers_ByName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, n := range []string{"SMI", "ASSE", "CASMU"} {
		svc.EnsureInsurer(ctx, n)
	}
	list, _ := svc.ListInsurers(ctx)
	if len(list) != 3 || list[0].Name != "ASSE" || list[2].Name != "SMI" {
		t.Errorf("unexpected order: %v", list)
	}
}

func TestHandler_GetInsurer_NotFound(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	if err := h.GetInsurer(c); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandler_CreateInsurer(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ASSE"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateInsurer(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	var he *echo.HTTPError
	if err := h.CreateInsurer(e.NewContext(req, httptest.NewRecorder())); !errors.As(err, &he) {
		t.Errorf("expected bind error, got %v", err)
	}
}
