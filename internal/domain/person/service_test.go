package person_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/domain/person/persontest"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/clock"
)

var epoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestService() (*person.Service, *persontest.Repo, *clock.Fixed) {
	repo := persontest.NewRepo()
	clk := clock.NewFixed(epoch)
	return person.NewService(repo, clk, zerolog.Nop()), repo, clk
}

func TestRegisterPerson(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := persontest.Valid(person.KindPatient, " Ana.Ruiz@Example.com ", 41234567)
	if err := svc.RegisterPerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if !p.RegisteredAt.Equal(epoch) {
		t.Errorf("expected registered_at %v, got %v", epoch, p.RegisteredAt)
	}
	if !p.Active {
		t.Error("expected new person to be active")
	}
	if p.Email != "ana.ruiz@example.com" {
		t.Errorf("expected normalized email, got %q", p.Email)
	}
}

func TestRegisterPerson_ClockReadPerCall(t *testing.T) {
	svc, _, clk := newTestService()
	ctx := context.Background()

	a := persontest.Valid(person.KindStaff, "a@example.com", 1)
	if err := svc.RegisterPerson(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := clk.Advance(time.Hour)
	b := persontest.Valid(person.KindStaff, "b@example.com", 2)
	if err := svc.RegisterPerson(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.RegisteredAt.Equal(later) || a.RegisteredAt.Equal(b.RegisteredAt) {
		t.Errorf("expected distinct per-call timestamps, got %v and %v", a.RegisteredAt, b.RegisteredAt)
	}
}

func TestRegisterPerson_Validation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(p *person.Person)
		field string
	}{
		{"missing given names", func(p *person.Person) { p.GivenNames = "  " }, "given_names"},
		{"missing email", func(p *person.Person) { p.Email = "" }, "email"},
		{"email without at", func(p *person.Person) { p.Email = "ana.example.com" }, "email"},
		{"zero national id", func(p *person.Person) { p.NationalID = 0 }, "national_id"},
		{"missing birth date", func(p *person.Person) { p.BirthDate = time.Time{} }, "birth_date"},
		{"bad sex", func(p *person.Person) { p.Sex = "q" }, "sex"},
		{"bad kind", func(p *person.Person) { p.Kind = "visitor" }, "kind"},
		{"long surnames", func(p *person.Person) { p.Surnames = string(make([]byte, 46)) }, "surnames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := persontest.Valid(person.KindStaff, "v@example.com", 99)
			tt.edit(p)
			err := svc.RegisterPerson(ctx, p)
			field, ok := apperr.IsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, field)
			}
		})
	}
	if repo.Len() != 0 {
		t.Errorf("expected no rows after failed validation, got %d", repo.Len())
	}
}

func TestRegisterPerson_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.RegisterPerson(ctx, persontest.Valid(person.KindStaff, "dup@example.com", 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.RegisterPerson(ctx, persontest.Valid(person.KindPatient, "DUP@example.com", 101))
	if field, ok := apperr.IsDuplicate(err); !ok || field != "email" {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if repo.Len() != 1 {
		t.Errorf("expected 1 row, got %d", repo.Len())
	}
}

func TestRegisterPerson_DuplicateNationalID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.RegisterPerson(ctx, persontest.Valid(person.KindStaff, "one@example.com", 200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.RegisterPerson(ctx, persontest.Valid(person.KindStaff, "two@example.com", 200))
	if field, ok := apperr.IsDuplicate(err); !ok || field != "national_id" {
		t.Fatalf("expected duplicate national_id, got %v", err)
	}
}

func TestRegisterPerson_ConcurrentSameEmail(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.RegisterPerson(ctx, persontest.Valid(person.KindStaff, "race@example.com", int64(300+i)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if field, ok := apperr.IsDuplicate(err); !ok || field != "email" {
			t.Errorf("expected duplicate email, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one registration to succeed, got %d", succeeded)
	}
	if repo.Len() != 1 {
		t.Errorf("expected 1 row, got %d", repo.Len())
	}
}

func TestUpdatePerson_FreesOldEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := persontest.Valid(person.KindStaff, "old@example.com", 400)
	if err := svc.RegisterPerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Email = "new@example.com"
	if err := svc.UpdatePerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := persontest.Valid(person.KindPatient, "old@example.com", 401)
	if err := svc.RegisterPerson(ctx, other); err != nil {
		t.Fatalf("expected old email to be reusable, got %v", err)
	}
}

func TestUpdatePerson_OwnRowExcluded(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := persontest.Valid(person.KindStaff, "self@example.com", 500)
	if err := svc.RegisterPerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Phone1 = "098000111"
	if err := svc.UpdatePerson(ctx, p); err != nil {
		t.Fatalf("updating with unchanged email must succeed, got %v", err)
	}
}

func TestUpdatePerson_CollidesWithOther(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a := persontest.Valid(person.KindStaff, "a@example.com", 600)
	b := persontest.Valid(person.KindStaff, "b@example.com", 601)
	for _, p := range []*person.Person{a, b} {
		if err := svc.RegisterPerson(ctx, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	b.Email = "a@example.com"
	if field, ok := apperr.IsDuplicate(svc.UpdatePerson(ctx, b)); !ok || field != "email" {
		t.Fatalf("expected duplicate email, got field %q", field)
	}
	stored, _ := svc.GetPerson(ctx, b.ID)
	if stored.Email != "b@example.com" {
		t.Errorf("expected stored email unchanged, got %s", stored.Email)
	}
}

func TestUpdatePerson_KeepsImmutableFields(t *testing.T) {
	svc, _, clk := newTestService()
	ctx := context.Background()

	p := persontest.Valid(person.KindPatient, "keep@example.com", 700)
	if err := svc.RegisterPerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clk.Advance(24 * time.Hour)

	edit := persontest.Valid(person.KindStaff, "keep@example.com", 700)
	edit.ID = p.ID
	edit.Surnames = "Ruiz Pereira"
	if err := svc.UpdatePerson(ctx, edit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := svc.GetPerson(ctx, p.ID)
	if stored.Kind != person.KindPatient {
		t.Errorf("expected kind to stay patient, got %s", stored.Kind)
	}
	if !stored.RegisteredAt.Equal(epoch) {
		t.Errorf("expected registered_at unchanged, got %v", stored.RegisteredAt)
	}
	if stored.Surnames != "Ruiz Pereira" {
		t.Errorf("expected surnames updated, got %s", stored.Surnames)
	}
}

func TestUpdatePerson_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	p := persontest.Valid(person.KindStaff, "ghost@example.com", 800)
	p.ID = uuid.New()
	if err := svc.UpdatePerson(context.Background(), p); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExistsByEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ok, err := svc.ExistsByEmail(ctx, "nobody@example.com")
	if err != nil || ok {
		t.Fatalf("expected false, got %v (%v)", ok, err)
	}
	if err := svc.RegisterPerson(ctx, persontest.Valid(person.KindStaff, "here@example.com", 900)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ = svc.ExistsByEmail(ctx, " HERE@example.com")
	if !ok {
		t.Error("expected email lookup to be case-insensitive")
	}
	ok, _ = svc.ExistsByNationalID(ctx, 900)
	if !ok {
		t.Error("expected national id to exist")
	}
}

func TestSetActive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := persontest.Valid(person.KindStaff, "off@example.com", 1000)
	if err := svc.RegisterPerson(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetActive(ctx, p.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := svc.GetPerson(ctx, p.ID)
	if stored.Active {
		t.Error("expected person to be inactive")
	}

	// A full update must not reactivate.
	stored.Notes = nil
	if err := svc.UpdatePerson(ctx, stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := svc.GetPerson(ctx, p.ID)
	if again.Active {
		t.Error("update must not change the active flag")
	}
}
