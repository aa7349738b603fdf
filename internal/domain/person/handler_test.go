package person_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/domain/person/persontest"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

func newTestHandler() (*person.Handler, *person.Service, *echo.Echo) {
	svc, _, _ := newTestService()
	return person.NewHandler(svc), svc, echo.New()
}

func TestHandler_GetPerson(t *testing.T) {
	h, svc, e := newTestHandler()
	p := persontest.Valid(person.KindStaff, "get@example.com", 11)
	if err := svc.RegisterPerson(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.GetPerson(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var got person.Person
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Email != "get@example.com" {
		t.Errorf("expected email get@example.com, got %s", got.Email)
	}
}

func TestHandler_GetPerson_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetPerson(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_UpdatePerson_Duplicate(t *testing.T) {
	h, svc, e := newTestHandler()
	ctx := context.Background()
	a := persontest.Valid(person.KindStaff, "a@example.com", 21)
	b := persontest.Valid(person.KindStaff, "b@example.com", 22)
	svc.RegisterPerson(ctx, a)
	svc.RegisterPerson(ctx, b)

	body, _ := json.Marshal(persontest.Valid(person.KindStaff, "a@example.com", 22))
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(b.ID.String())

	err := h.UpdatePerson(c)
	if field, ok := apperr.IsDuplicate(err); !ok || field != "email" {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestHandler_Exists(t *testing.T) {
	h, svc, e := newTestHandler()
	svc.RegisterPerson(context.Background(), persontest.Valid(person.KindStaff, "x@example.com", 31))

	req := httptest.NewRequest(http.MethodGet, "/persons/exists?national_id=31", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Exists(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &out)
	if !out["exists"] {
		t.Error("expected exists=true")
	}

	req = httptest.NewRequest(http.MethodGet, "/persons/exists", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.Exists(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a query, got %v", err)
	}
}
