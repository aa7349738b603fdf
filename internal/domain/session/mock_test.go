package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/platform/apperr"
)

type linkKey struct{ dialyzer, test uuid.UUID }

type mockRepo struct {
	mu        sync.Mutex
	refs      map[uuid.UUID]string
	sessions  map[uuid.UUID]TreatmentSession
	vitals    []VitalsCheck
	tests     map[uuid.UUID]RecirculationTest
	dialyzers map[uuid.UUID]Dialyzer
	actions   []DialyzerAction
	links     map[linkKey]bool
	seq       int64

	failDeactivate error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		refs:      make(map[uuid.UUID]string),
		sessions:  make(map[uuid.UUID]TreatmentSession),
		tests:     make(map[uuid.UUID]RecirculationTest),
		dialyzers: make(map[uuid.UUID]Dialyzer),
		links:     make(map[linkKey]bool),
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
	s, t, d, l := copyMap(m.sessions), copyMap(m.tests), copyMap(m.dialyzers), copyMap(m.links)
	v := append([]VitalsCheck(nil), m.vitals...)
	a := append([]DialyzerAction(nil), m.actions...)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.sessions, m.tests, m.dialyzers, m.links, m.vitals, m.actions = s, t, d, l, v, a
	}
}

// ref registers an existing row of the given kind.
func (m *mockRepo) ref(kind string) uuid.UUID {
	id := uuid.New()
	m.refs[id] = kind
	return id
}

func (m *mockRepo) checkRef(entity, kind string, id uuid.UUID) error {
	if m.refs[id] != kind {
		return apperr.ForeignKey(entity, kind)
	}
	return nil
}

func (m *mockRepo) CreateSession(_ context.Context, s *TreatmentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.sessions {
		if other.ScheduleKey() == s.ScheduleKey() {
			return apperr.Duplicate("treatment session", "slot")
		}
	}
	for _, r := range []struct {
		kind string
		id   uuid.UUID
	}{
		{"patient", s.PatientID},
		{"station", s.StationID},
		{"aux_nurse", s.AuxNurseID},
		{"nurse", s.NurseID},
		{"physician", s.PhysicianID},
	} {
		if err := m.checkRef("treatment session", r.kind, r.id); err != nil {
			return err
		}
	}
	s.ID = uuid.New()
	m.sessions[s.ID] = *s
	return nil
}

func (m *mockRepo) GetSession(_ context.Context, id uuid.UUID) (*TreatmentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("treatment session", id)
	}
	return &s, nil
}

func (m *mockRepo) ListSessionsByPatient(_ context.Context, pid uuid.UUID) ([]*TreatmentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*TreatmentSession
	for _, s := range m.sessions {
		if s.PatientID == pid {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[j].Shift.Before(out[i].Shift)
	})
	return out, nil
}

func (m *mockRepo) CreateVitals(_ context.Context, v *VitalsCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[v.SessionID]; !ok {
		return apperr.ForeignKey("vitals check", "session")
	}
	if err := m.checkRef("vitals check", "aux_nurse", v.AuxNurseID); err != nil {
		return err
	}
	m.seq++
	v.ID, v.Seq = uuid.New(), m.seq
	m.vitals = append(m.vitals, *v)
	return nil
}

func (m *mockRepo) ListVitals(_ context.Context, sessionID uuid.UUID) ([]*VitalsCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*VitalsCheck
	for _, v := range m.vitals {
		if v.SessionID == sessionID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TakenAt.Equal(out[j].TakenAt) {
			return out[i].TakenAt.Before(out[j].TakenAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (m *mockRepo) CreateRecirculationTest(_ context.Context, t *RecirculationTest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[t.SessionID]; !ok {
		return apperr.ForeignKey("recirculation test", "session")
	}
	if err := m.checkRef("recirculation test", "aux_nurse", t.AuxNurseID); err != nil {
		return err
	}
	t.ID = uuid.New()
	m.tests[t.ID] = *t
	return nil
}

func (m *mockRepo) GetRecirculationTest(_ context.Context, id uuid.UUID) (*RecirculationTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, apperr.NotFound("recirculation test", id)
	}
	return &t, nil
}

func sortTests(out []*RecirculationTest) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}

func (m *mockRepo) ListRecirculationTests(_ context.Context, sessionID uuid.UUID) ([]*RecirculationTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*RecirculationTest
	for _, t := range m.tests {
		if t.SessionID == sessionID {
			t := t
			out = append(out, &t)
		}
	}
	sortTests(out)
	return out, nil
}

func (m *mockRepo) CreateDialyzer(_ context.Context, d *Dialyzer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRef("dialyzer", "patient", d.PatientID); err != nil {
		return err
	}
	d.ID = uuid.New()
	m.dialyzers[d.ID] = *d
	return nil
}

func (m *mockRepo) LockDialyzer(_ context.Context, id uuid.UUID) (*Dialyzer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialyzers[id]
	if !ok {
		return nil, apperr.NotFound("dialyzer", id)
	}
	return &d, nil
}

func (m *mockRepo) DeactivateDialyzer(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeactivate != nil {
		return m.failDeactivate
	}
	d, ok := m.dialyzers[id]
	if !ok {
		return apperr.NotFound("dialyzer", id)
	}
	d.Active = false
	m.dialyzers[id] = d
	return nil
}

func (m *mockRepo) ListDialyzers(_ context.Context, pid uuid.UUID) ([]*Dialyzer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Dialyzer
	for _, d := range m.dialyzers {
		if d.PatientID == pid {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockRepo) CreateDialyzerAction(_ context.Context, a *DialyzerAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dialyzers[a.DialyzerID]; !ok {
		return apperr.ForeignKey("dialyzer action", "dialyzer")
	}
	if err := m.checkRef("dialyzer action", "aux_nurse", a.AuxNurseID); err != nil {
		return err
	}
	m.seq++
	a.ID, a.Seq = uuid.New(), m.seq
	m.actions = append(m.actions, *a)
	return nil
}

func (m *mockRepo) ListDialyzerActions(_ context.Context, dialyzerID uuid.UUID) ([]*DialyzerAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*DialyzerAction
	for _, a := range m.actions {
		if a.DialyzerID == dialyzerID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PerformedAt.Equal(out[j].PerformedAt) {
			return out[i].PerformedAt.Before(out[j].PerformedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (m *mockRepo) CreateLink(_ context.Context, dialyzerID, testID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := linkKey{dialyzerID, testID}
	if m.links[k] {
		return apperr.Duplicate("dialyzer recirculation link", "dialyzer_recirculation_link")
	}
	if _, ok := m.dialyzers[dialyzerID]; !ok {
		return apperr.ForeignKey("dialyzer recirculation link", "dialyzer")
	}
	if _, ok := m.tests[testID]; !ok {
		return apperr.ForeignKey("dialyzer recirculation link", "recirculation_test")
	}
	m.links[k] = true
	return nil
}

func (m *mockRepo) ListLinkedTests(_ context.Context, dialyzerID uuid.UUID) ([]*RecirculationTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*RecirculationTest
	for k := range m.links {
		if k.dialyzer == dialyzerID {
			t := m.tests[k.test]
			out = append(out, &t)
		}
	}
	sortTests(out)
	return out, nil
}

type fakeSchedule struct {
	entries map[scheduling.Key]scheduling.Entry
}

func (f *fakeSchedule) add(date time.Time, shift scheduling.Shift, patientID, stationID uuid.UUID, noShow bool) {
	k := scheduling.Key{Date: date, Shift: shift, PatientID: patientID}
	f.entries[k] = scheduling.Entry{Date: date, Shift: shift, PatientID: patientID, StationID: stationID, NoShow: noShow}
}

func (f *fakeSchedule) GetEntry(_ context.Context, k scheduling.Key) (*scheduling.Entry, error) {
	e, ok := f.entries[k]
	if !ok {
		return nil, apperr.NotFound("schedule entry", k)
	}
	return &e, nil
}
