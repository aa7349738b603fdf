package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{
	"treatment_session_slot_key":              "slot",
	"treatment_session_schedule_fk":           "schedule_entry",
	"treatment_session_patient_fk":            "patient",
	"treatment_session_station_fk":            "station",
	"treatment_session_aux_nurse_fk":          "aux_nurse",
	"treatment_session_nurse_fk":              "nurse",
	"treatment_session_physician_fk":          "physician",
	"vitals_check_session_fk":                 "session",
	"vitals_check_aux_nurse_fk":               "aux_nurse",
	"recirculation_test_session_fk":           "session",
	"recirculation_test_aux_nurse_fk":         "aux_nurse",
	"dialyzer_patient_fk":                     "patient",
	"dialyzer_action_dialyzer_fk":             "dialyzer",
	"dialyzer_action_aux_nurse_fk":            "aux_nurse",
	"dialyzer_action_action_check":            "action",
	"dialyzer_action_volume_check":            "volume",
	"dialyzer_recirculation_link_pkey":        "dialyzer_recirculation_link",
	"dialyzer_recirculation_link_dialyzer_fk": "dialyzer",
	"dialyzer_recirculation_link_test_fk":     "recirculation_test",
}

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &sessionRepoPG{pool: pool}
}

func (r *sessionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// -- Treatment sessions --

const sessionCols = `id, session_date, shift, patient_id, station_id, aux_nurse_id, nurse_id, physician_id,
	anticoagulant_dose, pre_weight_g, dry_weight_g, uf_goal_ml, vascular_access, dialysate, minutes,
	medication, epo_given, iron_given, disconnected_at, ktv, pre_systolic, pre_diastolic,
	post_systolic, post_diastolic, temperature, bath_flow,
	pre_check_patient, pre_check_station, pre_check_dialyzer,
	post_check_lines, post_check_pump, post_check_uf, post_check_dialyzer, post_check_heparin, post_check_air,
	machine_number, extra_session, extra_reason, intradialytic_labs, sent_to_fund, recorded_at`

func (s *TreatmentSession) fields(shift *string) []any {
	return []any{&s.ID, &s.Date, shift, &s.PatientID, &s.StationID, &s.AuxNurseID, &s.NurseID, &s.PhysicianID,
		&s.AnticoagulantDose, &s.PreWeightGrams, &s.DryWeightGrams, &s.UFGoalML, &s.VascularAccess, &s.Dialysate, &s.Minutes,
		&s.Medication, &s.EPOGiven, &s.IronGiven, &s.DisconnectedAt, &s.KtV, &s.PreSystolic, &s.PreDiastolic,
		&s.PostSystolic, &s.PostDiastolic, &s.Temperature, &s.BathFlow,
		&s.Connection.Patient, &s.Connection.Station, &s.Connection.Dialyzer,
		&s.PostConnection.Lines, &s.PostConnection.Pump, &s.PostConnection.UF, &s.PostConnection.Dialyzer,
		&s.PostConnection.Heparin, &s.PostConnection.Air,
		&s.MachineNumber, &s.ExtraSession, &s.ExtraReason, &s.IntradialyticLabs, &s.SentToFund, &s.RecordedAt}
}

func scanSession(row pgx.Row) (*TreatmentSession, error) {
	var s TreatmentSession
	var shift string
	if err := row.Scan(s.fields(&shift)...); err != nil {
		return nil, err
	}
	s.Shift = scheduling.Shift(shift)
	return &s, nil
}

func (r *sessionRepoPG) CreateSession(ctx context.Context, s *TreatmentSession) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_session (`+sessionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,$41)`,
		s.ID, s.Date, string(s.Shift), s.PatientID, s.StationID, s.AuxNurseID, s.NurseID, s.PhysicianID,
		s.AnticoagulantDose, s.PreWeightGrams, s.DryWeightGrams, s.UFGoalML, s.VascularAccess, s.Dialysate, s.Minutes,
		s.Medication, s.EPOGiven, s.IronGiven, s.DisconnectedAt, s.KtV, s.PreSystolic, s.PreDiastolic,
		s.PostSystolic, s.PostDiastolic, s.Temperature, s.BathFlow,
		s.Connection.Patient, s.Connection.Station, s.Connection.Dialyzer,
		s.PostConnection.Lines, s.PostConnection.Pump, s.PostConnection.UF, s.PostConnection.Dialyzer,
		s.PostConnection.Heparin, s.PostConnection.Air,
		s.MachineNumber, s.ExtraSession, s.ExtraReason, s.IntradialyticLabs, s.SentToFund, s.RecordedAt)
	return db.TranslateError("treatment session", "create", err, constraints)
}

func (r *sessionRepoPG) GetSession(ctx context.Context, id uuid.UUID) (*TreatmentSession, error) {
	s, err := scanSession(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM treatment_session WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("treatment session", id)
	}
	if err != nil {
		return nil, db.TranslateError("treatment session", "get", err, constraints)
	}
	return s, nil
}

func (r *sessionRepoPG) ListSessionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentSession, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sessionCols+` FROM treatment_session
		WHERE patient_id = $1
		ORDER BY session_date DESC, CASE shift WHEN 'M' THEN 0 WHEN 'A' THEN 1 ELSE 2 END DESC`, patientID)
	if err != nil {
		return nil, db.TranslateError("treatment session", "list", err, constraints)
	}
	defer rows.Close()

	var out []*TreatmentSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, db.TranslateError("treatment session", "list", err, constraints)
		}
		out = append(out, s)
	}
	return out, db.TranslateError("treatment session", "list", rows.Err(), constraints)
}

// -- Vitals --

const vitalsCols = `id, seq, session_id, aux_nurse_id, taken_at, pump_flow, venous_pressure,
	transmembrane_pressure, bath_flow, conductivity, systolic, diastolic, heart_rate`

func (r *sessionRepoPG) CreateVitals(ctx context.Context, v *VitalsCheck) error {
	v.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vitals_check (id, session_id, aux_nurse_id, taken_at, pump_flow, venous_pressure,
			transmembrane_pressure, bath_flow, conductivity, systolic, diastolic, heart_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING seq`,
		v.ID, v.SessionID, v.AuxNurseID, v.TakenAt, v.PumpFlow, v.VenousPressure,
		v.TransmembranePressure, v.BathFlow, v.Conductivity, v.Systolic, v.Diastolic, v.HeartRate).Scan(&v.Seq)
	return db.TranslateError("vitals check", "create", err, constraints)
}

func (r *sessionRepoPG) ListVitals(ctx context.Context, sessionID uuid.UUID) ([]*VitalsCheck, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+vitalsCols+` FROM vitals_check
		WHERE session_id = $1
		ORDER BY taken_at, seq`, sessionID)
	if err != nil {
		return nil, db.TranslateError("vitals check", "list", err, constraints)
	}
	defer rows.Close()

	var out []*VitalsCheck
	for rows.Next() {
		var v VitalsCheck
		if err := rows.Scan(&v.ID, &v.Seq, &v.SessionID, &v.AuxNurseID, &v.TakenAt, &v.PumpFlow,
			&v.VenousPressure, &v.TransmembranePressure, &v.BathFlow, &v.Conductivity,
			&v.Systolic, &v.Diastolic, &v.HeartRate); err != nil {
			return nil, db.TranslateError("vitals check", "list", err, constraints)
		}
		out = append(out, &v)
	}
	return out, db.TranslateError("vitals check", "list", rows.Err(), constraints)
}

// -- Recirculation tests --

const recirculationCols = `id, session_id, aux_nurse_id, qualitative, quantitative, recorded_at`

func scanRecirculation(row pgx.Row) (*RecirculationTest, error) {
	var t RecirculationTest
	if err := row.Scan(&t.ID, &t.SessionID, &t.AuxNurseID, &t.Qualitative, &t.Quantitative, &t.RecordedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *sessionRepoPG) CreateRecirculationTest(ctx context.Context, t *RecirculationTest) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO recirculation_test (`+recirculationCols+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.SessionID, t.AuxNurseID, t.Qualitative, t.Quantitative, t.RecordedAt)
	return db.TranslateError("recirculation test", "create", err, constraints)
}

func (r *sessionRepoPG) GetRecirculationTest(ctx context.Context, id uuid.UUID) (*RecirculationTest, error) {
	t, err := scanRecirculation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recirculationCols+` FROM recirculation_test WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("recirculation test", id)
	}
	if err != nil {
		return nil, db.TranslateError("recirculation test", "get", err, constraints)
	}
	return t, nil
}

func (r *sessionRepoPG) listRecirculation(ctx context.Context, op, query string, arg uuid.UUID) ([]*RecirculationTest, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, db.TranslateError("recirculation test", op, err, constraints)
	}
	defer rows.Close()

	var out []*RecirculationTest
	for rows.Next() {
		t, err := scanRecirculation(rows)
		if err != nil {
			return nil, db.TranslateError("recirculation test", op, err, constraints)
		}
		out = append(out, t)
	}
	return out, db.TranslateError("recirculation test", op, rows.Err(), constraints)
}

func (r *sessionRepoPG) ListRecirculationTests(ctx context.Context, sessionID uuid.UUID) ([]*RecirculationTest, error) {
	return r.listRecirculation(ctx, "list", `
		SELECT `+recirculationCols+` FROM recirculation_test
		WHERE session_id = $1
		ORDER BY recorded_at, id`, sessionID)
}

// -- Dialyzers --

const dialyzerCols = `id, patient_id, dialyzer_type, active, created_at`

func scanDialyzer(row pgx.Row) (*Dialyzer, error) {
	var d Dialyzer
	if err := row.Scan(&d.ID, &d.PatientID, &d.Type, &d.Active, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *sessionRepoPG) CreateDialyzer(ctx context.Context, d *Dialyzer) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO dialyzer (`+dialyzerCols+`) VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.PatientID, d.Type, d.Active, d.CreatedAt)
	return db.TranslateError("dialyzer", "create", err, constraints)
}

func (r *sessionRepoPG) LockDialyzer(ctx context.Context, id uuid.UUID) (*Dialyzer, error) {
	q := `SELECT ` + dialyzerCols + ` FROM dialyzer WHERE id = $1`
	if db.TxFromContext(ctx) != nil {
		q += ` FOR UPDATE`
	}
	d, err := scanDialyzer(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("dialyzer", id)
	}
	if err != nil {
		return nil, db.TranslateError("dialyzer", "lock", err, constraints)
	}
	return d, nil
}

func (r *sessionRepoPG) DeactivateDialyzer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE dialyzer SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError("dialyzer", "deactivate", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("dialyzer", id)
	}
	return nil
}

func (r *sessionRepoPG) ListDialyzers(ctx context.Context, patientID uuid.UUID) ([]*Dialyzer, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+dialyzerCols+` FROM dialyzer
		WHERE patient_id = $1
		ORDER BY active DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, db.TranslateError("dialyzer", "list", err, constraints)
	}
	defer rows.Close()

	var out []*Dialyzer
	for rows.Next() {
		d, err := scanDialyzer(rows)
		if err != nil {
			return nil, db.TranslateError("dialyzer", "list", err, constraints)
		}
		out = append(out, d)
	}
	return out, db.TranslateError("dialyzer", "list", rows.Err(), constraints)
}

// -- Dialyzer actions --

func (r *sessionRepoPG) CreateDialyzerAction(ctx context.Context, a *DialyzerAction) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dialyzer_action (id, dialyzer_id, aux_nurse_id, action, performed_at,
			priming_volume_ml, residual_volume_ml)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING seq`,
		a.ID, a.DialyzerID, a.AuxNurseID, string(a.Action), a.PerformedAt,
		a.PrimingVolumeML, a.ResidualVolumeML).Scan(&a.Seq)
	return db.TranslateError("dialyzer action", "create", err, constraints)
}

func (r *sessionRepoPG) ListDialyzerActions(ctx context.Context, dialyzerID uuid.UUID) ([]*DialyzerAction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, seq, dialyzer_id, aux_nurse_id, action, performed_at, priming_volume_ml, residual_volume_ml
		FROM dialyzer_action
		WHERE dialyzer_id = $1
		ORDER BY performed_at, seq`, dialyzerID)
	if err != nil {
		return nil, db.TranslateError("dialyzer action", "list", err, constraints)
	}
	defer rows.Close()

	var out []*DialyzerAction
	for rows.Next() {
		var a DialyzerAction
		var action string
		if err := rows.Scan(&a.ID, &a.Seq, &a.DialyzerID, &a.AuxNurseID, &action, &a.PerformedAt,
			&a.PrimingVolumeML, &a.ResidualVolumeML); err != nil {
			return nil, db.TranslateError("dialyzer action", "list", err, constraints)
		}
		a.Action = ActionKind(action)
		out = append(out, &a)
	}
	return out, db.TranslateError("dialyzer action", "list", rows.Err(), constraints)
}

// -- Dialyzer / recirculation links --

func (r *sessionRepoPG) CreateLink(ctx context.Context, dialyzerID, testID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO dialyzer_recirculation_link (dialyzer_id, recirculation_test_id) VALUES ($1, $2)`,
		dialyzerID, testID)
	return db.TranslateError("dialyzer recirculation link", "create", err, constraints)
}

func (r *sessionRepoPG) ListLinkedTests(ctx context.Context, dialyzerID uuid.UUID) ([]*RecirculationTest, error) {
	return r.listRecirculation(ctx, "list linked", `
		SELECT t.id, t.session_id, t.aux_nurse_id, t.qualitative, t.quantitative, t.recorded_at
		FROM dialyzer_recirculation_link l
		JOIN recirculation_test t ON t.id = l.recirculation_test_id
		WHERE l.dialyzer_id = $1
		ORDER BY t.recorded_at, t.id`, dialyzerID)
}
