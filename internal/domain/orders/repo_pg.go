package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{
	"treatment_order_patient_fk":    "patient",
	"treatment_order_physician_fk":  "physician",
	"treatment_order_month_check":   "month",
	"treatment_order_year_check":    "year",
	"study_coordination_patient_fk": "patient",
	"study_coordination_account_fk": "account",
	"change_request_patient_fk":     "patient",
	"change_request_account_fk":     "account",
}

type ordersRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &ordersRepoPG{pool: pool}
}

func (r *ordersRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// -- Treatment orders --

const orderCols = `id, patient_id, physician_id, valid_year, valid_month, target_minutes, dry_weight_g,
	pump_flow, bath_flow, bicarbonate, anticoagulant_dose, washes, dialyzer_type, epo_weekly,
	epo_session1, epo_session2, epo_session3, iron, sodium, post_hd_medication, vaccines,
	lab_exams, notes, created_at`

func (o *TreatmentOrder) scanDest() []any {
	return []any{&o.ID, &o.PatientID, &o.PhysicianID, &o.Year, &o.Month, &o.TargetMinutes,
		&o.DryWeightGrams, &o.PumpFlow, &o.BathFlow, &o.Bicarbonate, &o.AnticoagulantDose,
		&o.Washes, &o.DialyzerType, &o.EPOWeekly, &o.EPOSession1, &o.EPOSession2, &o.EPOSession3,
		&o.Iron, &o.Sodium, &o.PostHDMedication, &o.Vaccines, &o.LabExams, &o.Notes, &o.CreatedAt}
}

func scanOrder(row pgx.Row) (*TreatmentOrder, error) {
	var o TreatmentOrder
	if err := row.Scan(o.scanDest()...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordersRepoPG) CreateOrder(ctx context.Context, o *TreatmentOrder) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_order (`+orderCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		o.ID, o.PatientID, o.PhysicianID, o.Year, o.Month, o.TargetMinutes, o.DryWeightGrams,
		o.PumpFlow, o.BathFlow, o.Bicarbonate, o.AnticoagulantDose, o.Washes, o.DialyzerType, o.EPOWeekly,
		o.EPOSession1, o.EPOSession2, o.EPOSession3, o.Iron, o.Sodium, o.PostHDMedication, o.Vaccines,
		o.LabExams, o.Notes, o.CreatedAt)
	return db.TranslateError("treatment order", "create", err, constraints)
}

func (r *ordersRepoPG) GetOrder(ctx context.Context, id uuid.UUID) (*TreatmentOrder, error) {
	o, err := scanOrder(r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM treatment_order WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("treatment order", id)
	}
	if err != nil {
		return nil, db.TranslateError("treatment order", "get", err, constraints)
	}
	return o, nil
}

func (r *ordersRepoPG) ListOrdersByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentOrder, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM treatment_order
		WHERE patient_id = $1
		ORDER BY valid_year DESC, valid_month DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, db.TranslateError("treatment order", "list", err, constraints)
	}
	defer rows.Close()

	var out []*TreatmentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, db.TranslateError("treatment order", "list", err, constraints)
		}
		out = append(out, o)
	}
	return out, db.TranslateError("treatment order", "list", rows.Err(), constraints)
}

func (r *ordersRepoPG) LatestOrder(ctx context.Context, patientID uuid.UUID, year, month int) (*TreatmentOrder, error) {
	o, err := scanOrder(r.conn(ctx).QueryRow(ctx, `
		SELECT `+orderCols+` FROM treatment_order
		WHERE patient_id = $1 AND (valid_year < $2 OR (valid_year = $2 AND valid_month <= $3))
		ORDER BY valid_year DESC, valid_month DESC, created_at DESC
		LIMIT 1`, patientID, year, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("treatment order", nil)
	}
	if err != nil {
		return nil, db.TranslateError("treatment order", "latest", err, constraints)
	}
	return o, nil
}

// -- Follow-ups --

// followUp is the shape shared by study coordinations and change requests.
type followUp struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	AccountID uuid.UUID
	Text      string
	Open      bool
	CreatedAt time.Time
	ClosedAt  *time.Time
}

type followUpTable struct {
	entity  string
	table   string
	textCol string
}

var (
	studyTable  = followUpTable{entity: "study coordination", table: "study_coordination", textCol: "studies"}
	changeTable = followUpTable{entity: "change request", table: "change_request", textCol: "request"}
)

func (t followUpTable) cols() string {
	return `id, patient_id, account_id, ` + t.textCol + `, open, created_at, closed_at`
}

func scanFollowUp(row pgx.Row) (*followUp, error) {
	var f followUp
	if err := row.Scan(&f.ID, &f.PatientID, &f.AccountID, &f.Text, &f.Open, &f.CreatedAt, &f.ClosedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ordersRepoPG) createFollowUp(ctx context.Context, t followUpTable, f *followUp) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO `+t.table+` (`+t.cols()+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.PatientID, f.AccountID, f.Text, f.Open, f.CreatedAt, f.ClosedAt)
	return db.TranslateError(t.entity, "create", err, constraints)
}

// closeFollowUp is idempotent: a second close keeps the first closed_at.
func (r *ordersRepoPG) closeFollowUp(ctx context.Context, t followUpTable, id uuid.UUID, at time.Time) (*followUp, error) {
	f, err := scanFollowUp(r.conn(ctx).QueryRow(ctx, `
		UPDATE `+t.table+` SET open = FALSE, closed_at = COALESCE(closed_at, $2)
		WHERE id = $1
		RETURNING `+t.cols(), id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(t.entity, id)
	}
	if err != nil {
		return nil, db.TranslateError(t.entity, "close", err, constraints)
	}
	return f, nil
}

func (r *ordersRepoPG) listFollowUps(ctx context.Context, t followUpTable, patientID uuid.UUID, openOnly bool) ([]*followUp, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+t.cols()+` FROM `+t.table+`
		WHERE patient_id = $1 AND (open OR NOT $2)
		ORDER BY created_at DESC, id`, patientID, openOnly)
	if err != nil {
		return nil, db.TranslateError(t.entity, "list", err, constraints)
	}
	defer rows.Close()

	var out []*followUp
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, db.TranslateError(t.entity, "list", err, constraints)
		}
		out = append(out, f)
	}
	return out, db.TranslateError(t.entity, "list", rows.Err(), constraints)
}

func (f *followUp) study() *StudyCoordination {
	return &StudyCoordination{ID: f.ID, PatientID: f.PatientID, AccountID: f.AccountID, Studies: f.Text,
		Open: f.Open, CreatedAt: f.CreatedAt, ClosedAt: f.ClosedAt}
}

func (f *followUp) change() *ChangeRequest {
	return &ChangeRequest{ID: f.ID, PatientID: f.PatientID, AccountID: f.AccountID, Request: f.Text,
		Open: f.Open, CreatedAt: f.CreatedAt, ClosedAt: f.ClosedAt}
}

func (r *ordersRepoPG) CreateStudyCoordination(ctx context.Context, sc *StudyCoordination) error {
	f := &followUp{PatientID: sc.PatientID, AccountID: sc.AccountID, Text: sc.Studies,
		Open: sc.Open, CreatedAt: sc.CreatedAt, ClosedAt: sc.ClosedAt}
	if err := r.createFollowUp(ctx, studyTable, f); err != nil {
		return err
	}
	sc.ID = f.ID
	return nil
}

func (r *ordersRepoPG) CloseStudyCoordination(ctx context.Context, id uuid.UUID, at time.Time) (*StudyCoordination, error) {
	f, err := r.closeFollowUp(ctx, studyTable, id, at)
	if err != nil {
		return nil, err
	}
	return f.study(), nil
}

func (r *ordersRepoPG) ListStudyCoordinations(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*StudyCoordination, error) {
	fs, err := r.listFollowUps(ctx, studyTable, patientID, openOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*StudyCoordination, len(fs))
	for i, f := range fs {
		out[i] = f.study()
	}
	return out, nil
}

func (r *ordersRepoPG) CreateChangeRequest(ctx context.Context, cr *ChangeRequest) error {
	f := &followUp{PatientID: cr.PatientID, AccountID: cr.AccountID, Text: cr.Request,
		Open: cr.Open, CreatedAt: cr.CreatedAt, ClosedAt: cr.ClosedAt}
	if err := r.createFollowUp(ctx, changeTable, f); err != nil {
		return err
	}
	cr.ID = f.ID
	return nil
}

func (r *ordersRepoPG) CloseChangeRequest(ctx context.Context, id uuid.UUID, at time.Time) (*ChangeRequest, error) {
	f, err := r.closeFollowUp(ctx, changeTable, id, at)
	if err != nil {
		return nil, err
	}
	return f.change(), nil
}

func (r *ordersRepoPG) ListChangeRequests(ctx context.Context, patientID uuid.UUID, openOnly bool) ([]*ChangeRequest, error) {
	fs, err := r.listFollowUps(ctx, changeTable, patientID, openOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*ChangeRequest, len(fs))
	for i, f := range fs {
		out[i] = f.change()
	}
	return out, nil
}
