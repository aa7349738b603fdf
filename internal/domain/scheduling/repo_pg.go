package scheduling

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
	"schedule_entry_pkey":         "schedule_entry",
	"schedule_entry_station_key":  "station",
	"schedule_entry_patient_fk":   "patient",
	"schedule_entry_station_fk":   "station",
	"schedule_entry_shift_check":  "shift",
	"schedule_entry_weight_check": "weight",
}

const shiftRank = `CASE shift WHEN 'M' THEN 0 WHEN 'A' THEN 1 ELSE 2 END`

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &scheduleRepoPG{pool: pool}
}

func (r *scheduleRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const entryCols = `entry_date, shift, patient_id, station_id, arrival_weight_g, departure_weight_g,
	no_show, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var shift string
	if err := row.Scan(&e.Date, &shift, &e.PatientID, &e.StationID, &e.ArrivalWeightGrams,
		&e.DepartureWeightGrams, &e.NoShow, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Shift = Shift(shift)
	return &e, nil
}

func (r *scheduleRepoPG) Create(ctx context.Context, e *Entry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedule_entry (`+entryCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.Date, string(e.Shift), e.PatientID, e.StationID, e.ArrivalWeightGrams,
		e.DepartureWeightGrams, e.NoShow, e.CreatedAt, e.UpdatedAt)
	return db.TranslateError("schedule entry", "create", err, constraints)
}

func (r *scheduleRepoPG) Get(ctx context.Context, k Key) (*Entry, error) {
	e, err := scanEntry(r.conn(ctx).QueryRow(ctx, `
		SELECT `+entryCols+` FROM schedule_entry
		WHERE entry_date = $1 AND shift = $2 AND patient_id = $3`,
		k.Date, string(k.Shift), k.PatientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("schedule entry", k)
	}
	if err != nil {
		return nil, db.TranslateError("schedule entry", "get", err, constraints)
	}
	return e, nil
}

func (r *scheduleRepoPG) Update(ctx context.Context, e *Entry) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_entry
		SET arrival_weight_g = $4, departure_weight_g = $5, no_show = $6, updated_at = $7
		WHERE entry_date = $1 AND shift = $2 AND patient_id = $3`,
		e.Date, string(e.Shift), e.PatientID, e.ArrivalWeightGrams, e.DepartureWeightGrams,
		e.NoShow, e.UpdatedAt)
	if err != nil {
		return db.TranslateError("schedule entry", "update", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("schedule entry", e.Key())
	}
	return nil
}

func (r *scheduleRepoPG) list(ctx context.Context, op, where string, args ...any) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM schedule_entry
		WHERE `+where+`
		ORDER BY entry_date, `+shiftRank+`, station_id, patient_id`, args...)
	if err != nil {
		return nil, db.TranslateError("schedule entry", op, err, constraints)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, db.TranslateError("schedule entry", op, err, constraints)
		}
		out = append(out, e)
	}
	return out, db.TranslateError("schedule entry", op, rows.Err(), constraints)
}

func (r *scheduleRepoPG) ListByDate(ctx context.Context, date time.Time) ([]*Entry, error) {
	return r.list(ctx, "list by date", `entry_date = $1`, date)
}

func (r *scheduleRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*Entry, error) {
	return r.list(ctx, "list by patient",
		`patient_id = $1 AND entry_date >= $2 AND entry_date <= $3`, patientID, from, to)
}

func (r *scheduleRepoPG) Roster(ctx context.Context, date time.Time) ([]RosterRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT se.shift, rm.name, st.label, p.surnames || ', ' || p.given_names, p.national_id,
			se.arrival_weight_g, se.departure_weight_g, se.no_show
		FROM schedule_entry se
		JOIN station st ON st.id = se.station_id
		JOIN room rm ON rm.id = st.room_id
		JOIN patient pt ON pt.id = se.patient_id
		JOIN person p ON p.id = pt.person_id
		WHERE se.entry_date = $1
		ORDER BY CASE se.shift WHEN 'M' THEN 0 WHEN 'A' THEN 1 ELSE 2 END, rm.name, st.label`, date)
	if err != nil {
		return nil, db.TranslateError("schedule entry", "roster", err, constraints)
	}
	defer rows.Close()

	var out []RosterRow
	for rows.Next() {
		var row RosterRow
		var shift string
		if err := rows.Scan(&shift, &row.Room, &row.Station, &row.PatientName, &row.NationalID,
			&row.ArrivalWeightGrams, &row.DepartureWeightGrams, &row.NoShow); err != nil {
			return nil, db.TranslateError("schedule entry", "roster", err, constraints)
		}
		row.Shift = Shift(shift)
		out = append(out, row)
	}
	return out, db.TranslateError("schedule entry", "roster", rows.Err(), constraints)
}
