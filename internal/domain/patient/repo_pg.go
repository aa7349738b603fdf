package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{
	"patient_person_key":        "person",
	"patient_person_fk":         "person",
	"patient_person_kind_check": "person",
	"patient_insurer_fk":        "insurer",
	"patient_physician_fk":      "physician",
	"patient_aux_nurse_fk":      "aux_nurse",
	"patient_height_check":      "height_cm",
	"patient_blood_group_check": "blood_group",
	"patient_rh_check":          "rh",
}

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `pt.id, pt.person_id, pt.insurer_id, pt.physician_id, pt.aux_nurse_id, pt.height_cm,
	pt.patient_type, pt.vascular_access, pt.blood_group, pt.rh, pt.first_dialysis,
	pt.diabetic, pt.hypertensive, pt.allergic, pt.fund_number, pt.capillary_wash, pt.station_type,
	pt.created_at, pt.updated_at`

var patientSelect = `SELECT ` + patientCols + `, ` + person.Columns("p") + `
	FROM patient pt JOIN person p ON p.id = pt.person_id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		pt Patient
		p  person.Person
	)
	dest := []any{
		&pt.ID, &pt.PersonID, &pt.InsurerID, &pt.PhysicianID, &pt.AuxNurseID, &pt.HeightCM,
		&pt.PatientType, &pt.VascularAccess, &pt.BloodGroup, &pt.Rh, &pt.FirstDialysis,
		&pt.Diabetic, &pt.Hypertensive, &pt.Allergic, &pt.FundNumber, &pt.CapillaryWash, &pt.StationType,
		&pt.CreatedAt, &pt.UpdatedAt,
	}
	if err := row.Scan(append(dest, p.ScanDest()...)...); err != nil {
		return nil, err
	}
	pt.Person = &p
	return &pt, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, person_id, insurer_id, physician_id, aux_nurse_id, height_cm,
			patient_type, vascular_access, blood_group, rh, first_dialysis,
			diabetic, hypertensive, allergic, fund_number, capillary_wash, station_type,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		p.ID, p.PersonID, p.InsurerID, p.PhysicianID, p.AuxNurseID, p.HeightCM,
		p.PatientType, p.VascularAccess, p.BloodGroup, p.Rh, p.FirstDialysis,
		p.Diabetic, p.Hypertensive, p.Allergic, p.FundNumber, p.CapillaryWash, p.StationType,
		p.CreatedAt, p.UpdatedAt,
	)
	return db.TranslateError("patient", "create", err, constraints)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, patientSelect+` WHERE pt.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient", id)
	}
	if err != nil {
		return nil, db.TranslateError("patient", "get", err, constraints)
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			insurer_id=$2, physician_id=$3, aux_nurse_id=$4, height_cm=$5,
			patient_type=$6, vascular_access=$7, blood_group=$8, rh=$9, first_dialysis=$10,
			diabetic=$11, hypertensive=$12, allergic=$13, fund_number=$14, capillary_wash=$15,
			station_type=$16, updated_at=$17
		WHERE id = $1`,
		p.ID, p.InsurerID, p.PhysicianID, p.AuxNurseID, p.HeightCM,
		p.PatientType, p.VascularAccess, p.BloodGroup, p.Rh, p.FirstDialysis,
		p.Diabetic, p.Hypertensive, p.Allergic, p.FundNumber, p.CapillaryWash,
		p.StationType, p.UpdatedAt,
	)
	if err != nil {
		return db.TranslateError("patient", "update", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient", p.ID)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, db.TranslateError("patient", "count", err, constraints)
	}
	rows, err := r.conn(ctx).Query(ctx,
		patientSelect+` ORDER BY p.given_names, p.surnames, pt.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.TranslateError("patient", "list", err, constraints)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, db.TranslateError("patient", "list", err, constraints)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.TranslateError("patient", "list", err, constraints)
	}
	return patients, total, nil
}
