package person

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{
	"person_email_key":         "email",
	"person_national_id_key":   "national_id",
	"person_national_id_check": "national_id",
	"person_sex_check":         "sex",
	"person_kind_check":        "kind",
}

type personRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &personRepoPG{pool: pool}
}

func (r *personRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const personCols = `id, given_names, surnames, email, national_id, phone1, phone2, phone3,
	address, locality, region, country, birth_date, sex, registered_at, notes, active, kind`

// Columns returns the person column list qualified with alias, for joins
// from dependent tables. Scan the result with ScanDest.
func Columns(alias string) string {
	cols := strings.Split(personCols, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// ScanDest returns scan targets matching Columns.
func (p *Person) ScanDest() []any {
	return []any{
		&p.ID, &p.GivenNames, &p.Surnames, &p.Email, &p.NationalID, &p.Phone1, &p.Phone2, &p.Phone3,
		&p.Address, &p.Locality, &p.Region, &p.Country, &p.BirthDate, &p.Sex, &p.RegisteredAt, &p.Notes, &p.Active, &p.Kind,
	}
}

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	if err := row.Scan(p.ScanDest()...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personRepoPG) Create(ctx context.Context, p *Person) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO person (`+personCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.GivenNames, p.Surnames, p.Email, p.NationalID, p.Phone1, p.Phone2, p.Phone3,
		p.Address, p.Locality, p.Region, p.Country, p.BirthDate, p.Sex, p.RegisteredAt, p.Notes, p.Active, p.Kind,
	)
	return db.TranslateError("person", "create", err, constraints)
}

func (r *personRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx, `SELECT `+personCols+` FROM person WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("person", id)
	}
	if err != nil {
		return nil, db.TranslateError("person", "get", err, constraints)
	}
	return p, nil
}

// Update overwrites every mutable column. registered_at, active and kind are
// left alone.
func (r *personRepoPG) Update(ctx context.Context, p *Person) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE person SET
			given_names=$2, surnames=$3, email=$4, national_id=$5, phone1=$6, phone2=$7, phone3=$8,
			address=$9, locality=$10, region=$11, country=$12, birth_date=$13, sex=$14, notes=$15
		WHERE id = $1`,
		p.ID, p.GivenNames, p.Surnames, p.Email, p.NationalID, p.Phone1, p.Phone2, p.Phone3,
		p.Address, p.Locality, p.Region, p.Country, p.BirthDate, p.Sex, p.Notes,
	)
	if err != nil {
		return db.TranslateError("person", "update", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("person", p.ID)
	}
	return nil
}

func (r *personRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE person SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return db.TranslateError("person", "set active", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("person", id)
	}
	return nil
}

func (r *personRepoPG) ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM person WHERE email = $1 AND id <> $2)`, email, exclude).Scan(&exists)
	if err != nil {
		return false, db.TranslateError("person", "exists by email", err, constraints)
	}
	return exists, nil
}

func (r *personRepoPG) ExistsByNationalID(ctx context.Context, nationalID int64, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM person WHERE national_id = $1 AND id <> $2)`, nationalID, exclude).Scan(&exists)
	if err != nil {
		return false, db.TranslateError("person", "exists by national id", err, constraints)
	}
	return exists, nil
}
