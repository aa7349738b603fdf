package insurer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/db"
)

var constraints = db.Constraints{"insurer_name_key": "name"}

type insurerRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &insurerRepoPG{pool: pool}
}

func (r *insurerRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *insurerRepoPG) Create(ctx context.Context, i *Insurer) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO insurer (id, name) VALUES ($1, $2)`, i.ID, i.Name)
	return db.TranslateError("insurer", "create", err, constraints)
}

func (r *insurerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Insurer, error) {
	var i Insurer
	err := r.conn(ctx).QueryRow(ctx, `SELECT id, name FROM insurer WHERE id = $1`, id).Scan(&i.ID, &i.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("insurer", id)
	}
	if err != nil {
		return nil, db.TranslateError("insurer", "get", err, constraints)
	}
	return &i, nil
}

func (r *insurerRepoPG) GetByName(ctx context.Context, name string) (*Insurer, error) {
	var i Insurer
	err := r.conn(ctx).QueryRow(ctx, `SELECT id, name FROM insurer WHERE name = $1`, name).Scan(&i.ID, &i.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "insurer", ID: name}
	}
	if err != nil {
		return nil, db.TranslateError("insurer", "get by name", err, constraints)
	}
	return &i, nil
}

func (r *insurerRepoPG) List(ctx context.Context) ([]*Insurer, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name FROM insurer ORDER BY name`)
	if err != nil {
		return nil, db.TranslateError("insurer", "list", err, constraints)
	}
	defer rows.Close()

	var out []*Insurer
	for rows.Next() {
		var i Insurer
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, db.TranslateError("insurer", "list", err, constraints)
		}
		out = append(out, &i)
	}
	return out, db.TranslateError("insurer", "list", rows.Err(), constraints)
}
