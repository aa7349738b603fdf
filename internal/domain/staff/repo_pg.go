package staff

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
	"account_login_key":              "login",
	"account_person_key":             "person",
	"account_person_fk":              "person",
	"account_person_kind_check":      "person",
	"account_id_role_key":            "role",
	"account_role_check":             "role",
	"physician_account_key":          "account",
	"physician_account_fk":           "account",
	"physician_role_check":           "role",
	"physician_license_number_key":   "license_number",
	"physician_license_number_check": "license_number",
	"nurse_account_key":              "account",
	"nurse_account_fk":               "account",
	"nurse_role_check":               "role",
	"aux_nurse_account_key":          "account",
	"aux_nurse_account_fk":           "account",
	"aux_nurse_role_check":           "role",
	"admin_staff_account_key":        "account",
	"admin_staff_account_fk":         "account",
	"admin_staff_role_check":         "role",
}

// profileTables is keyed by role; values are fixed identifiers, never input.
var profileTables = map[Role]string{
	RolePhysician: "physician",
	RoleNurse:     "nurse",
	RoleAuxNurse:  "aux_nurse",
	RoleAdmin:     "admin_staff",
}

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// accountSelect joins the person and every profile table; at most one
// profile join matches.
var accountSelect = `SELECT a.id, a.person_id, a.role, a.login, a.credential_hash, a.created_at, a.updated_at,
	` + person.Columns("p") + `,
	ph.id, ph.license_number, ph.supervisor, n.id, n.supervisor, ax.id, ad.id
	FROM account a
	JOIN person p ON p.id = a.person_id
	LEFT JOIN physician ph ON ph.account_id = a.id
	LEFT JOIN nurse n ON n.account_id = a.id
	LEFT JOIN aux_nurse ax ON ax.account_id = a.id
	LEFT JOIN admin_staff ad ON ad.account_id = a.id`

const accountOrder = ` ORDER BY p.surnames, p.given_names, a.id`

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		a       Account
		p       person.Person
		phID    *uuid.UUID
		license *int
		phSup   *bool
		nID     *uuid.UUID
		nSup    *bool
		axID    *uuid.UUID
		adID    *uuid.UUID
	)
	dest := []any{&a.ID, &a.PersonID, &a.Role, &a.Login, &a.CredentialHash, &a.CreatedAt, &a.UpdatedAt}
	dest = append(dest, p.ScanDest()...)
	dest = append(dest, &phID, &license, &phSup, &nID, &nSup, &axID, &adID)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Person = &p
	if phID != nil {
		a.Physician = &Physician{ID: *phID, AccountID: a.ID}
		if license != nil {
			a.Physician.LicenseNumber = *license
		}
		if phSup != nil {
			a.Physician.Supervisor = *phSup
		}
	}
	if nID != nil {
		a.Nurse = &Nurse{ID: *nID, AccountID: a.ID}
		if nSup != nil {
			a.Nurse.Supervisor = *nSup
		}
	}
	if axID != nil {
		a.AuxNurse = &AuxNurse{ID: *axID, AccountID: a.ID}
	}
	if adID != nil {
		a.Admin = &AdminStaff{ID: *adID, AccountID: a.ID}
	}
	return &a, nil
}

func (r *staffRepoPG) queryAccounts(ctx context.Context, sql string, args ...any) ([]*Account, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, db.TranslateError("account", "list", err, constraints)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, db.TranslateError("account", "list", err, constraints)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError("account", "list", err, constraints)
	}
	return out, nil
}

func (r *staffRepoPG) CreateAccount(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO account (id, person_id, role, login, credential_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PersonID, a.Role, a.Login, a.CredentialHash, a.CreatedAt, a.UpdatedAt,
	)
	return db.TranslateError("account", "create", err, constraints)
}

func (r *staffRepoPG) UpdateAccount(ctx context.Context, a *Account) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE account SET role=$2, login=$3, credential_hash=$4, updated_at=$5
		WHERE id = $1`,
		a.ID, a.Role, a.Login, a.CredentialHash, a.UpdatedAt,
	)
	if err != nil {
		return db.TranslateError("account", "update", err, constraints)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", a.ID)
	}
	return nil
}

func (r *staffRepoPG) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := scanAccount(r.conn(ctx).QueryRow(ctx, accountSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("account", id)
	}
	if err != nil {
		return nil, db.TranslateError("account", "get", err, constraints)
	}
	return a, nil
}

func (r *staffRepoPG) GetAccountByLogin(ctx context.Context, login string) (*Account, error) {
	a, err := scanAccount(r.conn(ctx).QueryRow(ctx, accountSelect+` WHERE a.login = $1`, login))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "account", ID: login}
	}
	if err != nil {
		return nil, db.TranslateError("account", "get by login", err, constraints)
	}
	return a, nil
}

func (r *staffRepoPG) ExistsByLogin(ctx context.Context, login string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM account WHERE login = $1 AND id <> $2)`, login, exclude).Scan(&exists)
	if err != nil {
		return false, db.TranslateError("account", "exists by login", err, constraints)
	}
	return exists, nil
}

func (r *staffRepoPG) ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM account`).Scan(&total); err != nil {
		return nil, 0, db.TranslateError("account", "count", err, constraints)
	}
	accounts, err := r.queryAccounts(ctx, accountSelect+accountOrder+` LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *staffRepoPG) ListByRole(ctx context.Context, role Role) ([]*Account, error) {
	return r.queryAccounts(ctx, accountSelect+` WHERE a.role = $1`+accountOrder, role)
}

func (r *staffRepoPG) CreatePhysician(ctx context.Context, p *Physician) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO physician (id, account_id, license_number, supervisor) VALUES ($1,$2,$3,$4)`,
		p.ID, p.AccountID, p.LicenseNumber, p.Supervisor)
	return db.TranslateError("physician", "create", err, constraints)
}

func (r *staffRepoPG) CreateNurse(ctx context.Context, n *Nurse) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO nurse (id, account_id, supervisor) VALUES ($1,$2,$3)`,
		n.ID, n.AccountID, n.Supervisor)
	return db.TranslateError("nurse", "create", err, constraints)
}

func (r *staffRepoPG) CreateAuxNurse(ctx context.Context, n *AuxNurse) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO aux_nurse (id, account_id) VALUES ($1,$2)`, n.ID, n.AccountID)
	return db.TranslateError("aux_nurse", "create", err, constraints)
}

func (r *staffRepoPG) CreateAdminStaff(ctx context.Context, a *AdminStaff) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO admin_staff (id, account_id) VALUES ($1,$2)`, a.ID, a.AccountID)
	return db.TranslateError("admin_staff", "create", err, constraints)
}

func (r *staffRepoPG) ProfileActive(ctx context.Context, role Role, profileID uuid.UUID) (bool, error) {
	table, ok := profileTables[role]
	if !ok {
		return false, apperr.Invalid("role", "unknown role "+string(role))
	}
	var active bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT p.active FROM `+table+` x
		JOIN account a ON a.id = x.account_id
		JOIN person p ON p.id = a.person_id
		WHERE x.id = $1`, profileID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperr.NotFound(table, profileID)
	}
	if err != nil {
		return false, db.TranslateError(table, "active", err, constraints)
	}
	return active, nil
}
