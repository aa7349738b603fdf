package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nephro/dialysis/internal/platform/apperr"
	"github.com/nephro/dialysis/internal/platform/metrics"
)

// SQLSTATE codes the store reports for integrity violations.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
)

// Constraints maps a named table constraint to the field or reference it
// guards, e.g. "person_email_key" -> "email".
type Constraints map[string]string

func (c Constraints) field(name string) string {
	if f, ok := c[name]; ok {
		return f
	}
	return name
}

// TranslateError converts a driver error into the apperr taxonomy. Errors
// that are already typed pass through untouched.
func TranslateError(entity, op string, err error, c Constraints) error {
	if err == nil {
		return nil
	}
	if isTyped(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity, nil)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperr.Storage(entity+" "+op, err)
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		field := c.field(pgErr.ConstraintName)
		metrics.ObserveConflict("duplicate", entity, field)
		return apperr.Duplicate(entity, field)
	case CodeForeignKeyViolation:
		ref := c.field(pgErr.ConstraintName)
		metrics.ObserveConflict("foreign_key", entity, ref)
		return apperr.ForeignKey(entity, ref)
	case CodeCheckViolation:
		return apperr.Invalid(c.field(pgErr.ConstraintName), "violates "+pgErr.ConstraintName)
	case CodeNotNullViolation:
		return apperr.Required(pgErr.ColumnName)
	}
	return apperr.Storage(entity+" "+op, err)
}

func isTyped(err error) bool {
	if _, ok := apperr.IsDuplicate(err); ok {
		return true
	}
	if _, ok := apperr.IsForeignKey(err); ok {
		return true
	}
	if _, ok := apperr.IsValidation(err); ok {
		return true
	}
	return apperr.IsNotFound(err) || apperr.IsStorage(err)
}
