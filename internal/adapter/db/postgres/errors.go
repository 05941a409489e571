package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "users-api/pkg/errors"
)

// Postgres SQLSTATEs the store reacts to
const (
	uniqueViolation   = "23505"
	notNullViolation  = "23502"
	checkViolation    = "23514"
	dataExceptionCls  = "22"
	syntaxOrAccessCls = "42"
	internalErrorCls  = "XX"
)

// classifyError maps a driver error to the application error taxonomy:
//   - unique violations are conflicts;
//   - data exceptions and NOT NULL/CHECK violations mean the row itself was rejected;
//   - schema, syntax and server-internal errors are internal;
//   - anything else (connection, pool, context) means the store could not serve the request.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &pkgerrors.ConflictError{
			Resource: "user",
			Message:  "email already exists",
			Err:      err,
		}
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return pkgerrors.NewValidationError("", "user rejected by the store")
	}
	if errors.Is(err, gorm.ErrInvalidField) {
		return pkgerrors.NewInternalError(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == notNullViolation, pgErr.Code == checkViolation,
			strings.HasPrefix(pgErr.Code, dataExceptionCls):
			return pkgerrors.NewValidationError(pgErr.ColumnName, "user rejected by the store")
		case strings.HasPrefix(pgErr.Code, syntaxOrAccessCls),
			strings.HasPrefix(pgErr.Code, internalErrorCls):
			return pkgerrors.NewInternalError(op, err)
		}
		return pkgerrors.NewUnavailableError(op, err)
	}

	// SQLite reports constraint failures only through the message
	msg := err.Error()
	if strings.Contains(msg, "NOT NULL constraint failed") || strings.Contains(msg, "CHECK constraint failed") {
		return pkgerrors.NewValidationError("", "user rejected by the store")
	}
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return pkgerrors.NewInternalError(op, err)
	}

	return pkgerrors.NewUnavailableError(op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
