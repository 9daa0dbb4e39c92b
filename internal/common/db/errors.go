package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	pkgerrors "github.com/pkg/errors"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
)

const (
	codeUniqueViolation   = "23505"
	codeDuplicateTable    = "42P07"
	codeDuplicateObject   = "42710"
	codeDuplicateSchema   = "42P06"
	codeDuplicateColumn   = "42701"
	codeDuplicateFunction = "42723"
)

// HandleQueryError maps driver errors onto the domain taxonomy: no rows
// becomes notFoundErr, everything else a DatabaseError carrying the driver
// error and the stack at the call site.
func HandleQueryError(err error, notFoundErr error, operation string) error {
	if err == nil {
		return nil
	}
	if notFoundErr != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	return commonerrors.ErrDatabaseError.WithCause(pkgerrors.Wrapf(err, "failed to %s", operation))
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsAlreadyExists reports duplicate-object failures from DDL statements.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeDuplicateTable, codeDuplicateObject, codeDuplicateSchema, codeDuplicateColumn, codeDuplicateFunction:
			return true
		}
	}

	return strings.Contains(err.Error(), "already exists")
}
