package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// Postgres SQLSTATE codes.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// wrap converts driver errors into application errors. Anything unknown is
// wrapped with op and left for the caller to log as an internal error.
func wrap(err error, op, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return apperrors.Conflict(fmt.Sprintf("%s already exists", resource), err)
		case mysqlRowIsReferenced:
			return apperrors.Conflict(fmt.Sprintf("%s is still referenced", resource), err)
		case mysqlNoReferencedRow:
			return apperrors.BadRequest("referenced record does not exist", err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return apperrors.Conflict(fmt.Sprintf("%s already exists", resource), err)
		case pqForeignKeyViolation:
			return apperrors.BadRequest("referenced record does not exist", err)
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// requireAffected turns a zero row count into a not-found error.
func requireAffected(rows int64, err error, op, resource string) error {
	if err != nil {
		return wrap(err, op, resource)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}
