package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// baseRepository holds the query runner shared by every repository. Queries
// are written with ? placeholders and rebound for the active driver.
type baseRepository struct {
	q sqlx.ExtContext
}

func (r baseRepository) postgres() bool {
	return r.q.DriverName() == DriverPostgres
}

// insert runs an INSERT and returns the generated id.
func (r baseRepository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if r.postgres() {
		var id int64
		err := r.q.QueryRowxContext(ctx, r.q.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// exec runs a statement and returns the number of affected rows.
func (r baseRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// execIn is exec for statements with a slice argument bound to IN (?).
func (r baseRepository) execIn(ctx context.Context, query string, args ...interface{}) (int64, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, query, args...)
}

func (r baseRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

func (r baseRepository) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

func (r baseRepository) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return r.selectAll(ctx, dest, query, args...)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE operand for a substring match.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
