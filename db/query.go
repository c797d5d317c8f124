package db

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/designs2/attribute-tags/errors"
)

// Dialect builds SQLite statements. Callers enable prepared mode so values
// travel as bind parameters.
var Dialect = goqu.Dialect("sqlite3")

// Builder is any goqu dataset that renders to SQL
type Builder interface {
	ToSQL() (string, []interface{}, error)
}

// Build renders a dataset, wrapping builder errors
func Build(b Builder) (string, []interface{}, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to build query")
	}
	return query, args, nil
}

// QueryRows runs a select dataset and returns every row
func QueryRows(ctx context.Context, q Querier, b Builder) ([]Row, error) {
	query, args, err := Build(b)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query failed: %s", query)
	}
	return ScanRows(rows)
}

// QueryInt64s runs a select dataset returning a single integer column
func QueryInt64s(ctx context.Context, q Querier, b Builder) ([]int64, error) {
	query, args, err := Build(b)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query failed: %s", query)
	}
	return ScanInt64s(rows)
}

// Exec runs an insert, update or delete dataset
func Exec(ctx context.Context, q Querier, b Builder) (sql.Result, error) {
	query, args, err := Build(b)
	if err != nil {
		return nil, err
	}
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "statement failed: %s", query)
	}
	return result, nil
}
