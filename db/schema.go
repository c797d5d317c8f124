package db

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/designs2/attribute-tags/errors"
)

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Field describes one column of a table
type Field struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// IsInteger reports whether the declared column type has integer affinity
func (f Field) IsInteger() bool {
	return strings.Contains(strings.ToUpper(f.Type), "INT")
}

// Inspector answers schema questions against SQLite's catalog
type Inspector struct {
	db Querier
}

// NewInspector creates a schema inspector
func NewInspector(db Querier) *Inspector {
	return &Inspector{db: db}
}

// TableExists reports whether a table or view with the given name exists
func (i *Inspector) TableExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	var exists bool
	err := i.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?)`,
		name).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check table %s", name)
	}
	return exists, nil
}

// ListTables returns all user tables and views, sorted by name.
// SQLite internal tables and the migration bookkeeping table are skipped.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		  AND name != 'schema_migrations'
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ListFields returns the columns of a table in declaration order
func (i *Inspector) ListFields(ctx context.Context, table string) ([]Field, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list fields of %s", table)
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		var pk int
		if err := rows.Scan(&f.Name, &f.Type, &pk); err != nil {
			return nil, errors.Wrap(err, "failed to scan field")
		}
		f.PrimaryKey = pk > 0
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// FieldNames returns the column names of a table, sorted
func (i *Inspector) FieldNames(ctx context.Context, table string) ([]string, error) {
	fields, err := i.ListFields(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}
