package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"

	"github.com/designs2/attribute-tags/errors"
)

//go:embed sqlite/migrations/*.sql
var migrationFS embed.FS

const migrationDir = "sqlite/migrations"

// bootstrapVersion creates the bookkeeping table itself
const bootstrapVersion = "000"

var schemaMigrations = goqu.T("schema_migrations")

// migration is one embedded SQL file; its version is the file name prefix
type migration struct {
	version string
	name    string
	sql     string
}

func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFS, migrationDir+"/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "list migrations")
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		base := strings.TrimPrefix(name, migrationDir+"/")
		out = append(out, migration{
			version: strings.SplitN(base, "_", 2)[0],
			name:    base,
			sql:     string(body),
		})
	}
	return out, nil
}

// appliedVersions returns the recorded versions, empty before bootstrap
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)
	query, args, err := Dialect.From(schemaMigrations).Select("version").ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build migration query")
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		// schema_migrations does not exist until the bootstrap migration ran
		return applied, nil
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m migration) apply(db *sql.DB) error {
	record, args, err := Dialect.Insert(schemaMigrations).Prepared(true).
		Rows(goqu.Record{"version": m.version}).ToSQL()
	if err != nil {
		return errors.Wrapf(err, "build record for %s", m.name)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.name)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return errors.Wrapf(err, "execute %s", m.name)
	}
	if _, err := tx.Exec(record, args...); err != nil {
		return errors.Wrapf(err, "record %s", m.name)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.name)
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order. A nil logger migrates silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 && len(migrations) > 0 && migrations[0].version != bootstrapVersion {
		return errors.Newf("schema_migrations table missing, but first migration is %s", migrations[0].name)
	}

	count := 0
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if logger != nil {
			logger.Infow("Applying migration", "migration", m.name, "version", m.version)
		}
		if err := m.apply(db); err != nil {
			return err
		}
		count++
	}

	if logger != nil {
		logger.Debugw("Migrations complete", "total_migrations", len(migrations), "applied", count)
	}
	return nil
}
