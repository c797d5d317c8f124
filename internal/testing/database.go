package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/designs2/attribute-tags/db"
)

// CreateTestDB creates an in-memory SQLite test database with the tag
// relation schema applied. Automatically registers cleanup via t.Cleanup().
//
// The pool is limited to one connection because every new connection to
// ":memory:" would open a separate, empty database.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	database.SetMaxOpenConns(1)

	if err := db.Migrate(database, nil); err != nil {
		database.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// MustExec runs statements against database, failing the test on error
func MustExec(t *testing.T, database *sql.DB, statements ...string) {
	t.Helper()
	for _, statement := range statements {
		if _, err := database.Exec(statement); err != nil {
			t.Fatalf("Failed to execute %q: %v", statement, err)
		}
	}
}
