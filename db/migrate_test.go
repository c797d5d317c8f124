package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenWithMigrations(t *testing.T) {
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)

	var tables int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tag_relation'").Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, nil))
	require.NoError(t, Migrate(db, nil))

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)
}

func TestMigrate_RelationUniqueIndex(t *testing.T) {
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	insert := "INSERT INTO tag_relation (att_id, item_id, value_sorting, value_id) VALUES (?, ?, ?, ?)"
	_, err = db.Exec(insert, 1, 42, 0, 7)
	require.NoError(t, err)

	// Same (attribute, item, value) with a different sorting is still a duplicate
	_, err = db.Exec(insert, 1, 42, 3, 7)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	// Other attributes may reference the same pair
	_, err = db.Exec(insert, 2, 42, 0, 7)
	assert.NoError(t, err)
}
