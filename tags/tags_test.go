package tags

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	tagstest "github.com/designs2/attribute-tags/internal/testing"
)

func colorSettings() Settings {
	return Settings{
		ID:            1,
		Name:          "colors",
		Table:         "colors",
		IDColumn:      "id",
		DisplayColumn: "name",
		AliasColumn:   "name",
	}
}

// setupColors creates the colors table with red=1 and blue=2
func setupColors(t *testing.T) *sql.DB {
	t.Helper()
	database := tagstest.CreateTestDB(t)
	tagstest.MustExec(t, database,
		`CREATE TABLE colors (id INTEGER PRIMARY KEY, name TEXT, sorting INTEGER, active INTEGER)`,
		`INSERT INTO colors VALUES (1, 'red', 20, 1), (2, 'blue', 10, 1), (3, 'green', 30, 0)`,
	)
	return database
}

func newTestAttribute(t *testing.T, database *sql.DB, settings Settings) Attribute {
	t.Helper()
	return New(settings, Deps{DB: database, Logger: zaptest.NewLogger(t).Sugar()})
}

func storedRelations(t *testing.T, a Attribute, itemIDs ...int64) []Relation {
	t.Helper()
	relations, err := a.Relations().ByItem(context.Background(), itemIDs)
	require.NoError(t, err)
	return relations
}

func recordIDs(records []ValueRecord) []int64 {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}

func target(ids ...int64) Values {
	values := make(Values, len(ids))
	for pos, id := range ids {
		values[id] = ValueRecord{ID: id, Sorting: Position(pos)}
	}
	return values
}

func TestNew_PicksImplementation(t *testing.T) {
	database := setupColors(t)

	assert.IsType(t, &TableTags{}, newTestAttribute(t, database, colorSettings()))

	settings := colorSettings()
	settings.Table = "mm_colors"
	assert.IsType(t, &CollectionTags{}, newTestAttribute(t, database, settings))
}

func TestNew_MisconfiguredIsInert(t *testing.T) {
	ctx := context.Background()
	database := setupColors(t)

	settings := colorSettings()
	settings.DisplayColumn = ""
	a := newTestAttribute(t, database, settings)

	assert.False(t, a.IsProperlyConfigured(ctx))

	values, err := a.ValueFromWidget(ctx, []string{"red"})
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, a.SetDataFor(ctx, map[int64]Values{42: target(1)}))
	assert.Empty(t, storedRelations(t, a, 42))

	options, err := a.FilterOptions(ctx, OptionsQuery{})
	require.NoError(t, err)
	assert.Empty(t, options)

	data, err := a.DataFor(ctx, []int64{42})
	require.NoError(t, err)
	assert.Empty(t, data)
}
