package tags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designs2/attribute-tags/collection"
	tagstest "github.com/designs2/attribute-tags/internal/testing"
)

func TestSourceHelpers(t *testing.T) {
	ctx := context.Background()
	database := setupColors(t)
	tagstest.MustExec(t, database,
		`CREATE TABLE mm_city (id INTEGER PRIMARY KEY, alias TEXT, name_en TEXT)`,
		`CREATE TABLE mm_shape (id INTEGER PRIMARY KEY, label TEXT)`,
	)

	provider := collection.NewRegistry(
		collection.NewTableCollection(database, collection.TableConfig{
			Name:                 "mm_city",
			Attributes:           []string{"alias"},
			TranslatedAttributes: []string{"name"},
			ActiveLanguage:       "en",
		}),
		collection.NewTableCollection(database, collection.TableConfig{Name: "mm_shape", Attributes: []string{"label"}}),
	)

	tables, err := ListSourceTables(ctx, database, provider)
	require.NoError(t, err)
	assert.Equal(t, []string{"mm_city"}, tables.Translated)
	assert.Equal(t, []string{"mm_shape"}, tables.Untranslated)
	assert.Equal(t, []string{"colors"}, tables.Tables)

	columns, err := ListSourceColumns(ctx, database, provider, "colors")
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "id", "name", "sorting"}, columns.SQL)
	assert.Empty(t, columns.Attributes)

	columns, err = ListSourceColumns(ctx, database, provider, "mm_city")
	require.NoError(t, err)
	assert.Equal(t, []string{"alias", "id", "name_en"}, columns.SQL)
	assert.Equal(t, []string{"alias", "name"}, columns.Attributes)

	ids, err := ListIDColumns(ctx, database, "colors")
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "id", "sorting"}, ids)
}
