package tags

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
	tagstest "github.com/designs2/attribute-tags/internal/testing"
)

func setupCities(t *testing.T) *sql.DB {
	t.Helper()
	database := tagstest.CreateTestDB(t)
	tagstest.MustExec(t, database,
		`CREATE TABLE mm_city (id INTEGER PRIMARY KEY, alias TEXT, name TEXT, region TEXT, sorting INTEGER)`,
		`INSERT INTO mm_city VALUES
			(1, 'berlin', 'Berlin', 'east', 30),
			(2, 'munich', 'Munich', 'south', 10),
			(3, 'cologne', 'Cologne', 'west', 20),
			(4, 'dresden', 'Dresden', 'east', 40)`,
	)
	return database
}

func citySettings() Settings {
	return Settings{
		ID:            5,
		Name:          "cities",
		Table:         "mm_city",
		DisplayColumn: "name",
		AliasColumn:   "alias",
		SortColumn:    "sorting",
	}
}

func cityDeps(t *testing.T, database *sql.DB, attributes ...string) Deps {
	t.Helper()
	cities := collection.NewTableCollection(database, collection.TableConfig{
		Name:       "mm_city",
		Attributes: attributes,
	})
	return Deps{
		DB:          database,
		Collections: collection.NewRegistry(cities),
		Filters: collection.NewDefinitionRegistry(database, collection.ColumnDefinitionConfig{
			ID:    7,
			Table: "mm_city",
			Parameters: []collection.ColumnParameter{
				{Name: "region", Column: "region", FromRequest: true},
				{Name: "alias", Column: "alias"},
			},
		}),
		Logger: zaptest.NewLogger(t).Sugar(),
	}
}

func TestCollectionTags_ValueFromWidget(t *testing.T) {
	ctx := context.Background()
	database := setupCities(t)

	t.Run("alias attribute search", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database, "alias", "name"))
		require.True(t, a.IsProperlyConfigured(ctx))

		values, err := a.ValueFromWidget(ctx, []string{"munich", "berlin"})
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, 0, *values[2].Sorting)
		assert.Equal(t, 1, *values[1].Sorting)
		assert.Equal(t, "Munich", values[2].Text["name"])
		assert.Equal(t, int64(1), values[1].Raw["id"])
	})

	t.Run("comma joined string", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database, "alias", "name"))
		values, err := a.ValueFromWidget(ctx, "munich, berlin")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, 0, *values[2].Sorting)
		assert.Equal(t, 1, *values[1].Sorting)
	})

	t.Run("match everything", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database, "alias"))
		values, err := a.ValueFromWidget(ctx, []string{"*"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2, 3, 4}, keys(values))
		assert.Equal(t, 0, *values[1].Sorting, "berlin sorts first by alias")
	})

	t.Run("system column lookup", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database))
		values, err := a.ValueFromWidget(ctx, []string{"cologne", "paris"})
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, 0, *values[3].Sorting)
	})

	t.Run("system column without match fails", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database))
		_, err := a.ValueFromWidget(ctx, []string{"paris"})
		require.Error(t, err)
		assert.True(t, errors.IsTranslationFailed(err))
		assert.Contains(t, errors.GetAllDetails(err)[0], "paris")
	})

	t.Run("id alias", func(t *testing.T) {
		settings := citySettings()
		settings.AliasColumn = ""
		a := New(settings, cityDeps(t, database))
		values, err := a.ValueFromWidget(ctx, []interface{}{"4", 2})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{4, 2}, keys(values))
	})
}

func TestCollectionTags_DataFor(t *testing.T) {
	ctx := context.Background()
	database := setupCities(t)
	a := New(citySettings(), cityDeps(t, database, "alias"))

	require.NoError(t, a.SetDataFor(ctx, map[int64]Values{
		100: target(3, 1),
		101: target(3),
	}))

	data, err := a.DataFor(ctx, []int64{100, 101, 102})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, recordIDs(data[100]))
	assert.Equal(t, []int64{3}, recordIDs(data[101]))
	assert.NotContains(t, data, int64(102))
	assert.Equal(t, "Berlin", data[100][1].Text["name"])

	assert.Equal(t, []string{"cologne", "berlin"}, a.ValueToWidget(data[100]))
	assert.Equal(t, []Option{{Alias: "cologne", Text: "Cologne"}, {Alias: "berlin", Text: "Berlin"}}, a.ValueToDisplay(data[100]))

	matches, err := a.SearchFor(ctx, "cologne")
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, matches)
}

func TestCollectionTags_FilterOptions(t *testing.T) {
	ctx := context.Background()
	database := setupCities(t)

	t.Run("all by sort column with counts", func(t *testing.T) {
		a := New(citySettings(), cityDeps(t, database, "alias"))
		require.NoError(t, a.SetDataFor(ctx, map[int64]Values{100: target(1), 101: target(1, 4)}))

		options, err := a.FilterOptions(ctx, OptionsQuery{WithCounts: true})
		require.NoError(t, err)
		assert.Equal(t, []Option{
			{Alias: "munich", Text: "Munich"},
			{Alias: "cologne", Text: "Cologne"},
			{Alias: "berlin", Text: "Berlin", Count: 2},
			{Alias: "dresden", Text: "Dresden", Count: 1},
		}, options)

		options, err = a.FilterOptions(ctx, OptionsQuery{UsedOnly: true, ScopeIDs: []int64{100}})
		require.NoError(t, err)
		assert.Equal(t, []Option{{Alias: "berlin", Text: "Berlin"}}, options)
	})

	t.Run("preset wins over request", func(t *testing.T) {
		settings := citySettings()
		settings.FilterID = 7
		settings.FilterParams = []FilterParam{{Name: "region", Value: "east"}}
		a := New(settings, cityDeps(t, database))

		options, err := a.FilterOptions(ctx, OptionsQuery{Params: map[string]string{"region": "south"}})
		require.NoError(t, err)
		assert.Equal(t, []Option{{Alias: "berlin", Text: "Berlin"}, {Alias: "dresden", Text: "Dresden"}}, options)
	})

	t.Run("overridable preset takes request value", func(t *testing.T) {
		settings := citySettings()
		settings.FilterID = 7
		settings.FilterParams = []FilterParam{{Name: "region", Value: "east", UseGet: true}}
		a := New(settings, cityDeps(t, database))

		options, err := a.FilterOptions(ctx, OptionsQuery{Params: map[string]string{"region": "south"}})
		require.NoError(t, err)
		assert.Equal(t, []Option{{Alias: "munich", Text: "Munich"}}, options)
	})

	t.Run("unknown filter definition is skipped", func(t *testing.T) {
		settings := citySettings()
		settings.FilterID = 99
		a := New(settings, cityDeps(t, database))

		options, err := a.FilterOptions(ctx, OptionsQuery{})
		require.NoError(t, err)
		assert.Len(t, options, 4)
	})
}

func TestCollectionTags_MissingCollection(t *testing.T) {
	ctx := context.Background()
	database := setupCities(t)
	settings := citySettings()
	settings.Table = "mm_missing"
	a := New(settings, cityDeps(t, database))

	assert.False(t, a.IsProperlyConfigured(ctx))

	values, err := a.ValueFromWidget(ctx, []string{"berlin"})
	require.NoError(t, err)
	assert.Empty(t, values)

	options, err := a.FilterOptions(ctx, OptionsQuery{})
	require.NoError(t, err)
	assert.Empty(t, options)

	def := a.FieldDefinition(ctx)
	assert.Equal(t, "checkbox", def.InputType)
	assert.Empty(t, def.OptionsError)
}

func TestMergeFilterParams(t *testing.T) {
	def := collection.NewColumnDefinition(nil, collection.ColumnDefinitionConfig{
		Parameters: []collection.ColumnParameter{
			{Name: "region", FromRequest: true},
			{Name: "alias"},
		},
	})

	tests := []struct {
		name    string
		presets []FilterParam
		request map[string]string
		want    map[string]string
	}{
		{
			name:    "preset wins",
			presets: []FilterParam{{Name: "region", Value: "east"}},
			request: map[string]string{"region": "south", "alias": "x", "other": "y"},
			want:    map[string]string{"region": "east"},
		},
		{
			name:    "use_get lets request override",
			presets: []FilterParam{{Name: "region", Value: "east", UseGet: true}},
			request: map[string]string{"region": "south"},
			want:    map[string]string{"region": "south"},
		},
		{
			name:    "request fills missing preset",
			presets: []FilterParam{{Name: "unknown", Value: "v"}, {Name: "alias", Value: "berlin"}},
			request: map[string]string{"region": "west"},
			want:    map[string]string{"region": "west", "alias": "berlin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeFilterParams(tt.presets, def, tt.request))
		})
	}
}

// recursiveCollection parses each item by loading the item's own tags,
// which reference the same collection
type recursiveCollection struct {
	collection.Collection
	attribute Attribute
	nested    int
}

func (r *recursiveCollection) FindByFilter(ctx context.Context, filter *collection.Filter, sortBy string) ([]collection.Item, error) {
	items, err := r.Collection.FindByFilter(ctx, filter, sortBy)
	if err != nil {
		return nil, err
	}
	wrapped := make([]collection.Item, 0, len(items))
	for _, item := range items {
		wrapped = append(wrapped, &recursiveItem{Item: item, owner: r})
	}
	return wrapped, nil
}

type recursiveItem struct {
	collection.Item
	owner *recursiveCollection
}

func (i *recursiveItem) ParseValue(ctx context.Context) (collection.Parsed, error) {
	data, err := i.owner.attribute.DataFor(ctx, []int64{i.ID()})
	if err != nil {
		return collection.Parsed{}, err
	}
	i.owner.nested++
	parsed, err := i.Item.ParseValue(ctx)
	if err != nil {
		return parsed, err
	}
	parsed.Raw["nested"] = len(data[i.ID()])
	return parsed, nil
}

func TestCollectionTags_RecursionGuard(t *testing.T) {
	ctx := context.Background()
	database := setupCities(t)

	cities := &recursiveCollection{
		Collection: collection.NewTableCollection(database, collection.TableConfig{Name: "mm_city"}),
	}
	a := New(citySettings(), Deps{
		DB:          database,
		Collections: collection.NewRegistry(cities),
		Logger:      zaptest.NewLogger(t).Sugar(),
	})
	cities.attribute = a

	// Berlin is tagged with Munich and Cologne, Munich with Berlin
	require.NoError(t, a.SetDataFor(ctx, map[int64]Values{
		1: target(2, 3),
		2: target(1),
	}))

	data, err := a.DataFor(ctx, []int64{1})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, recordIDs(data[1]))
	assert.Equal(t, 0, data[1][0].Raw["nested"], "re-entrant resolution yields nothing")
	assert.Equal(t, 2, cities.nested)
}

func TestVisited(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsVisited(ctx, "mm_city"))

	inner := WithVisited(ctx, "mm_city")
	sibling := WithVisited(ctx, "mm_shape")
	assert.True(t, IsVisited(inner, "mm_city"))
	assert.False(t, IsVisited(sibling, "mm_city"))
	assert.True(t, IsVisited(WithVisited(inner, "mm_shape"), "mm_city"))
}
