package tags

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/spf13/cast"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
	"github.com/designs2/attribute-tags/logger"
)

const (
	joinedItemIDColumn  = "__tag_item_id"
	joinedSortingColumn = "__tag_sorting"
)

// TableTags reads its values from a plain SQL table
type TableTags struct {
	*base
}

func (t *TableTags) table() exp.IdentifierExpression {
	return goqu.T(t.source.Table)
}

func (t *TableTags) tableExists(ctx context.Context) (bool, error) {
	return db.NewInspector(t.db).TableExists(ctx, t.source.Table)
}

// IsProperlyConfigured reports whether the settings are complete and the
// source table exists
func (t *TableTags) IsProperlyConfigured(ctx context.Context) bool {
	if !t.configured() {
		return false
	}
	ok, err := t.tableExists(ctx)
	return err == nil && ok
}

// ValueFromWidget loads the rows whose alias is among the widget tokens. Each
// record's sorting is the position of its alias in the input. Unknown
// aliases are dropped.
func (t *TableTags) ValueFromWidget(ctx context.Context, raw interface{}) (Values, error) {
	tokens := t.source.WidgetMode.SplitInput(raw)
	values := make(Values)
	if !t.configured() || len(tokens) == 0 {
		return values, nil
	}
	if ok, err := t.tableExists(ctx); err != nil || !ok {
		return values, err
	}

	ds := db.Dialect.From(t.table()).Prepared(true).
		Where(goqu.C(t.source.AliasColumn).In(tokens)).
		Order(goqu.C(t.source.SortColumn).Asc())
	rows, err := db.QueryRows(ctx, t.db, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve widget values of %s", t.source.Table)
	}

	positions := positionsOf(tokens)
	for _, row := range rows {
		id, err := cast.ToInt64E(row[t.source.IDColumn])
		if err != nil {
			return nil, errors.Wrapf(err, "row of %s has no usable id", t.source.Table)
		}
		rec := recordFromRow(id, row)
		rec.Sorting = Position(positions[cast.ToString(row[t.source.AliasColumn])])
		values[id] = rec
	}
	return values, nil
}

// DataFor joins the source rows with the relation rows of itemIDs
func (t *TableTags) DataFor(ctx context.Context, itemIDs []int64) (map[int64][]ValueRecord, error) {
	result := make(map[int64][]ValueRecord)
	ids := idset.Unique(idset.NonZero(itemIDs))
	if !t.configured() || len(ids) == 0 {
		return result, nil
	}
	if ok, err := t.tableExists(ctx); err != nil || !ok {
		return result, err
	}

	src := goqu.T(t.source.Table)
	ds := db.Dialect.From(src).Prepared(true).
		Select(src.All(), relationItemID.As(joinedItemIDColumn), relationSorting.As(joinedSortingColumn)).
		InnerJoin(relationTable, goqu.On(
			relationAttributeID.Eq(t.settings.ID),
			relationValueID.Eq(src.Col(t.source.IDColumn)),
		)).
		Where(relationItemID.In(ids)).
		Order(relationSorting.Asc(), relationItemID.Asc(), src.Col(t.source.IDColumn).Asc())
	rows, err := db.QueryRows(ctx, t.db, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tag values from %s", t.source.Table)
	}

	for _, row := range rows {
		itemID := cast.ToInt64(row[joinedItemIDColumn])
		sorting := cast.ToInt(row[joinedSortingColumn])
		delete(row, joinedItemIDColumn)
		delete(row, joinedSortingColumn)

		rec := recordFromRow(cast.ToInt64(row[t.source.IDColumn]), row)
		rec.Sorting = Position(sorting)
		result[itemID] = append(result[itemID], rec)
	}
	return result, nil
}

// FilterOptions lists the rows of the source table
func (t *TableTags) FilterOptions(ctx context.Context, query OptionsQuery) ([]Option, error) {
	if !t.configured() {
		return []Option{}, nil
	}
	return t.buildOptions(ctx, t, query)
}

func (t *TableTags) listOptionItems(ctx context.Context, restrict []int64, restricted bool, _ map[string]string) ([]optionItem, error) {
	if ok, err := t.tableExists(ctx); err != nil || !ok {
		return nil, err
	}

	ds := db.Dialect.From(t.table()).Prepared(true).
		Order(goqu.C(t.source.SortColumn).Asc(), goqu.C(t.source.IDColumn).Asc())
	if restricted {
		ds = ds.Where(goqu.C(t.source.IDColumn).In(restrict))
	}
	if !t.source.Where.IsZero() {
		ds = ds.Where(t.source.Where.Expression())
	}

	rows, err := db.QueryRows(ctx, t.db, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list options of %s", t.source.Table)
	}
	items := make([]optionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, optionItem{
			ValueID: cast.ToInt64(row[t.source.IDColumn]),
			Alias:   cast.ToString(row[t.source.AliasColumn]),
			Text:    cast.ToString(row[t.source.DisplayColumn]),
		})
	}
	return items, nil
}

// ConvertValuesToValueIDs looks aliases up in the source table. When the
// alias is the id column the tokens are parsed as ids.
func (t *TableTags) ConvertValuesToValueIDs(ctx context.Context, tokens []string) ([]int64, error) {
	if !t.configured() || len(tokens) == 0 {
		return []int64{}, nil
	}
	if t.source.AliasIsID() {
		ids := make([]int64, 0, len(tokens))
		for _, token := range tokens {
			if id, err := cast.ToInt64E(token); err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	if ok, err := t.tableExists(ctx); err != nil || !ok {
		return []int64{}, err
	}

	ds := db.Dialect.From(t.table()).Prepared(true).
		Select(goqu.C(t.source.IDColumn)).
		Where(goqu.C(t.source.AliasColumn).In(tokens)).
		Order(goqu.C(t.source.IDColumn).Asc())
	ids, err := db.QueryInt64s(ctx, t.db, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert aliases of %s", t.source.Table)
	}
	t.log(ctx).Debugw("Converted aliases", logger.FieldValueCount, len(ids))
	return ids, nil
}

func (t *TableTags) SearchFor(ctx context.Context, pattern interface{}) ([]int64, error) {
	return NewRule(t, pattern).MatchingIDs(ctx)
}

func (t *TableTags) FieldDefinition(ctx context.Context) FieldDefinition {
	return buildFieldDefinition(ctx, t)
}
