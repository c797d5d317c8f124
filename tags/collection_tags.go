package tags

import (
	"context"
	"sync"

	"github.com/doug-martin/goqu/v9"
	"github.com/spf13/cast"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
	"github.com/designs2/attribute-tags/logger"
)

// CollectionTags reads its values from a managed collection
type CollectionTags struct {
	*base
	collections collection.Provider
	filters     collection.DefinitionLoader

	mu     sync.Mutex
	linked collection.Collection
}

// Linked returns the source collection, looking it up once
func (c *CollectionTags) Linked(ctx context.Context) (collection.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.linked != nil {
		return c.linked, nil
	}
	if c.collections == nil {
		return nil, errors.NewNotFound("collection %q: no collection provider", c.source.Table)
	}
	linked, err := c.collections.Collection(ctx, c.source.Table)
	if err != nil {
		return nil, err
	}
	c.linked = linked
	return linked, nil
}

// linkedOrSkip returns the linked collection, or nil when the attribute
// cannot be used. A missing collection is a configuration problem and is
// only logged.
func (c *CollectionTags) linkedOrSkip(ctx context.Context) (collection.Collection, error) {
	if !c.configured() {
		return nil, nil
	}
	linked, err := c.Linked(ctx)
	if errors.IsNotFound(err) {
		c.log(ctx).Warnw("Linked collection not available", logger.FieldError, err.Error())
		return nil, nil
	}
	return linked, err
}

// IsProperlyConfigured reports whether the settings are complete and the
// linked collection exists
func (c *CollectionTags) IsProperlyConfigured(ctx context.Context) bool {
	if !c.configured() {
		return false
	}
	_, err := c.Linked(ctx)
	return err == nil
}

// ValueFromWidget resolves widget tokens through the linked collection
func (c *CollectionTags) ValueFromWidget(ctx context.Context, raw interface{}) (Values, error) {
	values := make(Values)
	tokens := c.source.WidgetMode.SplitInput(raw)
	if len(tokens) == 0 {
		return values, nil
	}
	linked, err := c.linkedOrSkip(ctx)
	if err != nil || linked == nil {
		return values, err
	}

	ids, positions, err := c.resolveValueIDs(ctx, linked, tokens, true)
	if err != nil {
		return nil, err
	}
	records, err := c.valuesByID(ctx, linked, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Sorting = Position(positions[rec.ID])
		values[rec.ID] = rec
	}
	return values, nil
}

// resolveValueIDs maps tokens to value ids and each id to the position of
// the first token producing it. When the alias is an attribute of the linked
// collection the attribute's search is used; a search matching everything
// yields every id of the collection. The id column takes tokens as ids.
// Other columns are looked up directly, where strict turns an empty result
// into a translation error.
func (c *CollectionTags) resolveValueIDs(ctx context.Context, linked collection.Collection, tokens []string, strict bool) ([]int64, map[int64]int, error) {
	alias := c.source.AliasColumn
	positions := make(map[int64]int)
	var ids []int64
	add := func(id int64, pos int) {
		if _, ok := positions[id]; ok {
			return
		}
		positions[id] = pos
		ids = append(ids, id)
	}

	if attr := linked.Attribute(alias); attr != nil {
		for i, token := range tokens {
			found, err := c.searchAttribute(ctx, linked, attr, token)
			if err != nil {
				return nil, nil, err
			}
			if found == nil {
				all, err := linked.IDsFromFilter(ctx, linked.EmptyFilter(), alias)
				if err != nil {
					return nil, nil, err
				}
				ids, positions = nil, make(map[int64]int, len(all))
				for pos, id := range all {
					add(id, pos)
				}
				return ids, positions, nil
			}
			for _, id := range found {
				add(id, i)
			}
		}
		return ids, positions, nil
	}

	if alias == "id" || c.source.AliasIsID() {
		for i, token := range tokens {
			if id, err := cast.ToInt64E(token); err == nil && id > 0 {
				add(id, i)
			}
		}
		return ids, positions, nil
	}

	ds := db.Dialect.From(goqu.T(linked.TableName())).Prepared(true).
		Select(goqu.C("id"), goqu.C(alias)).
		Where(goqu.C(alias).In(tokens)).
		Order(goqu.C("id").Asc())
	rows, err := db.QueryRows(ctx, c.db, ds)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to resolve values of %s", linked.Name())
	}
	if len(rows) == 0 {
		if strict {
			return nil, nil, errors.NewTranslationFailed(tokens)
		}
		return ids, positions, nil
	}
	tokenPositions := positionsOf(tokens)
	for _, row := range rows {
		add(cast.ToInt64(row["id"]), tokenPositions[cast.ToString(row[alias])])
	}
	return ids, positions, nil
}

func (c *CollectionTags) searchAttribute(ctx context.Context, linked collection.Collection, attr collection.Attribute, token string) ([]int64, error) {
	if translated, ok := attr.(collection.TranslatedAttribute); ok {
		return translated.SearchForInLanguages(ctx, token,
			[]string{linked.ActiveLanguage(), linked.FallbackLanguage()})
	}
	return attr.SearchFor(ctx, token)
}

// valuesByID loads and parses the items with ids. Items of a collection that
// is already being resolved further up the call chain are not loaded again,
// which stops collections tagging each other from recursing forever.
func (c *CollectionTags) valuesByID(ctx context.Context, linked collection.Collection, ids []int64) ([]ValueRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	name := linked.Name()
	if IsVisited(ctx, name) {
		c.log(ctx).Debugw("Skipping re-entrant resolution", logger.FieldCollection, name)
		return nil, nil
	}
	ctx = WithVisited(ctx, name)

	filter := linked.EmptyFilter()
	collection.AddIDListRule(filter, ids)
	items, err := linked.FindByFilter(ctx, filter, c.source.SortColumn)
	if err != nil {
		return nil, err
	}

	records := make([]ValueRecord, 0, len(items))
	for _, item := range items {
		parsed, err := item.ParseValue(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse item %d of %s", item.ID(), name)
		}
		records = append(records, ValueRecord{ID: item.ID(), Raw: parsed.Raw, Text: parsed.Text})
	}
	return records, nil
}

// DataFor loads the relation rows of itemIDs and resolves their values
// through the linked collection
func (c *CollectionTags) DataFor(ctx context.Context, itemIDs []int64) (map[int64][]ValueRecord, error) {
	result := make(map[int64][]ValueRecord)
	ids := idset.Unique(idset.NonZero(itemIDs))
	if len(ids) == 0 {
		return result, nil
	}
	linked, err := c.linkedOrSkip(ctx)
	if err != nil || linked == nil {
		return result, err
	}

	relations, err := c.store.Sorted(ctx, ids)
	if err != nil {
		return nil, err
	}
	valueIDs := make([]int64, 0, len(relations))
	for _, rel := range relations {
		valueIDs = append(valueIDs, rel.ValueID)
	}
	records, err := c.valuesByID(ctx, linked, idset.Unique(valueIDs))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]ValueRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	for _, rel := range relations {
		rec, ok := byID[rel.ValueID]
		if !ok {
			continue
		}
		rec.Sorting = Position(rel.Sorting)
		result[rel.ItemID] = append(result[rel.ItemID], rec)
	}
	return result, nil
}

// FilterOptions lists the items of the linked collection
func (c *CollectionTags) FilterOptions(ctx context.Context, query OptionsQuery) ([]Option, error) {
	linked, err := c.linkedOrSkip(ctx)
	if err != nil {
		return nil, err
	}
	if linked == nil {
		return []Option{}, nil
	}
	return c.buildOptions(ctx, c, query)
}

func (c *CollectionTags) listOptionItems(ctx context.Context, restrict []int64, restricted bool, params map[string]string) ([]optionItem, error) {
	linked, err := c.Linked(ctx)
	if err != nil {
		return nil, err
	}

	filter := linked.EmptyFilter()
	if err := c.applyFilterDefinition(ctx, filter, params); err != nil {
		return nil, err
	}
	if restricted {
		collection.AddIDListRule(filter, restrict)
	}

	items, err := linked.FindByFilter(ctx, filter, c.source.SortColumn)
	if err != nil {
		return nil, err
	}
	out := make([]optionItem, 0, len(items))
	for _, item := range items {
		out = append(out, optionItem{
			ValueID: item.ID(),
			Alias:   itemText(ctx, item, c.source.AliasColumn),
			Text:    itemText(ctx, item, c.source.DisplayColumn),
		})
	}
	return out, nil
}

// itemText prefers the parsed text of an attribute over its raw value
func itemText(ctx context.Context, item collection.Item, name string) string {
	if text, ok := item.ParseAttribute(ctx, name); ok {
		return text
	}
	return cast.ToString(item.Get(name))
}

// ConvertValuesToValueIDs resolves tokens like widget input does, returning
// no ids instead of an error when nothing matches
func (c *CollectionTags) ConvertValuesToValueIDs(ctx context.Context, tokens []string) ([]int64, error) {
	if len(tokens) == 0 {
		return []int64{}, nil
	}
	linked, err := c.linkedOrSkip(ctx)
	if err != nil || linked == nil {
		return []int64{}, err
	}
	ids, _, err := c.resolveValueIDs(ctx, linked, tokens, false)
	return ids, err
}

func (c *CollectionTags) SearchFor(ctx context.Context, pattern interface{}) ([]int64, error) {
	return NewRule(c, pattern).MatchingIDs(ctx)
}

func (c *CollectionTags) FieldDefinition(ctx context.Context) FieldDefinition {
	return buildFieldDefinition(ctx, c)
}
