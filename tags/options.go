package tags

import (
	"context"

	"github.com/designs2/attribute-tags/logger"
)

// OptionsQuery selects which filter options to list
type OptionsQuery struct {
	// ScopeIDs are item ids when UsedOnly is set and value ids otherwise
	ScopeIDs []int64
	// UsedOnly restricts the listing to values referenced by at least one item
	UsedOnly bool
	// WithCounts fills Option.Count with the number of referencing items
	WithCounts bool
	// Params are request-supplied parameters for the secondary filter
	Params map[string]string
}

// optionItem is a source value before alias deduplication
type optionItem struct {
	ValueID int64
	Alias   string
	Text    string
}

// optionLister loads the source values for a listing, ordered by the sort
// column. When restricted is set only values in restrict may be returned.
type optionLister interface {
	listOptionItems(ctx context.Context, restrict []int64, restricted bool, params map[string]string) ([]optionItem, error)
}

// buildOptions narrows the listing, loads it through lister, attaches counts
// and collapses duplicate aliases
func (b *base) buildOptions(ctx context.Context, lister optionLister, query OptionsQuery) ([]Option, error) {
	var (
		restrict   []int64
		restricted bool
	)
	switch {
	case query.UsedOnly:
		used, err := b.store.UsedValueIDs(ctx, query.ScopeIDs)
		if err != nil {
			return nil, err
		}
		restrict, restricted = used, true
	case len(query.ScopeIDs) > 0:
		restrict, restricted = query.ScopeIDs, true
	}
	if restricted && len(restrict) == 0 {
		return []Option{}, nil
	}

	items, err := lister.listOptionItems(ctx, restrict, restricted, query.Params)
	if err != nil {
		return nil, err
	}

	var counts map[int64]int64
	if query.WithCounts && len(items) > 0 {
		valueIDs := make([]int64, 0, len(items))
		for _, item := range items {
			valueIDs = append(valueIDs, item.ValueID)
		}
		var itemScope []int64
		if query.UsedOnly {
			itemScope = query.ScopeIDs
		}
		counts, err = b.store.CountByValue(ctx, valueIDs, itemScope)
		if err != nil {
			return nil, err
		}
	}

	options := b.collapseAliases(ctx, items, counts)
	b.log(ctx).Debugw("Listed filter options",
		logger.FieldOptionCount, len(options),
		"used_only", query.UsedOnly,
	)
	return options, nil
}

// collapseAliases keeps one option per alias. A later value replaces an
// earlier one with the same alias but stays at the earlier position.
func (b *base) collapseAliases(ctx context.Context, items []optionItem, counts map[int64]int64) []Option {
	options := make([]Option, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		opt := Option{Alias: item.Alias, Text: item.Text, Count: counts[item.ValueID]}
		if i, ok := index[item.Alias]; ok {
			b.log(ctx).Warnw("Duplicate alias in filter options, keeping the later value",
				logger.FieldAlias, item.Alias,
				"value_id", item.ValueID,
			)
			options[i] = opt
			continue
		}
		index[item.Alias] = len(options)
		options = append(options, opt)
	}
	return options
}
