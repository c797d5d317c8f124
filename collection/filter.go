package collection

import (
	"context"

	"github.com/designs2/attribute-tags/internal/idset"
)

// Rule narrows a filter to a set of item ids.
// A nil result means the rule does not restrict anything.
type Rule interface {
	MatchingIDs(ctx context.Context) ([]int64, error)
}

// Filter is a conjunction of rules
type Filter struct {
	rules []Rule
}

// NewFilter creates a filter without rules
func NewFilter() *Filter {
	return &Filter{}
}

// AddRule appends a rule to the filter
func (f *Filter) AddRule(rule Rule) {
	f.rules = append(f.rules, rule)
}

// MatchingIDs intersects the results of all rules, keeping the order of the
// first restricting rule. Nil means no rule restricted the result.
func (f *Filter) MatchingIDs(ctx context.Context) ([]int64, error) {
	var result []int64
	restricted := false
	for _, rule := range f.rules {
		ids, err := rule.MatchingIDs(ctx)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			continue
		}
		if !restricted {
			result = idset.Unique(ids)
			restricted = true
			continue
		}
		keep := idset.Of(ids...)
		narrowed := make([]int64, 0, len(result))
		for _, id := range result {
			if keep.Has(id) {
				narrowed = append(narrowed, id)
			}
		}
		result = narrowed
	}
	if restricted && result == nil {
		result = []int64{}
	}
	return result, nil
}

// IDList is a static rule matching exactly the listed ids
type IDList []int64

// MatchingIDs returns the listed ids, never nil
func (l IDList) MatchingIDs(ctx context.Context) ([]int64, error) {
	out := make([]int64, len(l))
	copy(out, l)
	return out, nil
}

// AddIDListRule restricts filter to ids
func AddIDListRule(filter *Filter, ids []int64) {
	filter.AddRule(IDList(ids))
}
