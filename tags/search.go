package tags

import (
	"context"

	"github.com/designs2/attribute-tags/internal/idset"
	"github.com/designs2/attribute-tags/logger"
)

// Rule matches the items tagged with any value named by a pattern. It
// satisfies collection.Rule so it can narrow a collection filter.
type Rule struct {
	attribute Attribute
	pattern   interface{}
}

// NewRule creates a rule. pattern is a comma-separated string or a list of
// aliases.
func NewRule(attribute Attribute, pattern interface{}) *Rule {
	return &Rule{attribute: attribute, pattern: pattern}
}

// MatchingIDs returns the ids of matching items, ascending. No resolvable
// value means no match and no query against the relation table.
func (r *Rule) MatchingIDs(ctx context.Context) ([]int64, error) {
	tokens := splitPattern(r.pattern)
	if len(tokens) == 0 {
		return []int64{}, nil
	}
	valueIDs, err := r.attribute.ConvertValuesToValueIDs(ctx, tokens)
	if err != nil {
		return nil, err
	}
	valueIDs = idset.Unique(valueIDs)
	if len(valueIDs) == 0 {
		return []int64{}, nil
	}

	ids, err := r.attribute.Relations().ItemsWithValues(ctx, valueIDs)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, nil).Debugw("Matched tagged items",
		logger.FieldAttributeID, r.attribute.ID(),
		logger.FieldValueCount, len(valueIDs),
		logger.FieldItemCount, len(ids),
	)
	return ids, nil
}
