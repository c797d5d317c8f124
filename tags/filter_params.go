package tags

import (
	"context"
	"sort"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/logger"
)

// mergeFilterParams combines configured presets with request parameters.
// Presets apply for every parameter the definition knows. A request value is
// taken for request-settable parameters that are not preset, or whose preset
// allows overriding. Request values for other parameters are ignored.
func mergeFilterParams(presets []FilterParam, def collection.FilterDefinition, request map[string]string) map[string]string {
	known := make(map[string]bool)
	for _, name := range def.Parameters() {
		known[name] = true
	}

	merged := make(map[string]string)
	byName := make(map[string]FilterParam, len(presets))
	for _, preset := range presets {
		byName[preset.Name] = preset
		if known[preset.Name] {
			merged[preset.Name] = preset.Value
		}
	}

	requestable := make([]string, 0)
	for name := range def.ParameterFilterNames() {
		requestable = append(requestable, name)
	}
	sort.Strings(requestable)

	for _, name := range requestable {
		value, ok := request[name]
		if !ok {
			continue
		}
		if preset, isPreset := byName[name]; !isPreset || preset.UseGet {
			merged[name] = value
		}
	}
	return merged
}

// applyFilterDefinition adds the rules of the configured secondary filter
func (c *CollectionTags) applyFilterDefinition(ctx context.Context, filter *collection.Filter, request map[string]string) error {
	if c.settings.FilterID == 0 || c.filters == nil {
		return nil
	}
	def, err := c.filters.FilterDefinition(ctx, c.settings.FilterID)
	if errors.IsNotFound(err) {
		c.log(ctx).Warnw("Filter definition not available",
			logger.FieldFilterID, c.settings.FilterID,
			logger.FieldError, err.Error(),
		)
		return nil
	}
	if err != nil {
		return err
	}
	return def.AddRules(ctx, filter, mergeFilterParams(c.settings.FilterParams, def, request))
}
