package tags

import (
	"sort"

	"github.com/spf13/cast"
)

// aliasOf returns the alias of a record, falling back to its id
func aliasOf(src SourceDescriptor, rec ValueRecord) string {
	if alias := rec.Field(src.AliasColumn); alias != "" {
		return alias
	}
	if id := rec.Field(src.IDColumn); id != "" {
		return id
	}
	if rec.ID != 0 {
		return cast.ToString(rec.ID)
	}
	return ""
}

// sortRecords orders records by the sort column, numerically when both
// values are numbers, then by id
func sortRecords(src SourceDescriptor, records []ValueRecord) []ValueRecord {
	out := make([]ValueRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareValues(out[i].Raw[src.SortColumn], out[j].Raw[src.SortColumn]); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func compareValues(a, b interface{}) int {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil && a != nil && b != nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := cast.ToString(a), cast.ToString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func encodeWidget(src SourceDescriptor, records []ValueRecord) interface{} {
	var aliases []string
	for _, rec := range sortRecords(src, records) {
		if alias := aliasOf(src, rec); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	return src.WidgetMode.JoinOutput(aliases)
}

func encodeDisplay(src SourceDescriptor, records []ValueRecord) []Option {
	out := make([]Option, 0, len(records))
	for _, rec := range records {
		alias := aliasOf(src, rec)
		if alias == "" {
			continue
		}
		out = append(out, Option{Alias: alias, Text: rec.Field(src.DisplayColumn)})
	}
	return out
}

// positionsOf maps each token to its first position in tokens
func positionsOf(tokens []string) map[string]int {
	positions := make(map[string]int, len(tokens))
	for i, token := range tokens {
		if _, ok := positions[token]; !ok {
			positions[token] = i
		}
	}
	return positions
}
