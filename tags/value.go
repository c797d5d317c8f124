package tags

import (
	"github.com/spf13/cast"

	"github.com/designs2/attribute-tags/db"
)

// ValueRecord is the resolved form of one referenced value
type ValueRecord struct {
	ID int64
	// Raw holds the machine values of the source row or item
	Raw map[string]interface{}
	// Text holds display-formatted values
	Text map[string]string
	// Sorting is the position among the item's values, nil when unknown
	Sorting *int
}

// Values maps value ids to records, as decoded from widget input
type Values map[int64]ValueRecord

// Field returns the display text of a field, falling back to the raw value
func (r ValueRecord) Field(name string) string {
	if text := r.Text[name]; text != "" {
		return text
	}
	if v, ok := r.Raw[name]; ok && v != nil {
		return cast.ToString(v)
	}
	return ""
}

func (r ValueRecord) sortingOrZero() int {
	if r.Sorting == nil {
		return 0
	}
	return *r.Sorting
}

// Option is one selectable entry of a filter option listing
type Option struct {
	Alias string `json:"alias" yaml:"alias"`
	Text  string `json:"text" yaml:"text"`
	Count int64  `json:"count,omitempty" yaml:"count,omitempty"`
}

// Position returns a pointer usable as ValueRecord.Sorting
func Position(n int) *int {
	return &n
}

// recordFromRow builds a record from a plain table row
func recordFromRow(id int64, row db.Row) ValueRecord {
	rec := ValueRecord{
		ID:   id,
		Raw:  make(map[string]interface{}, len(row)),
		Text: make(map[string]string, len(row)),
	}
	for name, value := range row {
		rec.Raw[name] = value
		if value != nil {
			rec.Text[name] = cast.ToString(value)
		}
	}
	return rec
}
