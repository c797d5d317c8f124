package tags

import (
	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
)

// SourceKind tells where the values of an attribute live
type SourceKind int

const (
	// SourceSQLTable reads values from an arbitrary SQL table
	SourceSQLTable SourceKind = iota
	// SourceCollection reads values from a managed collection
	SourceCollection
)

func (k SourceKind) String() string {
	if k == SourceCollection {
		return "collection"
	}
	return "table"
}

// SourceDescriptor is the resolved column semantics of an attribute
type SourceDescriptor struct {
	Kind          SourceKind
	Table         string
	IDColumn      string
	DisplayColumn string
	AliasColumn   string
	SortColumn    string
	Where         RawPredicate
	WidgetMode    WidgetMode
}

// Resolve derives the source descriptor from settings. The descriptor is
// always filled; the error reports settings that leave the attribute
// unusable.
func Resolve(s Settings) (SourceDescriptor, error) {
	src := SourceDescriptor{
		Kind:          SourceSQLTable,
		Table:         s.Table,
		IDColumn:      s.IDColumn,
		DisplayColumn: s.DisplayColumn,
		AliasColumn:   s.AliasColumn,
		SortColumn:    s.SortColumn,
		WidgetMode:    s.WidgetMode,
	}
	if collection.IsCollectionName(s.Table) {
		src.Kind = SourceCollection
	}
	if src.IDColumn == "" {
		src.IDColumn = "id"
	}
	if src.WidgetMode.IsTreePicker() || src.AliasColumn == "" {
		src.AliasColumn = src.IDColumn
	}
	if src.SortColumn == "" {
		src.SortColumn = src.IDColumn
	}
	// Predicates only apply to plain tables
	if src.Kind == SourceSQLTable {
		src.Where = NewRawPredicate(s.Where)
	}

	switch {
	case src.Table == "":
		return src, errors.Wrap(errors.ErrConfigurationInvalid, "no source table configured")
	case src.DisplayColumn == "":
		return src, errors.Wrapf(errors.ErrConfigurationInvalid, "no display column configured for %s", src.Table)
	}
	return src, nil
}

// AliasIsID reports whether aliases are the value ids themselves
func (s SourceDescriptor) AliasIsID() bool {
	return s.AliasColumn == s.IDColumn
}
