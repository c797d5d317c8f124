package tags

import (
	"context"
	"sort"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/db"
)

// SourceTables groups the tables an attribute may use as its source
type SourceTables struct {
	Translated   []string `json:"translated"`
	Untranslated []string `json:"untranslated"`
	Tables       []string `json:"tables"`
}

// ListSourceTables returns the collections, split by translation support,
// and the plain tables, each sorted. The relation table is never offered.
func ListSourceTables(ctx context.Context, q db.Querier, provider collection.Provider) (SourceTables, error) {
	var result SourceTables
	if provider != nil {
		names, err := provider.Names(ctx)
		if err != nil {
			return result, err
		}
		for _, name := range names {
			c, err := provider.Collection(ctx, name)
			if err != nil {
				return result, err
			}
			if c.IsTranslated() {
				result.Translated = append(result.Translated, name)
			} else {
				result.Untranslated = append(result.Untranslated, name)
			}
		}
	}

	tables, err := db.NewInspector(q).ListTables(ctx)
	if err != nil {
		return result, err
	}
	for _, table := range tables {
		if collection.IsCollectionName(table) || table == RelationTableName {
			continue
		}
		result.Tables = append(result.Tables, table)
	}

	sort.Strings(result.Translated)
	sort.Strings(result.Untranslated)
	sort.Strings(result.Tables)
	return result, nil
}

// SourceColumns lists the columns usable as display, alias or sort column
type SourceColumns struct {
	// SQL holds the physical columns of the source table
	SQL []string `json:"sql"`
	// Attributes holds the attribute names of a linked collection
	Attributes []string `json:"attributes,omitempty"`
}

// ListSourceColumns returns the columns of a source table. For collections
// the attribute names are listed separately from the table's columns.
func ListSourceColumns(ctx context.Context, q db.Querier, provider collection.Provider, table string) (SourceColumns, error) {
	var result SourceColumns
	physical := table
	if collection.IsCollectionName(table) && provider != nil {
		c, err := provider.Collection(ctx, table)
		if err != nil {
			return result, err
		}
		physical = c.TableName()
		for _, attr := range c.Attributes() {
			result.Attributes = append(result.Attributes, attr.Name())
		}
		sort.Strings(result.Attributes)
	}

	columns, err := db.NewInspector(q).FieldNames(ctx, physical)
	if err != nil {
		return result, err
	}
	result.SQL = columns
	return result, nil
}

// ListIDColumns returns the integer columns of table, the candidates for
// the id column
func ListIDColumns(ctx context.Context, q db.Querier, table string) ([]string, error) {
	fields, err := db.NewInspector(q).ListFields(ctx, table)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range fields {
		if f.IsInteger() {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}
