// Package collection defines the contracts the tag engine needs from managed
// item collections and ships a SQL-backed reference implementation.
//
// A collection is a named set of items stored in one table whose columns are
// exposed as searchable attributes. Tag attributes whose source table carries
// the collection prefix resolve their values through this package instead of
// querying the table directly.
package collection

import (
	"context"
)

// Provider looks up collections by name
type Provider interface {
	// Collection returns the named collection or an errors.ErrNotFound error
	Collection(ctx context.Context, name string) (Collection, error)
	// Names lists all known collection names, sorted
	Names(ctx context.Context) ([]string, error)
}

// Collection is a managed set of items
type Collection interface {
	Name() string
	TableName() string
	IsTranslated() bool
	ActiveLanguage() string
	FallbackLanguage() string

	// EmptyFilter returns a filter matching every item
	EmptyFilter() *Filter
	// FindByFilter loads the items matching filter ordered by sortBy
	FindByFilter(ctx context.Context, filter *Filter, sortBy string) ([]Item, error)
	// IDsFromFilter returns the ids of the items matching filter ordered by sortBy
	IDsFromFilter(ctx context.Context, filter *Filter, sortBy string) ([]int64, error)

	// Attribute returns the named attribute or nil when the name is a plain column
	Attribute(name string) Attribute
	Attributes() []Attribute
}

// Parsed holds the machine and display representation of an item
type Parsed struct {
	Raw  map[string]interface{}
	Text map[string]string
}

// Item is one entry of a collection
type Item interface {
	ID() int64
	Get(field string) interface{}
	ParseValue(ctx context.Context) (Parsed, error)
	// ParseAttribute returns the display text of one attribute, ok is false
	// when the item has no text representation for it.
	ParseAttribute(ctx context.Context, name string) (text string, ok bool)
}

// Attribute is a searchable field of a collection
type Attribute interface {
	Name() string
	Type() string
	// SearchFor returns the ids of items whose value matches pattern.
	// A nil slice means every item matches.
	SearchFor(ctx context.Context, pattern string) ([]int64, error)
}

// TranslatedAttribute is an attribute holding one value per language
type TranslatedAttribute interface {
	Attribute
	SearchForInLanguages(ctx context.Context, pattern string, languages []string) ([]int64, error)
}

// DefinitionLoader resolves filter definitions by id
type DefinitionLoader interface {
	FilterDefinition(ctx context.Context, id int64) (FilterDefinition, error)
}

// FilterDefinition is a reusable, parameterized set of filter rules
type FilterDefinition interface {
	// Parameters lists every parameter name the definition understands
	Parameters() []string
	// ParameterFilterNames maps the parameters accepted from a request to their labels
	ParameterFilterNames() map[string]string
	// AddRules appends the definition's rules to filter using params
	AddRules(ctx context.Context, filter *Filter, params map[string]string) error
}
