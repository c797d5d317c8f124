package collection

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
)

// Prefix marks tables holding managed collections
const Prefix = "mm_"

// IsCollectionName reports whether name follows the collection naming convention
func IsCollectionName(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// Registry is an in-memory Provider
type Registry struct {
	mu          sync.RWMutex
	collections map[string]Collection
}

// NewRegistry creates a registry holding collections
func NewRegistry(collections ...Collection) *Registry {
	r := &Registry{collections: make(map[string]Collection)}
	for _, c := range collections {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a collection
func (r *Registry) Register(c Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[c.Name()] = c
}

// Collection returns the named collection
func (r *Registry) Collection(ctx context.Context, name string) (Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	if !ok {
		return nil, errors.NewNotFound("collection %q", name)
	}
	return c, nil
}

// Names returns the registered names, sorted
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DiscoverOptions controls which tables Discover registers and how
type DiscoverOptions struct {
	ActiveLanguage   string
	FallbackLanguage string
	// Translated reports whether the named collection stores per-language columns
	Translated func(name string) bool
}

// Discover registers a TableCollection for every table carrying the
// collection prefix. Every column except id becomes an attribute. In
// translated collections, columns suffixed with the active language become
// translated attributes and the other language columns are hidden.
func Discover(ctx context.Context, q db.Querier, opts DiscoverOptions) (*Registry, error) {
	inspector := db.NewInspector(q)
	tables, err := inspector.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, table := range tables {
		if !IsCollectionName(table) {
			continue
		}
		columns, err := inspector.FieldNames(ctx, table)
		if err != nil {
			return nil, err
		}

		cfg := TableConfig{
			Name:             table,
			ActiveLanguage:   opts.ActiveLanguage,
			FallbackLanguage: opts.FallbackLanguage,
		}
		translated := opts.Translated != nil && opts.Translated(table) && opts.ActiveLanguage != ""
		suffix := "_" + opts.ActiveLanguage
		for _, column := range columns {
			switch {
			case column == "id":
			case translated && strings.HasSuffix(column, suffix):
				cfg.TranslatedAttributes = append(cfg.TranslatedAttributes, strings.TrimSuffix(column, suffix))
			case translated && hasLanguageSuffix(column, opts.FallbackLanguage):
			default:
				cfg.Attributes = append(cfg.Attributes, column)
			}
		}
		registry.Register(NewTableCollection(q, cfg))
	}
	return registry, nil
}

func hasLanguageSuffix(column, language string) bool {
	return language != "" && strings.HasSuffix(column, "_"+language)
}
