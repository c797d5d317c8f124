// Package tags implements the tag attribute: a many-to-many relation between
// host items and values drawn from a plain SQL table or a managed collection.
//
// An attribute decodes widget input into value ids, reconciles the stored
// relation rows on save, lists selectable filter options and resolves search
// patterns into matching item ids. All relation rows of every attribute live
// in one shared table keyed by the attribute id.
package tags

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/logger"
)

// TypeName is the attribute type identifier
const TypeName = "tags"

// Attribute is a configured tag attribute
type Attribute interface {
	ID() int64
	Name() string
	Settings() Settings
	Source() SourceDescriptor
	// IsProperlyConfigured reports whether operations will do anything
	IsProperlyConfigured(ctx context.Context) bool
	Relations() *RelationStore

	// ValueFromWidget resolves widget input into value records keyed by value id
	ValueFromWidget(ctx context.Context, raw interface{}) (Values, error)
	// ValueToWidget renders stored records as widget input
	ValueToWidget(records []ValueRecord) interface{}
	// ValueToDisplay renders stored records as alias/text pairs
	ValueToDisplay(records []ValueRecord) []Option

	// DataFor loads the values of itemIDs ordered by their stored sorting
	DataFor(ctx context.Context, itemIDs []int64) (map[int64][]ValueRecord, error)
	// SetDataFor replaces the values of every item in targets
	SetDataFor(ctx context.Context, targets map[int64]Values) error
	// UnsetDataFor removes every value of itemIDs
	UnsetDataFor(ctx context.Context, itemIDs []int64) error

	// FilterOptions lists the selectable values
	FilterOptions(ctx context.Context, query OptionsQuery) ([]Option, error)
	// ConvertValuesToValueIDs resolves alias tokens to value ids
	ConvertValuesToValueIDs(ctx context.Context, tokens []string) ([]int64, error)
	// SearchFor returns the items tagged with any value matching pattern
	SearchFor(ctx context.Context, pattern interface{}) ([]int64, error)
	// FieldDefinition describes the backend input for the attribute
	FieldDefinition(ctx context.Context) FieldDefinition
}

// Deps are the collaborators of an attribute
type Deps struct {
	DB          *sql.DB
	Collections collection.Provider
	Filters     collection.DefinitionLoader
	Logger      *zap.SugaredLogger
}

// New creates the attribute implementation matching the source kind.
// Invalid settings do not fail construction; the attribute then reports
// IsProperlyConfigured() == false and every operation is a no-op.
func New(settings Settings, deps Deps) Attribute {
	b := newBase(settings, deps)
	if b.source.Kind == SourceCollection {
		return &CollectionTags{base: b, collections: deps.Collections, filters: deps.Filters}
	}
	return &TableTags{base: b}
}

// base carries what both implementations share
type base struct {
	settings  Settings
	source    SourceDescriptor
	configErr error
	db        *sql.DB
	store     *RelationStore
	logger    *zap.SugaredLogger
}

func newBase(settings Settings, deps Deps) *base {
	source, err := Resolve(settings)
	log := deps.Logger
	if log == nil {
		log = logger.ComponentLogger("tags")
	}
	log = log.With(
		logger.FieldAttributeID, settings.ID,
		logger.FieldSourceTable, source.Table,
		logger.FieldSourceKind, source.Kind.String(),
	)
	if err != nil {
		log.Warnw("Tag attribute is not properly configured", logger.FieldError, err.Error())
	}
	return &base{
		settings:  settings,
		source:    source,
		configErr: err,
		db:        deps.DB,
		store:     NewRelationStore(deps.DB, settings.ID),
		logger:    log,
	}
}

func (b *base) ID() int64                 { return b.settings.ID }
func (b *base) Name() string              { return b.settings.Name }
func (b *base) Settings() Settings        { return b.settings }
func (b *base) Source() SourceDescriptor  { return b.source }
func (b *base) Relations() *RelationStore { return b.store }

func (b *base) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, b.logger)
}

// configured reports whether the settings resolved to a usable source
func (b *base) configured() bool {
	return b.configErr == nil
}

// ValueToWidget renders the aliases of records in sort column order
func (b *base) ValueToWidget(records []ValueRecord) interface{} {
	return encodeWidget(b.source, records)
}

// ValueToDisplay renders records as alias/text pairs
func (b *base) ValueToDisplay(records []ValueRecord) []Option {
	return encodeDisplay(b.source, records)
}

// UnsetDataFor removes every value of itemIDs
func (b *base) UnsetDataFor(ctx context.Context, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	for _, id := range itemIDs {
		if id <= 0 {
			return errors.NewInvalidArgument("item id %d is not a proper id", id)
		}
	}
	if err := b.store.DeleteItems(ctx, itemIDs); err != nil {
		return err
	}
	b.log(ctx).Debugw("Removed tag values", logger.FieldItemCount, len(itemIDs))
	return nil
}
