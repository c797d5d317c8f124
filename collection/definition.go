package collection

import (
	"context"
	"sync"

	"github.com/doug-martin/goqu/v9"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
)

// ColumnParameter binds a filter parameter to a column equality test
type ColumnParameter struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
	// FromRequest marks parameters that may be supplied by a request
	FromRequest bool `yaml:"from_request"`
}

// ColumnDefinitionConfig is the stored form of a ColumnDefinition
type ColumnDefinitionConfig struct {
	ID         int64             `yaml:"id"`
	Name       string            `yaml:"name"`
	Table      string            `yaml:"table"`
	IDColumn   string            `yaml:"id_column"`
	Parameters []ColumnParameter `yaml:"parameters"`
}

// ColumnDefinition is a filter definition whose parameters each restrict one
// column of a table to an exact value
type ColumnDefinition struct {
	q   db.Querier
	cfg ColumnDefinitionConfig
}

// NewColumnDefinition creates a definition over cfg.Table
func NewColumnDefinition(q db.Querier, cfg ColumnDefinitionConfig) *ColumnDefinition {
	if cfg.IDColumn == "" {
		cfg.IDColumn = "id"
	}
	return &ColumnDefinition{q: q, cfg: cfg}
}

// ID returns the definition id
func (d *ColumnDefinition) ID() int64 { return d.cfg.ID }

// Parameters returns all parameter names in declaration order
func (d *ColumnDefinition) Parameters() []string {
	names := make([]string, 0, len(d.cfg.Parameters))
	for _, p := range d.cfg.Parameters {
		names = append(names, p.Name)
	}
	return names
}

// ParameterFilterNames returns the request-settable parameters and their labels
func (d *ColumnDefinition) ParameterFilterNames() map[string]string {
	out := make(map[string]string)
	for _, p := range d.cfg.Parameters {
		if !p.FromRequest {
			continue
		}
		label := p.Label
		if label == "" {
			label = p.Name
		}
		out[p.Name] = label
	}
	return out
}

// AddRules adds one column match per parameter with a non-empty value
func (d *ColumnDefinition) AddRules(ctx context.Context, filter *Filter, params map[string]string) error {
	for _, p := range d.cfg.Parameters {
		value, ok := params[p.Name]
		if !ok || value == "" {
			continue
		}
		if p.Column == "" {
			return errors.Newf("filter %d: parameter %q has no column", d.cfg.ID, p.Name)
		}
		filter.AddRule(&ColumnMatch{q: d.q, table: d.cfg.Table, idColumn: d.cfg.IDColumn, column: p.Column, value: value})
	}
	return nil
}

// ColumnMatch selects the ids of rows whose column equals value
type ColumnMatch struct {
	q        db.Querier
	table    string
	idColumn string
	column   string
	value    string
}

func (m *ColumnMatch) MatchingIDs(ctx context.Context) ([]int64, error) {
	ds := db.Dialect.From(goqu.T(m.table)).Prepared(true).
		Select(goqu.C(m.idColumn)).
		Where(goqu.C(m.column).Eq(m.value)).
		Order(goqu.C(m.idColumn).Asc())
	ids, err := db.QueryInt64s(ctx, m.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to match %s.%s", m.table, m.column)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// DefinitionRegistry is an in-memory DefinitionLoader
type DefinitionRegistry struct {
	mu          sync.RWMutex
	definitions map[int64]FilterDefinition
}

// NewDefinitionRegistry builds column definitions from configs
func NewDefinitionRegistry(q db.Querier, configs ...ColumnDefinitionConfig) *DefinitionRegistry {
	r := &DefinitionRegistry{definitions: make(map[int64]FilterDefinition)}
	for _, cfg := range configs {
		r.Register(cfg.ID, NewColumnDefinition(q, cfg))
	}
	return r
}

// Register adds or replaces a definition
func (r *DefinitionRegistry) Register(id int64, def FilterDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[id] = def
}

// FilterDefinition returns the definition with id
func (r *DefinitionRegistry) FilterDefinition(ctx context.Context, id int64) (FilterDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[id]
	if !ok {
		return nil, errors.NewNotFound("filter definition %d", id)
	}
	return def, nil
}
