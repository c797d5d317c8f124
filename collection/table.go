package collection

import (
	"context"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/spf13/cast"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
)

// TableConfig describes a collection stored in a single table
type TableConfig struct {
	Name     string `yaml:"name"`
	Table    string `yaml:"table"`
	IDColumn string `yaml:"id_column"`
	// Attributes lists the columns exposed as searchable attributes
	Attributes []string `yaml:"attributes"`
	// TranslatedAttributes are stored as one column per language, named
	// <attribute>_<language>
	TranslatedAttributes []string `yaml:"translated_attributes"`
	ActiveLanguage       string   `yaml:"active_language"`
	FallbackLanguage     string   `yaml:"fallback_language"`
}

// TableCollection is a collection backed by one SQL table
type TableCollection struct {
	q          db.Querier
	cfg        TableConfig
	attributes map[string]Attribute
	order      []string
}

// NewTableCollection creates a collection over cfg.Table (cfg.Name when unset)
func NewTableCollection(q db.Querier, cfg TableConfig) *TableCollection {
	if cfg.Table == "" {
		cfg.Table = cfg.Name
	}
	if cfg.IDColumn == "" {
		cfg.IDColumn = "id"
	}
	if cfg.FallbackLanguage == "" {
		cfg.FallbackLanguage = cfg.ActiveLanguage
	}

	c := &TableCollection{q: q, cfg: cfg, attributes: make(map[string]Attribute)}
	for _, name := range cfg.Attributes {
		c.addAttribute(&ColumnAttribute{collection: c, name: name})
	}
	for _, name := range cfg.TranslatedAttributes {
		c.addAttribute(&TranslatedColumnAttribute{ColumnAttribute{collection: c, name: name}})
	}
	return c
}

func (c *TableCollection) addAttribute(a Attribute) {
	if _, ok := c.attributes[a.Name()]; !ok {
		c.order = append(c.order, a.Name())
	}
	c.attributes[a.Name()] = a
}

func (c *TableCollection) Name() string             { return c.cfg.Name }
func (c *TableCollection) TableName() string        { return c.cfg.Table }
func (c *TableCollection) IsTranslated() bool       { return len(c.cfg.TranslatedAttributes) > 0 }
func (c *TableCollection) ActiveLanguage() string   { return c.cfg.ActiveLanguage }
func (c *TableCollection) FallbackLanguage() string { return c.cfg.FallbackLanguage }
func (c *TableCollection) EmptyFilter() *Filter     { return NewFilter() }

// Attribute returns the named attribute, nil for plain columns
func (c *TableCollection) Attribute(name string) Attribute {
	return c.attributes[name]
}

// Attributes returns the attributes in declaration order
func (c *TableCollection) Attributes() []Attribute {
	out := make([]Attribute, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.attributes[name])
	}
	return out
}

func (c *TableCollection) isTranslated(name string) bool {
	_, ok := c.attributes[name].(*TranslatedColumnAttribute)
	return ok
}

// column maps an attribute or column name to the physical column holding
// the value in the active language
func (c *TableCollection) column(name string) string {
	if c.isTranslated(name) {
		return languageColumn(name, c.cfg.ActiveLanguage)
	}
	return name
}

func languageColumn(name, language string) string {
	return name + "_" + language
}

// selectMatching builds the base query for filter, returning ok=false when
// the filter excludes every item
func (c *TableCollection) selectMatching(ctx context.Context, filter *Filter, sortBy string) (*goqu.SelectDataset, bool, error) {
	ds := db.Dialect.From(goqu.T(c.cfg.Table)).Prepared(true)
	if filter != nil {
		ids, err := filter.MatchingIDs(ctx)
		if err != nil {
			return nil, false, err
		}
		if ids != nil {
			if len(ids) == 0 {
				return nil, false, nil
			}
			ds = ds.Where(goqu.C(c.cfg.IDColumn).In(ids))
		}
	}

	order := []exp.OrderedExpression{}
	if sortBy != "" && sortBy != c.cfg.IDColumn {
		order = append(order, goqu.C(c.column(sortBy)).Asc())
	}
	order = append(order, goqu.C(c.cfg.IDColumn).Asc())
	return ds.Order(order...), true, nil
}

// FindByFilter loads the matching items ordered by sortBy, then by id
func (c *TableCollection) FindByFilter(ctx context.Context, filter *Filter, sortBy string) ([]Item, error) {
	ds, ok, err := c.selectMatching(ctx, filter, sortBy)
	if err != nil || !ok {
		return nil, err
	}
	rows, err := db.QueryRows(ctx, c.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load items of %s", c.cfg.Name)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		id, err := cast.ToInt64E(row[c.cfg.IDColumn])
		if err != nil {
			return nil, errors.Wrapf(err, "item of %s has no usable id", c.cfg.Name)
		}
		items = append(items, &Record{id: id, fields: row, collection: c})
	}
	return items, nil
}

// IDsFromFilter returns the matching ids ordered by sortBy, then by id
func (c *TableCollection) IDsFromFilter(ctx context.Context, filter *Filter, sortBy string) ([]int64, error) {
	ds, ok, err := c.selectMatching(ctx, filter, sortBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []int64{}, nil
	}
	ids, err := db.QueryInt64s(ctx, c.q, ds.Select(goqu.C(c.cfg.IDColumn)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load ids of %s", c.cfg.Name)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// Record is one row of a TableCollection
type Record struct {
	id         int64
	fields     db.Row
	collection *TableCollection
}

func (r *Record) ID() int64 { return r.id }

// Get returns a column value. Translated attributes resolve to the active
// language and fall back to the fallback language when empty.
func (r *Record) Get(field string) interface{} {
	c := r.collection
	if !c.isTranslated(field) {
		return r.fields[field]
	}
	if v := r.fields[languageColumn(field, c.cfg.ActiveLanguage)]; cast.ToString(v) != "" {
		return v
	}
	return r.fields[languageColumn(field, c.cfg.FallbackLanguage)]
}

// ParseValue returns every column plus the resolved translated attributes
func (r *Record) ParseValue(ctx context.Context) (Parsed, error) {
	parsed := Parsed{
		Raw:  make(map[string]interface{}, len(r.fields)),
		Text: make(map[string]string, len(r.fields)),
	}
	for name, value := range r.fields {
		parsed.Raw[name] = value
	}
	for _, name := range r.collection.cfg.TranslatedAttributes {
		parsed.Raw[name] = r.Get(name)
	}
	parsed.Raw["id"] = r.id

	for name, value := range parsed.Raw {
		if value == nil {
			continue
		}
		parsed.Text[name] = cast.ToString(value)
	}
	return parsed, nil
}

// ParseAttribute returns the display text of one field
func (r *Record) ParseAttribute(ctx context.Context, name string) (string, bool) {
	v := r.Get(name)
	if v == nil {
		return "", false
	}
	return cast.ToString(v), true
}

// ColumnAttribute exposes one column as a searchable attribute
type ColumnAttribute struct {
	collection *TableCollection
	name       string
}

func (a *ColumnAttribute) Name() string { return a.name }
func (a *ColumnAttribute) Type() string { return "text" }

// SearchFor matches the column with LIKE semantics, "*" and "?" acting as
// wildcards. A lone "*" matches everything and yields nil.
func (a *ColumnAttribute) SearchFor(ctx context.Context, pattern string) ([]int64, error) {
	return a.search(ctx, pattern, []string{a.name})
}

func (a *ColumnAttribute) search(ctx context.Context, pattern string, columns []string) ([]int64, error) {
	if pattern == "*" {
		return nil, nil
	}
	c := a.collection
	like := strings.NewReplacer("*", "%", "?", "_").Replace(pattern)

	conditions := make([]exp.Expression, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, goqu.C(column).Like(like))
	}
	ds := db.Dialect.From(goqu.T(c.cfg.Table)).Prepared(true).
		Select(goqu.C(c.cfg.IDColumn)).
		Where(goqu.Or(conditions...)).
		Order(goqu.C(c.cfg.IDColumn).Asc())

	ids, err := db.QueryInt64s(ctx, c.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %s.%s", c.cfg.Name, a.name)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// TranslatedColumnAttribute is a column attribute stored once per language
type TranslatedColumnAttribute struct {
	ColumnAttribute
}

func (a *TranslatedColumnAttribute) Type() string { return "translatedtext" }

// SearchFor searches the active language only
func (a *TranslatedColumnAttribute) SearchFor(ctx context.Context, pattern string) ([]int64, error) {
	return a.SearchForInLanguages(ctx, pattern, []string{a.collection.cfg.ActiveLanguage})
}

// SearchForInLanguages matches when any of the given languages matches
func (a *TranslatedColumnAttribute) SearchForInLanguages(ctx context.Context, pattern string, languages []string) ([]int64, error) {
	seen := make(map[string]bool, len(languages))
	columns := make([]string, 0, len(languages))
	for _, language := range languages {
		if language == "" || seen[language] {
			continue
		}
		seen[language] = true
		columns = append(columns, languageColumn(a.name, language))
	}
	sort.Strings(columns)
	if len(columns) == 0 {
		return []int64{}, nil
	}
	return a.search(ctx, pattern, columns)
}
