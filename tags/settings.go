package tags

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
)

// FilterParam is a preset value for a parameter of the secondary filter
type FilterParam struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Value string `yaml:"value" mapstructure:"value"`
	// UseGet lets a request-supplied value replace the preset
	UseGet bool `yaml:"use_get" mapstructure:"use_get"`
}

// Settings is the stored configuration of one tag attribute
type Settings struct {
	ID            int64         `yaml:"id" mapstructure:"id"`
	Name          string        `yaml:"name" mapstructure:"name"`
	Table         string        `yaml:"tag_table" mapstructure:"tag_table"`
	IDColumn      string        `yaml:"tag_id" mapstructure:"tag_id"`
	DisplayColumn string        `yaml:"tag_column" mapstructure:"tag_column"`
	AliasColumn   string        `yaml:"tag_alias" mapstructure:"tag_alias"`
	SortColumn    string        `yaml:"tag_sorting" mapstructure:"tag_sorting"`
	Where         string        `yaml:"tag_where" mapstructure:"tag_where"`
	WidgetMode    WidgetMode    `yaml:"tag_as_wizard" mapstructure:"tag_as_wizard"`
	FilterID      int64         `yaml:"tag_filter" mapstructure:"tag_filter"`
	FilterParams  []FilterParam `yaml:"tag_filterparams" mapstructure:"tag_filterparams"`
}

// SettingNames lists the configuration keys a tag attribute understands
func SettingNames() []string {
	return []string{
		"tag_table",
		"tag_column",
		"tag_id",
		"tag_alias",
		"tag_where",
		"tag_filter",
		"tag_filterparams",
		"tag_sorting",
		"tag_as_wizard",
		"mandatory",
		"submitOnChange",
		"filterable",
		"searchable",
	}
}

// Definitions is the document holding attribute and filter definitions
type Definitions struct {
	Attributes  []Settings                          `yaml:"attributes"`
	Filters     []collection.ColumnDefinitionConfig `yaml:"filters"`
	Collections []collection.TableConfig            `yaml:"collections"`
}

// LoadDefinitions reads a YAML definitions file
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read definitions %s", path)
	}
	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid definitions in %s", path)
	}
	return defs, nil
}

// ParseDefinitions decodes a YAML definitions document
func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, errors.Wrap(err, "failed to parse definitions")
	}

	seen := make(map[int64]bool, len(defs.Attributes))
	for i, s := range defs.Attributes {
		if s.ID <= 0 {
			return nil, errors.Wrapf(errors.ErrConfigurationInvalid, "attribute #%d has no id", i+1)
		}
		if seen[s.ID] {
			return nil, errors.Wrapf(errors.ErrConfigurationInvalid, "attribute id %d defined twice", s.ID)
		}
		seen[s.ID] = true
	}
	return &defs, nil
}

// Attribute finds attribute settings by name or numeric id
func (d *Definitions) Attribute(ref string) (Settings, error) {
	id, _ := strconv.ParseInt(ref, 10, 64)
	for _, s := range d.Attributes {
		if s.Name == ref || (id > 0 && s.ID == id) {
			return s, nil
		}
	}
	return Settings{}, errors.NewNotFound("attribute %q", ref)
}
