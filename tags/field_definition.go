package tags

import "context"

// FieldDefinition describes how the host renders the input of an attribute
type FieldDefinition struct {
	InputType string `json:"inputType" yaml:"input_type"`
	// SourceName, FieldType and IDProperty are set for tree pickers only
	SourceName         string   `json:"sourceName,omitempty" yaml:"source_name,omitempty"`
	FieldType          string   `json:"fieldType,omitempty" yaml:"field_type,omitempty"`
	IDProperty         string   `json:"idProperty,omitempty" yaml:"id_property,omitempty"`
	Chosen             bool     `json:"chosen,omitempty" yaml:"chosen,omitempty"`
	IncludeBlankOption bool     `json:"includeBlankOption" yaml:"include_blank_option"`
	Multiple           bool     `json:"multiple" yaml:"multiple"`
	Options            []Option `json:"options,omitempty" yaml:"options,omitempty"`
	// OptionsError replaces Options when they could not be listed
	OptionsError string `json:"optionsError,omitempty" yaml:"options_error,omitempty"`
}

func buildFieldDefinition(ctx context.Context, a Attribute) FieldDefinition {
	src := a.Source()
	def := FieldDefinition{
		InputType:          src.WidgetMode.InputType(),
		IncludeBlankOption: true,
		Multiple:           true,
	}
	switch src.WidgetMode {
	case WidgetTreePicker:
		def.SourceName = src.Table
		def.FieldType = "checkbox"
		def.IDProperty = src.AliasColumn
	case WidgetSelect:
		def.Chosen = true
	}

	options, err := a.FilterOptions(ctx, OptionsQuery{})
	if err != nil {
		def.OptionsError = "Error: " + err.Error()
		return def
	}
	def.Options = options
	return def
}
