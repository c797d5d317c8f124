package tags

import (
	"strings"

	"github.com/spf13/cast"
)

// WidgetMode selects how values are picked in the backend and therefore how
// widget values are encoded
type WidgetMode int

const (
	WidgetCheckbox WidgetMode = iota
	WidgetCheckboxWizard
	WidgetTreePicker
	WidgetSelect
)

var widgetNames = map[WidgetMode]string{
	WidgetCheckbox:       "checkbox",
	WidgetCheckboxWizard: "checkboxWizard",
	WidgetTreePicker:     "treePicker",
	WidgetSelect:         "select",
}

func (m WidgetMode) String() string {
	if name, ok := widgetNames[m]; ok {
		return name
	}
	return "checkbox"
}

// IsTreePicker reports whether values travel as one comma-joined string
func (m WidgetMode) IsTreePicker() bool {
	return m == WidgetTreePicker
}

// InputType is the input type the host renders for the mode
func (m WidgetMode) InputType() string {
	switch m {
	case WidgetTreePicker:
		return "DcGeneralTreePicker"
	case WidgetCheckboxWizard:
		return "checkboxWizard"
	case WidgetSelect:
		return "select"
	default:
		return "checkbox"
	}
}

// SplitInput normalizes raw widget input into alias tokens. Strings are
// comma-joined lists in every mode, lists pass through. Tokens are trimmed
// and blanks dropped; anything else yields nil.
func (m WidgetMode) SplitInput(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return compactTokens(strings.Split(v, ","))
	case []string:
		return compactTokens(v)
	case []interface{}:
		tokens := make([]string, 0, len(v))
		for _, item := range v {
			tokens = append(tokens, cast.ToString(item))
		}
		return compactTokens(tokens)
	default:
		return nil
	}
}

func compactTokens(tokens []string) []string {
	var out []string
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// JoinOutput renders aliases the way the mode's widget expects them
func (m WidgetMode) JoinOutput(aliases []string) interface{} {
	if m.IsTreePicker() {
		return strings.Join(aliases, ",")
	}
	if aliases == nil {
		return []string{}
	}
	return aliases
}

// splitPattern turns a search pattern into tokens: id lists are formatted,
// everything else is split like widget input
func splitPattern(pattern interface{}) []string {
	switch v := pattern.(type) {
	case []int64:
		out := make([]string, 0, len(v))
		for _, id := range v {
			out = append(out, cast.ToString(id))
		}
		return out
	default:
		return WidgetCheckbox.SplitInput(pattern)
	}
}
