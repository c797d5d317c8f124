package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/designs2/attribute-tags/errors"
)

// render prints v in the selected output format. The table format prints
// rows with a header line.
func render(v interface{}, rows pterm.TableData) error {
	switch OutputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal JSON")
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "failed to marshal YAML")
		}
		fmt.Print(string(data))
	case "", "table":
		if len(rows) <= 1 {
			pterm.Info.Println("No results")
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	default:
		return errors.Newf("unsupported format: %s (supported: table, json, yaml)", OutputFormat)
	}
	return nil
}

// parseIDs converts command arguments into ids
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := cast.ToInt64E(part)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseParams converts key=value pairs into filter parameters
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
