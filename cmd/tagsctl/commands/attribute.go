package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
	"github.com/designs2/attribute-tags/tags"
)

// OptionsCmd lists the filter options of an attribute
var OptionsCmd = &cobra.Command{
	Use:   "options <attribute>",
	Short: "List the selectable values of an attribute",
	Long: `List the values of an attribute as alias/text pairs, ordered by the
sort column.

Examples:
  tagsctl options colors                       # every value
  tagsctl options colors --used --scope 1,2    # values used by items 1 and 2
  tagsctl options colors --counts              # with usage counts
  tagsctl options cities --param region=east   # filter definition parameter`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

// ShowCmd prints the stored values of items
var ShowCmd = &cobra.Command{
	Use:   "show <attribute> <item-id>...",
	Short: "Show the values stored for items",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runShow,
}

// TagCmd replaces the values of an item
var TagCmd = &cobra.Command{
	Use:   "tag <attribute> <item-id> [alias]...",
	Short: "Replace the values of an item",
	Long: `Replace the values of an item with the given aliases, in order.

Aliases may also be given as one comma separated argument.
Without aliases every value of the item is removed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTag,
}

// MatchCmd lists the items tagged with values matching a pattern
var MatchCmd = &cobra.Command{
	Use:   "match <attribute> <pattern>",
	Short: "List items tagged with matching values",
	Long: `List the ids of items tagged with any value matching the pattern.

The pattern is a comma separated list of aliases. Linked collections also
accept * and ? wildcards.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

// UnsetCmd removes every value of items
var UnsetCmd = &cobra.Command{
	Use:   "unset <attribute> <item-id>...",
	Short: "Remove every value of items",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runUnset,
}

var (
	optionsUsedFlag   bool
	optionsCountsFlag bool
	optionsScopeFlag  []string
	optionsParamFlag  []string
	optionsFieldFlag  bool
)

func init() {
	OptionsCmd.Flags().BoolVar(&optionsUsedFlag, "used", false, "Only values used by the scoped items")
	OptionsCmd.Flags().BoolVar(&optionsCountsFlag, "counts", false, "Include usage counts")
	OptionsCmd.Flags().StringSliceVar(&optionsScopeFlag, "scope", nil, "Item ids with --used, value ids otherwise")
	OptionsCmd.Flags().StringArrayVar(&optionsParamFlag, "param", nil, "Filter definition parameter as key=value (repeatable)")
	OptionsCmd.Flags().BoolVar(&optionsFieldFlag, "field", false, "Print the backend field definition instead")
}

func runOptions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}

	if optionsFieldFlag {
		def := attribute.FieldDefinition(ctx)
		rows := pterm.TableData{{"Property", "Value"},
			{"inputType", def.InputType},
			{"multiple", cast.ToString(def.Multiple)},
			{"options", cast.ToString(len(def.Options))},
		}
		if def.OptionsError != "" {
			rows = append(rows, []string{"optionsError", def.OptionsError})
		}
		return render(def, rows)
	}

	scope, err := parseIDs(optionsScopeFlag)
	if err != nil {
		return err
	}
	params, err := parseParams(optionsParamFlag)
	if err != nil {
		return err
	}

	options, err := attribute.FilterOptions(ctx, tags.OptionsQuery{
		ScopeIDs:   scope,
		UsedOnly:   optionsUsedFlag,
		WithCounts: optionsCountsFlag,
		Params:     params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to list options")
	}

	rows := pterm.TableData{{"Alias", "Text"}}
	if optionsCountsFlag {
		rows[0] = append(rows[0], "Count")
	}
	for _, o := range options {
		row := []string{o.Alias, o.Text}
		if optionsCountsFlag {
			row = append(row, cast.ToString(o.Count))
		}
		rows = append(rows, row)
	}
	return render(options, rows)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}
	itemIDs, err := parseIDs(args[1:])
	if err != nil {
		return err
	}

	data, err := attribute.DataFor(ctx, itemIDs)
	if err != nil {
		return errors.Wrap(err, "failed to load values")
	}

	result := make(map[int64][]tags.Option, len(data))
	rows := pterm.TableData{{"Item", "Widget", "Values"}}
	for _, id := range idset.Unique(itemIDs) {
		records, ok := data[id]
		if !ok {
			continue
		}
		display := attribute.ValueToDisplay(records)
		result[id] = display

		texts := make([]string, 0, len(display))
		for _, o := range display {
			texts = append(texts, o.Text)
		}
		rows = append(rows, []string{
			cast.ToString(id),
			fmt.Sprint(attribute.ValueToWidget(records)),
			strings.Join(texts, ", "),
		})
	}
	return render(result, rows)
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}
	itemID, err := cast.ToInt64E(args[1])
	if err != nil {
		return errors.Wrapf(err, "invalid item id %q", args[1])
	}

	values, err := attribute.ValueFromWidget(ctx, strings.Join(args[2:], ","))
	if err != nil {
		for _, detail := range errors.GetAllDetails(err) {
			pterm.Warning.Println(detail)
		}
		return err
	}

	if err := attribute.SetDataFor(ctx, map[int64]tags.Values{itemID: values}); err != nil {
		return errors.Wrapf(err, "failed to store values of item %d", itemID)
	}
	pterm.Success.Printfln("Item %d now has %d value(s) for %s", itemID, len(values), attribute.Name())
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}
	itemIDs, err := attribute.SearchFor(ctx, args[1])
	if err != nil {
		return errors.Wrapf(err, "failed to search for %q", args[1])
	}

	rows := pterm.TableData{{"Item"}}
	for _, id := range itemIDs {
		rows = append(rows, []string{cast.ToString(id)})
	}
	return render(itemIDs, rows)
}

func runUnset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}
	itemIDs, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	if err := attribute.UnsetDataFor(ctx, itemIDs); err != nil {
		return err
	}
	pterm.Success.Printfln("Removed the %s values of %d item(s)", attribute.Name(), len(itemIDs))
	return nil
}
