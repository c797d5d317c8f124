package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/tags"
)

// TablesCmd lists the tables usable as tag source
var TablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables usable as tag source",
	Long: `List the linked collections (grouped into translated and untranslated)
and the plain SQL tables that can serve as the source of a tag attribute.

The relation table and the migration bookkeeping table are never listed.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

// ColumnsCmd lists the columns of a source table
var ColumnsCmd = &cobra.Command{
	Use:   "columns <table>",
	Short: "List the columns of a source table",
	Long: `List the columns of a plain table or linked collection.

For collections the attribute names are listed next to the physical columns.
Integer columns are the candidates for the id column.`,
	Args: cobra.ExactArgs(1),
	RunE: runColumns,
}

// CheckCmd validates an attribute definition against the database
var CheckCmd = &cobra.Command{
	Use:   "check <attribute>",
	Short: "Validate an attribute definition",
	Long: `Resolve the source of an attribute and dry-run its where predicate.

Exits with an error when the source is incomplete or the predicate is
rejected by the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	tables, err := tags.ListSourceTables(ctx, env.db, env.collections)
	if err != nil {
		return errors.Wrap(err, "failed to list source tables")
	}

	rows := pterm.TableData{{"Kind", "Name"}}
	for _, name := range tables.Translated {
		rows = append(rows, []string{"collection (translated)", name})
	}
	for _, name := range tables.Untranslated {
		rows = append(rows, []string{"collection", name})
	}
	for _, name := range tables.Tables {
		rows = append(rows, []string{"table", name})
	}
	return render(tables, rows)
}

func runColumns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	table := args[0]
	columns, err := tags.ListSourceColumns(ctx, env.db, env.collections, table)
	if err != nil {
		return errors.Wrapf(err, "failed to list columns of %s", table)
	}

	physical := table
	if collection.IsCollectionName(table) {
		if c, err := env.collections.Collection(ctx, table); err == nil {
			physical = c.TableName()
		}
	}
	idColumns, err := tags.ListIDColumns(ctx, env.db, physical)
	if err != nil {
		return errors.Wrapf(err, "failed to list id columns of %s", physical)
	}

	result := struct {
		tags.SourceColumns `yaml:",inline"`
		ID                 []string `json:"id" yaml:"id"`
	}{columns, idColumns}

	rows := pterm.TableData{{"Kind", "Columns"}}
	rows = append(rows, []string{"sql", strings.Join(columns.SQL, ", ")})
	if len(columns.Attributes) > 0 {
		rows = append(rows, []string{"attribute", strings.Join(columns.Attributes, ", ")})
	}
	rows = append(rows, []string{"id", strings.Join(idColumns, ", ")})
	return render(result, rows)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.settings(args[0])
	if err != nil {
		return err
	}
	source, err := tags.Resolve(settings)
	if err != nil {
		return err
	}
	if err := tags.ValidatePredicate(ctx, env.db, settings); err != nil {
		for _, hint := range errors.GetAllHints(err) {
			pterm.Warning.Println(hint)
		}
		return err
	}

	attribute, err := env.attribute(args[0])
	if err != nil {
		return err
	}
	if !attribute.IsProperlyConfigured(ctx) {
		return errors.Wrapf(errors.ErrConfigurationInvalid, "source %s of attribute %s is not available", source.Table, settings.Name)
	}

	pterm.Success.Printfln("Attribute %s is properly configured (%s source %s, alias %s, sort %s)",
		settings.Name, source.Kind, source.Table, source.AliasColumn, source.SortColumn)
	return nil
}
