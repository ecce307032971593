package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/output"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tables",
		Aliases: []string{"ls"},
		Short:   "List the tables on the main page",
		Long: `Load the main page and list its tables: id, name, number of data rows
and the rows rendered as selected. The id is what clicks refer to; the name
is the key the export groups attributes under.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := loadPage(ctx, clientFromContext(ctx), ConfigFromContext(ctx).GetRedirectPath())
			if err != nil {
				return err
			}
			summaries := summarizeTables(doc)
			if renderAsTable(ctx) {
				return printerForContext(ctx).Print(ctx, tablesTable(summaries))
			}
			return printerForContext(ctx).Print(ctx, summaries)
		},
	}
}

// renderAsTable reports whether the result goes straight to a table, with no
// filter asking for the underlying fields.
func renderAsTable(ctx context.Context) bool {
	return output.FormatFromContext(ctx) == output.FormatTable &&
		output.QueryFromContext(ctx) == "" &&
		output.FieldsFromContext(ctx) == "" &&
		output.JSONPathFromContext(ctx) == ""
}

func tablesTable(summaries []tableSummary) output.Table {
	t := output.Table{Headers: []string{"ID", "NAME", "ROWS", "SELECTED", "ATTRIBUTES"}}
	for _, s := range summaries {
		selected := make([]string, 0, len(s.Selected))
		for _, i := range s.Selected {
			selected = append(selected, strconv.Itoa(i))
		}
		t.Rows = append(t.Rows, []string{
			s.ID,
			s.Name,
			strconv.Itoa(s.Rows),
			strings.Join(selected, ","),
			strings.Join(s.Attributes, ","),
		})
	}
	return t
}
