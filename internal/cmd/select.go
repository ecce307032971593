package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/cmdutil"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/export"
)

type selectResult struct {
	Clicks  []string       `json:"clicks"`
	Tables  []tableSummary `json:"tables"`
	Request export.Request `json:"request"`
}

func newSelectCmd() *cobra.Command {
	var (
		htmlOut    string
		clicksFile string
	)

	cmd := &cobra.Command{
		Use:   "select [clicks...]",
		Short: "Replay row clicks and show the resulting selection",
		Long: `Load the main page, replay row clicks in order and show which rows end up
selected, together with the export request the selection would produce.
Nothing is posted.

A click is table:row for a plain click, which toggles that row, and
+table:row for a shift click, which extends the selection from the first
selected row. Rows count from 0 and only rows with data cells are counted.`,
		Example: `  xmlsel select tbl_0:0 +tbl_0:2
  xmlsel select tbl_1:3 --html selected.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)
			args, err := cmdutil.ResolveClicks(args, clicksFile)
			if err != nil {
				return clierrors.WrapUserError(err, "cannot read clicks file", "Write one click per line, # starts a comment")
			}
			clicks, err := parseClicks(args)
			if err != nil {
				return err
			}

			doc, err := loadPage(ctx, clientFromContext(ctx), cfg.GetRedirectPath())
			if err != nil {
				return err
			}
			sel, err := replayClicks(cfg.GetRedirectPath(), doc, clicks)
			if err != nil {
				return err
			}

			if htmlOut != "" {
				html, err := doc.HTML()
				if err != nil {
					return fmt.Errorf("render page: %w", err)
				}
				if err := os.WriteFile(htmlOut, []byte(html), 0o644); err != nil {
					return fmt.Errorf("write page: %w", err)
				}
			}

			res := selectResult{Clicks: make([]string, 0, len(clicks)), Tables: summarizeTables(doc), Request: export.Build(doc, sel)}
			for _, c := range clicks {
				res.Clicks = append(res.Clicks, c.String())
			}
			return printerForContext(ctx).Print(ctx, res)
		},
	}
	cmd.Flags().StringVar(&clicksFile, "clicks-file", "", "Read more clicks from this file (- for stdin)")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Write the page with the selection applied to this file")
	return cmd
}
