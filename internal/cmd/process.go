package cmd

import (
	"github.com/spf13/cobra"

	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/export"
	"github.com/salmonumbrella/xmlsel/internal/logging"
)

type processResult struct {
	Source string         `json:"source"`
	Modal  bool           `json:"modal"`
	Page   *pageReport    `json:"page"`
	Tables []tableSummary `json:"tables"`
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process [source-file]",
		Short: "Submit a source file for parsing",
		Long: `Fill the page's source file field and submit its main form, as the
"Process file" button does. The parsing dialog is shown and the form is
submitted even when no file is named; the server rejects an empty submission.

The tables of the page the server answers with are listed.`,
		Example: `  xmlsel process orders.xml`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)
			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			client := clientFromContext(ctx)
			doc, err := loadPage(ctx, client, cfg.GetRedirectPath())
			if err != nil {
				return err
			}

			field := cfg.Page.SourceFieldID
			if field == "" {
				field = export.SourceFieldID
			}
			if !doc.SetDisplay(field, source) {
				return clierrors.FieldNotFoundError(cfg.GetRedirectPath(), field, "page.source_field_id")
			}

			notifier := notifierFromContext(ctx)
			coord := &export.Coordinator{
				Client:      client,
				Notifier:    notifier,
				PagePath:    cfg.GetRedirectPath(),
				SourceField: field,
				Options:     pageOptions(cfg),
				Console:     logging.Console(),
			}
			next, err := coord.ProcessFile(ctx, doc)
			if err != nil {
				return err
			}

			return printerForContext(ctx).Print(ctx, processResult{
				Source: source,
				Modal:  notifier.State().Visible,
				Page:   reportPage(cfg.GetRedirectPath(), next),
				Tables: summarizeTables(next),
			})
		},
	}
}
