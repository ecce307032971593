package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	"github.com/salmonumbrella/xmlsel/internal/cmdutil"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/export"
	"github.com/salmonumbrella/xmlsel/internal/logging"
	"github.com/salmonumbrella/xmlsel/internal/output"
	"github.com/salmonumbrella/xmlsel/internal/ui"
)

type exportResult struct {
	export.Outcome
	Page       *pageReport `json:"page,omitempty"`
	Downloaded string      `json:"downloaded,omitempty"`
}

func newExportCmd() *cobra.Command {
	var (
		noWait      bool
		downloadDir string
		clicksFile  string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export [clicks...]",
		Short: "Post the selected attributes to the Excel export",
		Long: `Load the main page, replay row clicks, and post the selected attributes
of every table to the export endpoint, as the page's "Create Excel" button
does. The attribute name is the first cell of each selected row; tables are
keyed by their name.

The server's verdict arrives as a flash message on the next page load: once
every request has finished the main page is loaded again, after the
configured redirect delay, and its flash messages are reported. Use
--no-wait to skip that.`,
		Example: `  xmlsel export tbl_0:0 +tbl_0:3 tbl_2:1
  xmlsel export tbl_0:1 --download ./out -o json`,
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

			client := clientFromContext(ctx)
			doc, err := loadPage(ctx, client, cfg.GetRedirectPath())
			if err != nil {
				return err
			}
			sel, err := replayClicks(cfg.GetRedirectPath(), doc, clicks)
			if err != nil {
				return err
			}

			var redirect *ajax.IdleRedirect
			var nav *ajax.PageNavigator
			if !noWait {
				redirect, nav = attachIdleRedirect(ctx, client)
				defer redirect.Stop()
			}

			coord := &export.Coordinator{
				Client:      client,
				Notifier:    notifierFromContext(ctx),
				URL:         cfg.GetExportPath(),
				PagePath:    cfg.GetRedirectPath(),
				SourceField: cfg.Page.SourceFieldID,
				Options:     pageOptions(cfg),
				Console:     logging.Console(),
			}

			req := export.Build(doc, sel)
			if req.Empty() && !output.QuietFromContext(ctx) {
				ui.FromContext(ctx).Warning("No rows selected; the server will not create a workbook")
			}

			r := coord.Run(ctx, req).Wait()
			res := exportResult{Outcome: r.Value}

			if r.OK() && downloadDir != "" {
				saved, err := downloadWorkbook(ctx, client, r.Value.Response, downloadDir)
				if err != nil {
					return err
				}
				res.Downloaded = saved
			}

			if redirect != nil {
				waitCtx, cancel := context.WithTimeout(ctx, cfg.GetRedirectDelay()+timeout)
				defer cancel()
				if err := redirect.Wait(waitCtx); err != nil {
					return fmt.Errorf("reload %s: %w", cfg.GetRedirectPath(), err)
				}
				res.Page = reportPage(cfg.GetRedirectPath(), nav.Current())
			}

			if err := printerForContext(ctx).Print(ctx, res); err != nil {
				return err
			}
			return r.Err()
		},
	}

	cmd.Flags().StringVar(&clicksFile, "clicks-file", "", "Read more clicks from this file (- for stdin)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not reload the main page after the export")
	cmd.Flags().StringVar(&downloadDir, "download", "", "Save the created workbook into this directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "How long to wait for the page reload")
	return cmd
}

// downloadWorkbook fetches the file named in the export reply.
func downloadWorkbook(ctx context.Context, client *ajax.Client, reply interface{}, dir string) (string, error) {
	m, _ := reply.(map[string]interface{})
	name, _ := m["file"].(string)
	if name == "" {
		return "", clierrors.NewUserError("no workbook was created", "Select at least one row with a known attribute")
	}
	name = path.Base(name)

	res := client.Untracked().Get(ctx, "/xmlparser/download/"+name)
	if !res.OK() {
		return "", res.Err()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, []byte(res.Value), 0o644); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return dest, nil
}
