package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/output"
	"github.com/salmonumbrella/xmlsel/internal/server"
	"github.com/salmonumbrella/xmlsel/internal/ui"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		catalog    string
		resultsDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference XML parser server",
		Long: `Run the server the page scripts talk to: the main page with one table
per document type, the /ajaxapi and /ajaxapi2 endpoints and the Excel export.
Document types and sample values come from a YAML catalog; without one the
built-in sample catalog is used.

Example catalog:
  root: orders
  types:
    - name: Order
      attributes:
        - tag: OrderID
          values: ["1001", "1002"]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)

			if addr == "" {
				addr = cfg.GetServerAddr()
			}
			if catalog == "" {
				catalog = cfg.Server.Catalog
			}
			if resultsDir == "" {
				resultsDir = cfg.Server.ResultsDir
			}

			cat, err := server.LoadCatalog(catalog)
			if err != nil {
				return clierrors.WrapUserError(err, "cannot load catalog", "Check --catalog or server.catalog in the config file")
			}

			srv, err := server.New(server.Config{
				Addr:       addr,
				Catalog:    cat,
				ResultsDir: resultsDir,
				Logger:     slog.Default(),
			})
			if err != nil {
				return err
			}

			if !output.QuietFromContext(ctx) {
				ui.FromContext(ctx).Info("Serving %d document types on http://%s (Ctrl+C to stop)", len(cat.Types), addr)
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default localhost:5000)")
	cmd.Flags().StringVar(&catalog, "catalog", "", "YAML catalog of document types")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory workbooks are written to")
	return cmd
}
