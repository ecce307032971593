package cmd

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/config"
	"github.com/salmonumbrella/xmlsel/internal/logging"
)

//go:embed help.txt
var rootHelpText string

func newRootCmd(app *App) *cobra.Command {
	// Global flags
	var (
		debugMode   bool
		queryFlag   string
		jqFlag      string
		fieldsFlag  string
		jsonPath    string
		errorFormat string
		logFormat   string
		colorFlag   string
		baseURL     string
		quietFlag   bool
		compactJSON bool
	)

	rootCmd := &cobra.Command{
		Use:   "xmlsel",
		Short: "Drive the XML parser page from the command line",
		Long: `xmlsel selects attribute rows on the XML parser page, posts the
selection to the Excel export endpoint and talks to the page's ajax endpoints.
It also ships the reference server those endpoints live on.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Error and usage output is handled centrally.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			logging.Setup(debugMode, app.Stderr, logging.ParseFormat(logFormat))

			// Load config file (skip for config commands so a broken file can be fixed)
			var cfg *config.Config
			if !isConfigCommand(cmd) {
				loaded, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = loaded
			} else {
				cfg = &config.Config{}
			}

			opts, err := parseGlobalOptions(cmd, cfg, app.Stdout, globalFlagInput{
				queryFlag:   queryFlag,
				jqFlag:      jqFlag,
				fieldsFlag:  fieldsFlag,
				jsonPath:    jsonPath,
				errorFormat: errorFormat,
				colorFlag:   colorFlag,
				baseURL:     baseURL,
				quietFlag:   quietFlag,
				compactJSON: compactJSON,
			})
			if err != nil {
				return err
			}
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			cmd.SetContext(buildRootContext(cmd.Context(), app, cfg, debugMode, opts))
			return nil
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("xmlsel %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text|json|table|yaml")
	// Shorthand: --json is equivalent to -o json
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Shorthand for --output json")
	_ = rootCmd.PersistentFlags().MarkHidden("json")
	rootCmd.PersistentFlags().StringVarP(&queryFlag, "query", "q", "", "JQ expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&jqFlag, "jq", "", "Alias for --query")
	_ = rootCmd.PersistentFlags().MarkHidden("jq")
	rootCmd.PersistentFlags().StringVar(&fieldsFlag, "fields", "", "Project fields (comma-separated paths, use key=path to rename)")
	rootCmd.PersistentFlags().StringVar(&jsonPath, "jsonpath", "", "Extract a value using JSONPath (e.g. $.request.Order)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output (shows HTTP requests/responses)")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format (text|json)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "Color mode (auto|always|never)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Server root (overrides XMLSEL_BASE_URL and base_url)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&compactJSON, "compact-json", false, "Output compact JSON (single-line) instead of pretty JSON")

	flagAlias(rootCmd.PersistentFlags(), "output", "out")
	flagAlias(rootCmd.PersistentFlags(), "fields", "fds")
	flagAlias(rootCmd.PersistentFlags(), "compact-json", "cj")
	flagAlias(rootCmd.PersistentFlags(), "base-url", "url")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAjaxCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newProcessCmd())

	installRootHelp(rootCmd)
	return rootCmd
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

func installRootHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), strings.TrimLeft(rootHelpText, "\n"))
	})
}
