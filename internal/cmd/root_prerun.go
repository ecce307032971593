package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/xmlsel/internal/config"
	"github.com/salmonumbrella/xmlsel/internal/debug"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/output"
	"github.com/salmonumbrella/xmlsel/internal/ui"
	"github.com/salmonumbrella/xmlsel/internal/validate"
)

type globalFlagInput struct {
	queryFlag   string
	jqFlag      string
	fieldsFlag  string
	jsonPath    string
	errorFormat string
	colorFlag   string
	baseURL     string
	quietFlag   bool
	compactJSON bool
}

type globalOptions struct {
	format      output.Format
	query       string
	fieldsRaw   string
	jsonPathRaw string
	errorFormat string
	color       ui.ColorMode
	baseURL     string
	quiet       bool
	compactJSON bool

	queryFlagSet bool
	jqFlagSet    bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		quiet:       flags.quietFlag,
		compactJSON: flags.compactJSON,
		errorFormat: flags.errorFormat,

		queryFlagSet: strings.TrimSpace(flags.queryFlag) != "",
		jqFlagSet:    strings.TrimSpace(flags.jqFlag) != "",
	}

	outputFlagSet := commandFlagChanged(cmd, "output") || commandFlagChanged(cmd, "out")
	formatStr, _ := cmd.Flags().GetString("output")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	switch {
	case jsonFlag:
		formatStr = string(output.FormatJSON)
	case !outputFlagSet && cfg.GetOutput() != "":
		formatStr = cfg.GetOutput()
	case !outputFlagSet && !ui.IsTerminal(stdout):
		formatStr = string(output.FormatJSON)
	}

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, clierrors.WrapUserError(err, fmt.Sprintf("invalid output format %q", formatStr), "Use one of: text, json, table, yaml")
	}
	opts.format = format

	// Machine-readable output on a pipe stays free of modal panels.
	if !cmd.Flags().Changed("quiet") && !ui.IsTerminal(stdout) {
		switch opts.format {
		case output.FormatJSON, output.FormatYAML:
			opts.quiet = true
		}
	}

	colorStr := flags.colorFlag
	if strings.TrimSpace(colorStr) == "" {
		colorStr = cfg.GetColor()
	}
	color, err := ui.ParseColorMode(colorStr)
	if err != nil {
		return globalOptions{}, clierrors.WrapUserError(err, fmt.Sprintf("invalid color mode %q", colorStr), "Use one of: auto, always, never")
	}
	opts.color = color

	opts.query = flags.queryFlag
	if opts.query == "" {
		opts.query = flags.jqFlag
	}
	opts.fieldsRaw = strings.TrimSpace(flags.fieldsFlag)
	opts.jsonPathRaw = strings.TrimSpace(flags.jsonPath)

	opts.baseURL = strings.TrimSpace(flags.baseURL)
	if opts.baseURL != "" {
		if err := validate.BaseURL("--base-url", opts.baseURL); err != nil {
			return globalOptions{}, clierrors.WrapUserError(err, "invalid --base-url value", "Example: --base-url http://localhost:5000")
		}
	} else {
		opts.baseURL = cfg.GetBaseURL()
	}
	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.jqFlagSet && opts.queryFlagSet {
		return errOnlyOne("--query", "--jq")
	}
	if opts.fieldsRaw != "" {
		if err := output.ValidateFields(opts.fieldsRaw); err != nil {
			return clierrors.WrapUserError(err, "invalid --fields value", "Example: --fields id,rows")
		}
	}
	if opts.query != "" {
		if err := output.ValidateQuery(opts.query); err != nil {
			return err
		}
		if opts.fieldsRaw != "" || opts.jsonPathRaw != "" {
			return errOnlyOne("--query/--jq", "--fields or --jsonpath")
		}
	}
	if opts.fieldsRaw != "" && opts.jsonPathRaw != "" {
		return errOnlyOne("--fields", "--jsonpath")
	}
	return validateErrorFormat(opts.errorFormat)
}

func buildRootContext(ctx context.Context, app *App, cfg *config.Config, debugMode bool, opts globalOptions) context.Context {
	ctx = withIO(ctx, app.Stdout, app.Stderr)
	ctx = output.WithFormat(ctx, opts.format)
	ctx = output.WithQuery(ctx, opts.query)
	ctx = output.WithFields(ctx, opts.fieldsRaw)
	ctx = output.WithJSONPath(ctx, opts.jsonPathRaw)
	ctx = output.WithCompactJSON(ctx, opts.compactJSON)
	ctx = output.WithQuiet(ctx, opts.quiet)
	ctx = debug.WithDebug(ctx, debugMode)
	ctx = WithConfig(ctx, cfg)
	ctx = WithBaseURL(ctx, opts.baseURL)
	ctx = WithErrorFormat(ctx, opts.errorFormat)
	ctx = ui.WithUI(ctx, ui.NewWithWriter(opts.color, app.Stderr))
	return ctx
}

func errOnlyOne(left, right string) error {
	return clierrors.NewUserError(fmt.Sprintf("use only one of %s or %s", left, right), "")
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
		if flag := current.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}
