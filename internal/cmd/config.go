package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/xmlsel/internal/config"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/output"
	"github.com/salmonumbrella/xmlsel/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    `Manage the xmlsel configuration file at ~/.config/xmlsel/config.yaml`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

// loadConfigFile loads the file for config subcommands, which skip the
// root's config loading so a broken file can still be inspected and fixed.
func loadConfigFile() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func unknownKeyError(err error) error {
	return clierrors.WrapUserError(err, "unknown config key", "Supported keys: "+strings.Join(config.Keys(), ", "))
}

func newConfigShowCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Print the configuration file. With --effective every key is listed with
the value commands use and whether it comes from the environment, the file
or the built-in default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := stdoutFromContext(ctx)
			cfg, err := loadConfigFile()
			if err != nil {
				return err
			}

			if effective {
				return printerForContext(ctx).Print(ctx, cfg.Settings())
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format config: %w", err)
			}
			if len(data) == 0 || string(data) == "{}\n" {
				path, _ := config.DefaultConfigPath()
				_, _ = fmt.Fprintf(out, "No configuration file found at %s\n", path)
				_, _ = fmt.Fprintln(out, "\nTo create a config file, use:")
				_, _ = fmt.Fprintln(out, "  xmlsel config set base_url http://localhost:5000")
				return nil
			}
			_, _ = fmt.Fprint(out, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "List every key with its effective value and source")
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfigFile()
			if err != nil {
				return err
			}
			s, err := cfg.Get(args[0])
			if err != nil {
				return unknownKeyError(err)
			}
			if output.FormatFromContext(ctx) == output.FormatText {
				_, _ = fmt.Fprintln(stdoutFromContext(ctx), s.Value)
				return nil
			}
			return printerForContext(ctx).Print(ctx, s)
		},
	}
}

// normalizeConfigValue checks the keys whose values are shared with global
// flags, and returns the spelling to store.
func normalizeConfigValue(key, value string) (string, error) {
	switch key {
	case "output":
		format, err := output.ParseFormat(value)
		if err != nil {
			return "", clierrors.NewUserError(fmt.Sprintf("invalid output format %q", value), "Use one of: text, json, table, yaml")
		}
		return string(format), nil
	case "color":
		if _, err := ui.ParseColorMode(value); err != nil || strings.TrimSpace(value) == "" {
			return "", clierrors.NewUserError(fmt.Sprintf("invalid color mode %q", value), "Use one of: auto, always, never")
		}
		return strings.ToLower(strings.TrimSpace(value)), nil
	}
	return value, nil
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`Set a configuration value in ~/.config/xmlsel/config.yaml

Supported keys:
  %s

Examples:
  xmlsel config set base_url http://parser.internal:5000
  xmlsel config set output json
  xmlsel config set redirect_delay 1s
  xmlsel config set page.selected_class picked`, strings.Join(config.Keys(), "\n  ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := normalizeConfigValue(key, args[1])
			if err != nil {
				return err
			}

			cfg, err := loadConfigFile()
			if err != nil {
				return err
			}
			if err := cfg.Set(key, value); err != nil {
				return clierrors.WrapUserError(err, "cannot set config value", "Supported keys: "+strings.Join(config.Keys(), ", "))
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.DefaultConfigPath()
			_, _ = fmt.Fprintf(stdoutFromContext(cmd.Context()), "Set %s = %s in %s\n", key, value, path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			_, _ = fmt.Fprintln(out, path)
			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintln(out, "(file exists)")
			} else if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(out, "(file does not exist)")
			}
			return nil
		},
	}
}
