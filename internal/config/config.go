package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/xmlsel/internal/validate"
)

const (
	// EnvBaseURL overrides base_url.
	EnvBaseURL = "XMLSEL_BASE_URL"
	// EnvOutput overrides output.
	EnvOutput  = "XMLSEL_OUTPUT"

	DefaultBaseURL       = "http://localhost:5000"
	DefaultExportPath    = "/xmlparser/createexcel"
	DefaultRedirectPath  = "/xmlparser/main"
	DefaultRedirectDelay = 500 * time.Millisecond
	DefaultServerAddr    = "localhost:5000"
)

// Config represents the CLI configuration
type Config struct {
	// Server root the page scripts talk to
	BaseURL string `yaml:"base_url,omitempty"`

	// Export endpoint, relative to base_url
	ExportPath string `yaml:"export_path,omitempty"`

	// Page navigated to once every request has finished
	RedirectPath string `yaml:"redirect_path,omitempty"`

	// Delay between the idle signal and the navigation
	RedirectDelay time.Duration `yaml:"redirect_delay,omitempty"`

	// Default output format (text, json, table, yaml)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	Page   PageConfig   `yaml:"page,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

// PageConfig describes the markup of the main page.
type PageConfig struct {
	TableSelector string `yaml:"table_selector,omitempty"`
	RowSelector   string `yaml:"row_selector,omitempty"`
	SelectedClass string `yaml:"selected_class,omitempty"`
	DisplayID     string `yaml:"display_id,omitempty"`
	SourceFieldID string `yaml:"source_field_id,omitempty"`
}

// ServerConfig configures `xmlsel serve`.
type ServerConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	Catalog    string `yaml:"catalog,omitempty"`
	ResultsDir string `yaml:"results_dir,omitempty"`
}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns ~/.config/xmlsel/config.yaml
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "xmlsel", "config.yaml"), nil
}

// DefaultConfigPath returns ~/.config/xmlsel/config.yaml
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path
func (c *Config) SaveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// GetBaseURL returns the server root: XMLSEL_BASE_URL, then the file, then
// the default.
func (c *Config) GetBaseURL() string {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		return v
	}
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// GetOutput returns the effective output format: XMLSEL_OUTPUT, then the
// file, or empty.
func (c *Config) GetOutput() string {
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		return v
	}
	return c.Output
}

// GetColor returns the effective color mode (config default or empty)
func (c *Config) GetColor() string {
	return c.Color
}

// GetExportPath returns the export endpoint path.
func (c *Config) GetExportPath() string {
	if c.ExportPath != "" {
		return c.ExportPath
	}
	return DefaultExportPath
}

// GetRedirectPath returns the page navigated to after requests go idle.
func (c *Config) GetRedirectPath() string {
	if c.RedirectPath != "" {
		return c.RedirectPath
	}
	return DefaultRedirectPath
}

// GetRedirectDelay returns the idle navigation delay.
func (c *Config) GetRedirectDelay() time.Duration {
	if c.RedirectDelay > 0 {
		return c.RedirectDelay
	}
	return DefaultRedirectDelay
}

// GetServerAddr returns the listen address of `xmlsel serve`.
func (c *Config) GetServerAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultServerAddr
}

var keys = []string{
	"base_url",
	"color",
	"export_path",
	"output",
	"page.display_id",
	"page.row_selector",
	"page.selected_class",
	"page.source_field_id",
	"page.table_selector",
	"redirect_delay",
	"redirect_path",
	"server.addr",
	"server.catalog",
	"server.results_dir",
}

// Keys returns the settable configuration keys, sorted.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Setting is one key with its effective value and where that value came
// from: "env", "file" or "default".
type Setting struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

var envKeys = map[string]string{
	"base_url": EnvBaseURL,
	"output":   EnvOutput,
}

// Get returns the effective setting for key.
func (c *Config) Get(key string) (Setting, error) {
	if !knownKey(key) {
		return Setting{}, fmt.Errorf("unknown config key %q", key)
	}
	if name, ok := envKeys[key]; ok {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return Setting{Key: key, Value: v, Source: "env"}, nil
		}
	}
	if v := c.fileValue(key); v != "" {
		return Setting{Key: key, Value: v, Source: "file"}, nil
	}
	return Setting{Key: key, Value: defaultValue(key), Source: "default"}, nil
}

// Settings returns the effective setting of every key, in Keys order.
func (c *Config) Settings() []Setting {
	out := make([]Setting, 0, len(keys))
	for _, k := range keys {
		s, _ := c.Get(k)
		out = append(out, s)
	}
	return out
}

func knownKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (c *Config) fileValue(key string) string {
	switch key {
	case "base_url":
		return c.BaseURL
	case "color":
		return c.Color
	case "export_path":
		return c.ExportPath
	case "output":
		return c.Output
	case "page.display_id":
		return c.Page.DisplayID
	case "page.row_selector":
		return c.Page.RowSelector
	case "page.selected_class":
		return c.Page.SelectedClass
	case "page.source_field_id":
		return c.Page.SourceFieldID
	case "page.table_selector":
		return c.Page.TableSelector
	case "redirect_delay":
		if c.RedirectDelay > 0 {
			return c.RedirectDelay.String()
		}
	case "redirect_path":
		return c.RedirectPath
	case "server.addr":
		return c.Server.Addr
	case "server.catalog":
		return c.Server.Catalog
	case "server.results_dir":
		return c.Server.ResultsDir
	}
	return ""
}

// defaultValue is the built-in value of key. Page selectors default inside
// the page parser and report empty here.
func defaultValue(key string) string {
	switch key {
	case "base_url":
		return DefaultBaseURL
	case "export_path":
		return DefaultExportPath
	case "redirect_path":
		return DefaultRedirectPath
	case "redirect_delay":
		return DefaultRedirectDelay.String()
	case "server.addr":
		return DefaultServerAddr
	}
	return ""
}

// Set validates value and assigns it by dotted key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "base_url":
		if err := validate.BaseURL(key, value); err != nil {
			return err
		}
		c.BaseURL = value
	case "export_path":
		if err := validate.Path(key, value); err != nil {
			return err
		}
		c.ExportPath = value
	case "redirect_path":
		if err := validate.Path(key, value); err != nil {
			return err
		}
		c.RedirectPath = value
	case "redirect_delay":
		d, err := validate.Duration(key, value)
		if err != nil {
			return err
		}
		c.RedirectDelay = d
	case "output":
		c.Output = value
	case "color":
		c.Color = value
	case "page.table_selector":
		c.Page.TableSelector = value
	case "page.row_selector":
		c.Page.RowSelector = value
	case "page.selected_class":
		c.Page.SelectedClass = value
	case "page.display_id", "page.source_field_id":
		if err := validate.ElementID(key, value); err != nil {
			return err
		}
		if key == "page.display_id" {
			c.Page.DisplayID = value
		} else {
			c.Page.SourceFieldID = value
		}
	case "server.addr":
		if err := validate.NonEmpty(key, value); err != nil {
			return err
		}
		c.Server.Addr = value
	case "server.catalog":
		c.Server.Catalog = value
	case "server.results_dir":
		c.Server.ResultsDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
