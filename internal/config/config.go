package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// DefaultShell runs snippets whose language has no dedicated interpreter.
	// Empty means $SHELL, then "sh".
	DefaultShell string `json:"default_shell,omitempty"`

	// ConfirmRun asks "Run snippet? (y/N)" before `snip run` executes anything.
	// nil means the default (true). The dangerous-content gate is separate and always applies.
	ConfirmRun *bool `json:"confirm_run,omitempty"`

	// Editor is the command used by add/edit, e.g. "code --wait". Empty means $EDITOR, then "vi".
	Editor string `json:"editor,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.snip/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"default_shell",
	"confirm_run",
	"editor",
	"allowed_paths",
	"allow_unsafe_paths",
	"db_max_open_conns",
	"db_max_idle_conns",
	"disabled_tools",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	confirm := true
	return &Config{
		ConfirmRun: &confirm,
	}
}

// Shell returns the configured fallback shell, or "" to let the runner pick $SHELL/sh.
func (c *Config) Shell() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.DefaultShell)
}

// ShouldConfirmRun reports whether `snip run` asks before executing.
func (c *Config) ShouldConfirmRun() bool {
	if c == nil || c.ConfirmRun == nil {
		return true
	}
	return *c.ConfirmRun
}

// EditorCommand returns the editor command line with environment fallbacks applied.
func (c *Config) EditorCommand() string {
	if c != nil && strings.TrimSpace(c.Editor) != "" {
		return c.Editor
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// BaseDir returns the snip data directory: $SNIP_HOME, else ~/.snip.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("SNIP_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".snip"), nil
}

// ExportsDir returns the default import/export directory under BaseDir.
func ExportsDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "exports"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.snip.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// Save writes cfg to baseDir/config.json with owner-only permissions.
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, "config.json"), append(data, '\n'), 0600)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DefaultShell = overlay.DefaultShell
	if result.DefaultShell == "" {
		result.DefaultShell = base.DefaultShell
	}

	result.Editor = overlay.Editor
	if result.Editor == "" {
		result.Editor = base.Editor
	}

	result.ConfirmRun = overlay.ConfirmRun
	if result.ConfirmRun == nil {
		result.ConfirmRun = base.ConfirmRun
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Get returns the display value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_shell":
		return c.DefaultShell, nil
	case "confirm_run":
		return strconv.FormatBool(c.ShouldConfirmRun()), nil
	case "editor":
		return c.Editor, nil
	case "allowed_paths":
		return strings.Join(c.AllowedPaths, ","), nil
	case "allow_unsafe_paths":
		return strconv.FormatBool(c.AllowUnsafePaths), nil
	case "db_max_open_conns":
		return strconv.Itoa(c.DBMaxOpenConns), nil
	case "db_max_idle_conns":
		return strconv.Itoa(c.DBMaxIdleConns), nil
	case "disabled_tools":
		return strings.Join(c.DisabledTools, ","), nil
	}
	return "", unknownKey(key)
}

// Set parses value and assigns it to the configuration key.
// List keys take a comma-separated value; an empty value clears them.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_shell":
		c.DefaultShell = strings.TrimSpace(value)
	case "editor":
		c.Editor = strings.TrimSpace(value)
	case "confirm_run":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("confirm_run must be true or false: %q", value)
		}
		c.ConfirmRun = &b
	case "allow_unsafe_paths":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("allow_unsafe_paths must be true or false: %q", value)
		}
		c.AllowUnsafePaths = b
	case "db_max_open_conns", "db_max_idle_conns":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %q", key, value)
		}
		if key == "db_max_open_conns" {
			c.DBMaxOpenConns = n
		} else {
			c.DBMaxIdleConns = n
		}
	case "allowed_paths":
		c.AllowedPaths = mergeStringSlice(strings.Split(value, ","), nil)
	case "disabled_tools":
		c.DisabledTools = mergeStringSlice(strings.Split(value, ","), nil)
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return fmt.Errorf("config key %q is not supported", key)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
