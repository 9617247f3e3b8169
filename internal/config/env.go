// This file contains the environment variable and config file overrides.

package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	apperrors "github.com/agbru/lcscalc/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *pflag.FlagSet, name string) bool {
	if fs == nil {
		return false
	}
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// override declares a single environment variable or config file override.
// Each entry maps a key (LCSCALC_<key> in the environment, lower-case <key>
// in the config file) to the CLI flag it corresponds to and a function that
// applies the raw value.
type override struct {
	key   string
	flag  string
	apply func(*AppConfig, string) error
}

func intValue(field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func stringValue(field func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		*field(c) = v
		return nil
	}
}

// overrides is the declarative table of all overrides, grouped as numeric,
// duration, string and boolean.
var overrides = []override{
	// Numeric overrides
	{"WORKERS", "workers", intValue(func(c *AppConfig) *int { return &c.Workers })},
	{"PROCESSES", "processes", intValue(func(c *AppConfig) *int { return &c.Processes })},
	{"TILE_WIDTH", "tile-width", intValue(func(c *AppConfig) *int { return &c.TileWidth })},
	{"ROW", "row", intValue(func(c *AppConfig) *int { return &c.Row })},
	{"RANK", "rank", intValue(func(c *AppConfig) *int { return &c.Rank })},

	// Duration overrides
	{"TIMEOUT", "timeout", func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Timeout = parsed
		return nil
	}},

	// String overrides
	{"A", "a", stringValue(func(c *AppConfig) *string { return &c.A })},
	{"B", "b", stringValue(func(c *AppConfig) *string { return &c.B })},
	{"INPUT", "input", stringValue(func(c *AppConfig) *string { return &c.InputFile })},
	{"ALPHABET", "alphabet", stringValue(func(c *AppConfig) *string { return &c.Alphabet })},
	{"STRATEGY", "strategy", stringValue(func(c *AppConfig) *string { return &c.Strategy })},
	{"TRACE", "trace", stringValue(func(c *AppConfig) *string { return &c.Trace })},
	{"MEMORY_LIMIT", "memory-limit", stringValue(func(c *AppConfig) *string { return &c.MemoryLimit })},
	{"OUTPUT", "output", stringValue(func(c *AppConfig) *string { return &c.OutputFile })},
	{"LOG_LEVEL", "log-level", stringValue(func(c *AppConfig) *string { return &c.LogLevel })},
	{"LOG_FORMAT", "log-format", stringValue(func(c *AppConfig) *string { return &c.LogFormat })},
	{"CALIBRATION_PROFILE", "calibration-profile", stringValue(func(c *AppConfig) *string { return &c.CalibrationProfile })},
	{"LISTEN", "listen", stringValue(func(c *AppConfig) *string { return &c.Listen })},
	{"PEERS", "peers", func(c *AppConfig, v string) error {
		c.Peers = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Peers = append(c.Peers, p)
			}
		}
		return nil
	}},

	// Boolean overrides
	{"VERBOSE", "verbose", boolValue(func(c *AppConfig) *bool { return &c.Verbose })},
	{"DETAILS", "details", boolValue(func(c *AppConfig) *bool { return &c.Details })},
	{"QUIET", "quiet", boolValue(func(c *AppConfig) *bool { return &c.Quiet })},
	{"SHOW_LCS", "show-lcs", boolValue(func(c *AppConfig) *bool { return &c.ShowLCS })},
	{"MATRIX", "matrix", boolValue(func(c *AppConfig) *bool { return &c.Matrix })},
	{"TUI", "tui", boolValue(func(c *AppConfig) *bool { return &c.TUI })},
	{"COMPRESS", "compress", boolValue(func(c *AppConfig) *bool { return &c.Compress })},
}

func boolValue(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, ok := parseBool(v)
		if !ok {
			return fmt.Errorf("not a boolean: %q", v)
		}
		*field(c) = parsed
		return nil
	}
}

// parseBool accepts "true", "1", "yes" as true and "false", "0", "no" as
// false (case-insensitive).
func parseBool(val string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > File > Defaults.
func applyEnvOverrides(cfg *AppConfig, fs *pflag.FlagSet) error {
	for _, o := range overrides {
		if isFlagSet(fs, o.flag) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.key); val != "" {
			if err := o.apply(cfg, val); err != nil {
				return apperrors.NewConfigError("invalid %s%s: %v", EnvPrefix, o.key, err)
			}
		}
	}
	return nil
}

// applyFile decodes a TOML file and applies each known key for flags not set
// on the command line. Unknown keys are rejected so typos do not go unnoticed.
func applyFile(cfg *AppConfig, fs *pflag.FlagSet, path string) error {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return apperrors.NewConfigError("reading config %s: %v", path, err)
	}
	known := make(map[string]override, len(overrides))
	for _, o := range overrides {
		known[strings.ToLower(o.key)] = o
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o, ok := known[k]
		if !ok {
			return apperrors.NewConfigError("config %s: unknown key %q", path, k)
		}
		if isFlagSetAny(fs, o.flag) {
			continue
		}
		if err := o.apply(cfg, tomlString(raw[k])); err != nil {
			return apperrors.NewConfigError("config %s: key %q: %v", path, k, err)
		}
	}
	return nil
}

// tomlString renders a decoded TOML value in the textual form the override
// table parses. Arrays become comma-separated lists.
func tomlString(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
