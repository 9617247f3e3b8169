// Package config holds the application configuration and resolves it from
// command-line flags, LCSCALC_* environment variables, an optional TOML file
// and built-in defaults, in that order of priority.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/lcs"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "LCSCALC_"

// StrategyAll selects every registered strategy for a comparison run.
const StrategyAll = "all"

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// A and B are literal input sequences.
	A, B string
	// InputFile is a delimited record file holding the pair; Row selects the record.
	InputFile string
	Row       int
	Alphabet  string

	Strategy  string
	Workers   int
	Processes int
	TileWidth int
	Trace     string

	Timeout     time.Duration
	MemoryLimit string

	Verbose bool
	Details bool
	Quiet   bool
	ShowLCS bool
	Matrix  bool
	TUI     bool

	// OutputFile receives one appended record per run.
	OutputFile string

	LogLevel  string
	LogFormat string

	// ConfigFile is an optional TOML file with the same keys as the
	// environment overrides, in lower case.
	ConfigFile string
	// CalibrationProfile is the cached tuning profile written by
	// `lcscalc calibrate`. Empty selects the default location; "none"
	// disables it.
	CalibrationProfile string

	// Listen is the address of the HTTP API.
	Listen string

	// Rank and Peers describe this process's place in a TCP rank chain.
	Rank     int
	Peers    []string
	Compress bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() AppConfig {
	return AppConfig{
		Alphabet:  "dna",
		Strategy:  StrategyAll,
		Trace:     lcs.TraceTags.String(),
		Timeout:   5 * time.Minute,
		ShowLCS:   true,
		LogLevel:  "info",
		LogFormat: "text",
		Listen:    ":8080",
		Compress:  true,
	}
}

// BindFlags registers every configuration flag on fs, writing into cfg.
func BindFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVar(&cfg.A, "a", cfg.A, "first sequence")
	fs.StringVar(&cfg.B, "b", cfg.B, "second sequence")
	fs.StringVarP(&cfg.InputFile, "input", "i", cfg.InputFile, "delimited record file holding the pair (a,b or index,a,b)")
	fs.IntVar(&cfg.Row, "row", cfg.Row, "record of --input to read, counted from 0 after the header")
	fs.StringVar(&cfg.Alphabet, "alphabet", cfg.Alphabet, `accepted symbols: "dna", "any" or a literal set such as "ACGU"`)
	fs.StringVarP(&cfg.Strategy, "strategy", "s", cfg.Strategy, `fill strategy: "sequential", "wavefront", "distributed" or "all"`)
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "wavefront worker count (0 = number of CPUs)")
	fs.IntVarP(&cfg.Processes, "processes", "p", cfg.Processes, "distributed rank count (0 = adaptive)")
	fs.IntVar(&cfg.TileWidth, "tile-width", cfg.TileWidth, "columns per boundary message in the distributed fill (0 = adaptive)")
	fs.StringVar(&cfg.Trace, "trace", cfg.Trace, `trace storage: "tags", "lengths" or "none"`)
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "maximum run time")
	fs.StringVar(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "reject tables larger than this (e.g. 512MiB, 2GB)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "print the full subsequence even when long")
	fs.BoolVarP(&cfg.Details, "details", "d", cfg.Details, "show per-worker statistics")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "print only the length and the subsequence")
	fs.BoolVar(&cfg.ShowLCS, "show-lcs", cfg.ShowLCS, "print the reconstructed subsequence")
	fs.BoolVar(&cfg.Matrix, "matrix", cfg.Matrix, "dump the filled table (small inputs only)")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "interactive dashboard")
	fs.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "append one result record per run to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `"text" or "json"`)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "TOML configuration file")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", cfg.CalibrationProfile, `tuning profile path ("none" disables it)`)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address for serve")
	fs.IntVar(&cfg.Rank, "rank", cfg.Rank, "this process's rank in the TCP chain")
	fs.StringSliceVar(&cfg.Peers, "peers", cfg.Peers, "listen addresses of every rank, in rank order")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "compress large frames on TCP links")
}

// Resolve fills in every value not given on the command line from the
// environment, then from the config file, and validates the result.
func Resolve(cfg *AppConfig, fs *pflag.FlagSet) error {
	if cfg.ConfigFile == "" && !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", "")
	}
	if cfg.ConfigFile != "" {
		if err := applyFile(cfg, fs, cfg.ConfigFile); err != nil {
			return err
		}
	}
	if err := applyEnvOverrides(cfg, fs); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the configuration for inconsistent or out-of-range values.
func (c AppConfig) Validate() error {
	if c.Strategy != StrategyAll && !isStrategy(c.Strategy) {
		return apperrors.NewConfigError("unknown strategy %q (want sequential, wavefront, distributed or all)", c.Strategy)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("--workers must be >= 0, got %d", c.Workers)
	}
	if c.Processes < 0 {
		return apperrors.NewConfigError("--processes must be >= 0, got %d", c.Processes)
	}
	if c.TileWidth < 0 {
		return apperrors.NewConfigError("--tile-width must be >= 0, got %d", c.TileWidth)
	}
	if c.Row < 0 {
		return apperrors.NewConfigError("--row must be >= 0, got %d", c.Row)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	}
	if _, err := lcs.ParseTrace(c.Trace); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := ParseMemoryLimit(c.MemoryLimit); err != nil {
		return err
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("--quiet and --tui cannot be combined")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return apperrors.NewConfigError("--log-format must be text or json, got %q", c.LogFormat)
	}
	if len(c.Peers) > 0 && (c.Rank < 0 || c.Rank >= len(c.Peers)) {
		return apperrors.NewConfigError("--rank %d outside the %d listed peers", c.Rank, len(c.Peers))
	}
	return nil
}

// ValidateInput checks that exactly one input source is configured.
func (c AppConfig) ValidateInput() error {
	literal := c.A != "" || c.B != ""
	switch {
	case literal && c.InputFile != "":
		return apperrors.NewConfigError("give either --a/--b or --input, not both")
	case !literal && c.InputFile == "":
		return apperrors.NewConfigError("no input: give --a and --b, or --input")
	}
	return nil
}

// ToSolverOptions converts the configuration into solver options.
func (c AppConfig) ToSolverOptions() (lcs.Options, error) {
	trace, err := lcs.ParseTrace(c.Trace)
	if err != nil {
		return lcs.Options{}, err
	}
	limit, err := ParseMemoryLimit(c.MemoryLimit)
	if err != nil {
		return lcs.Options{}, err
	}
	return lcs.Options{
		Alphabet:    lcs.ParseAlphabet(c.Alphabet),
		Workers:     c.Workers,
		Processes:   c.Processes,
		TileWidth:   c.TileWidth,
		Trace:       trace,
		KeepTable:   c.Matrix,
		MemoryLimit: limit,
	}, nil
}

func isStrategy(name string) bool {
	switch name {
	case lcs.StrategySequential, lcs.StrategyWavefront, lcs.StrategyDistributed:
		return true
	}
	return false
}

// ParseMemoryLimit parses sizes such as "512MiB", "2GB", "1.5G" or a plain
// byte count. The empty string means no limit.
func ParseMemoryLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	units := []struct {
		suffix string
		mult   float64
	}{
		{"KIB", 1 << 10}, {"MIB", 1 << 20}, {"GIB", 1 << 30}, {"TIB", 1 << 40},
		{"KB", 1e3}, {"MB", 1e6}, {"GB", 1e9}, {"TB", 1e12},
		{"K", 1 << 10}, {"M", 1 << 20}, {"G", 1 << 30}, {"T", 1 << 40},
		{"B", 1},
	}
	upper := strings.ToUpper(s)
	mult := 1.0
	for _, u := range units {
		if strings.HasSuffix(upper, u.suffix) {
			upper = strings.TrimSpace(strings.TrimSuffix(upper, u.suffix))
			mult = u.mult
			break
		}
	}
	v, err := strconv.ParseFloat(upper, 64)
	if err != nil || v < 0 {
		return 0, apperrors.NewConfigError("invalid memory limit %q", s)
	}
	return uint64(v * mult), nil
}

// String renders the configuration for debug logs.
func (c AppConfig) String() string {
	return fmt.Sprintf("strategy=%s workers=%d processes=%d tile=%d trace=%s timeout=%s memory=%q",
		c.Strategy, c.Workers, c.Processes, c.TileWidth, c.Trace, c.Timeout, c.MemoryLimit)
}
