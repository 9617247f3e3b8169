package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/lcscalc/internal/config"
)

// CurrentProfileVersion is bumped whenever the profile layout changes.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the file name of the cached profile in the
// user's home directory.
const DefaultProfileFileName = ".lcscalc_calibration.json"

// DisabledProfile as a profile path turns profile loading off.
const DisabledProfile = "none"

// DefaultMaxAge is how long a profile is trusted.
const DefaultMaxAge = 30 * 24 * time.Hour

// CalibrationProfile records the tuning measured on one machine.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	// Hardware fingerprint; a profile is ignored on a different machine.
	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	OptimalWorkers      int `json:"optimal_workers"`
	OptimalProcesses    int `json:"optimal_processes"`
	OptimalTilesPerRank int `json:"optimal_tiles_per_rank"`

	// CalibrationSize is the sequence length benchmarked. Tables much
	// smaller than CalibrationSize² keep the adaptive estimates.
	CalibrationSize int    `json:"calibration_size"`
	CalibrationTime string `json:"calibration_time"`
}

// NewProfile returns an empty profile stamped with the current hardware.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
	}
}

// IsValid reports whether the profile was produced on matching hardware by
// this profile version.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63)
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration profile v%d (%s/%s, %d CPUs, %s): workers=%d processes=%d tiles/rank=%d, measured at length %d in %s",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU, p.CalibratedAt.Format(time.DateTime),
		p.OptimalWorkers, p.OptimalProcesses, p.OptimalTilesPerRank, p.CalibrationSize, p.CalibrationTime)
}

// SaveProfile writes the profile as JSON, creating parent directories.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path. When it is missing,
// unreadable, or from other hardware, it returns a fresh profile and false.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns ~/.lcscalc_calibration.json, or the file
// name alone when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// ProfilePath resolves cfg.CalibrationProfile. It returns "" when profiles
// are disabled.
func ProfilePath(cfg config.AppConfig) string {
	switch cfg.CalibrationProfile {
	case DisabledProfile:
		return ""
	case "":
		return GetDefaultProfilePath()
	}
	return cfg.CalibrationProfile
}

// LoadCachedCalibration fills the parallelism settings left at zero in cfg
// from a valid, fresh profile, for an m x n table. It reports whether the
// profile was applied.
func LoadCachedCalibration(cfg config.AppConfig, m, n int) (config.AppConfig, bool) {
	path := ProfilePath(cfg)
	if path == "" {
		return cfg, false
	}
	p, loaded := LoadOrCreateProfile(path)
	if !loaded || p.IsStale(DefaultMaxAge) {
		return cfg, false
	}
	return ApplyProfile(cfg, p, m, n)
}

// ApplyProfile applies p to cfg for an m x n table. Tables under a quarter
// of the calibrated size keep the adaptive estimates, which already favour
// few workers on small inputs.
func ApplyProfile(cfg config.AppConfig, p *CalibrationProfile, m, n int) (config.AppConfig, bool) {
	size := int64(p.CalibrationSize)
	if int64(m)*int64(n)*4 < size*size {
		return cfg, false
	}
	applied := false
	if cfg.Workers == 0 && p.OptimalWorkers > 0 {
		cfg.Workers = p.OptimalWorkers
		applied = true
	}
	if cfg.Processes == 0 && p.OptimalProcesses > 0 {
		cfg.Processes = min(p.OptimalProcesses, max(m, 1))
		applied = true
	}
	if cfg.TileWidth == 0 && p.OptimalTilesPerRank > 0 && cfg.Processes > 0 {
		cfg.TileWidth = TileWidthFor(n, cfg.Processes, p.OptimalTilesPerRank)
		applied = true
	}
	return cfg, applied
}
