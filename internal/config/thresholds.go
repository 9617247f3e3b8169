package config

import "runtime"

// Resolution chain for the parallelism settings (highest priority first):
//   1. CLI flags (--workers, --processes, --tile-width)
//   2. Environment variables (LCSCALC_WORKERS, etc.)
//   3. Config file keys (workers, processes, tile_width)
//   4. Cached calibration profile (see internal/calibration)
//   5. Adaptive hardware estimation (this file)
//   6. Static defaults in lcs/options.go

// ApplyAdaptiveDefaults fills the parallelism settings left at zero from the
// hardware and the problem size, preserving any explicit override.
//
// Parameters:
//   - cfg: The resolved configuration.
//   - m, n: The sequence lengths; the table has (m+1)*(n+1) cells.
//
// Returns:
//   - AppConfig: The configuration with adaptive values applied.
func ApplyAdaptiveDefaults(cfg AppConfig, m, n int) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers(m, n)
	}
	if cfg.Processes == 0 {
		cfg.Processes = EstimateOptimalProcesses(m)
	}
	if cfg.TileWidth == 0 {
		cfg.TileWidth = EstimateOptimalTileWidth(n, cfg.Processes)
	}
	return cfg
}

// EstimateOptimalWorkers picks a wavefront worker count. Tiny tables do not
// amortise the per-diagonal barrier, so they get fewer workers.
func EstimateOptimalWorkers(m, n int) int {
	numCPU := runtime.NumCPU()
	cells := int64(m) * int64(n)

	switch {
	case numCPU == 1:
		return 1
	case cells < 64*64:
		return 1 // Barrier cost dominates
	case cells < 512*512:
		return min(numCPU, 2)
	case cells < 4096*4096:
		return min(numCPU, 8)
	default:
		return numCPU
	}
}

// EstimateOptimalProcesses picks a rank count for the in-process
// distributed fill. Each rank should own at least a few dozen rows.
func EstimateOptimalProcesses(m int) int {
	numCPU := runtime.NumCPU()
	const minRowsPerRank = 32

	p := min(numCPU, 4)
	if byRows := m / minRowsPerRank; byRows < p {
		p = byRows
	}
	return max(p, 1)
}

// EstimateOptimalTileWidth sizes boundary messages so that the pipeline has
// roughly four tiles in flight per rank, without going below 64 columns.
func EstimateOptimalTileWidth(n, processes int) int {
	if processes <= 1 {
		return max(n, 1)
	}
	return max((n+4*processes-1)/(4*processes), 64)
}
