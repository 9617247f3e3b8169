// This file implements the hardware-dependent candidate sets a calibration
// run benchmarks.

package calibration

import "runtime"

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Candidate Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateWorkerCounts returns the wavefront worker counts to benchmark for
// the number of available CPU cores. 1 is always tested as the baseline.
func GenerateWorkerCounts() []int {
	numCPU := runtime.NumCPU()
	counts := []int{1}
	for w := 2; w < numCPU; w *= 2 {
		counts = append(counts, w)
	}
	if numCPU > 1 {
		counts = append(counts, numCPU)
	}
	return counts
}

// GenerateQuickWorkerCounts returns a reduced set for a quick calibration:
// the baseline, half the cores and all of them.
func GenerateQuickWorkerCounts() []int {
	numCPU := runtime.NumCPU()
	switch {
	case numCPU == 1:
		return []int{1}
	case numCPU <= 3:
		return []int{1, numCPU}
	}
	return []int{1, numCPU / 2, numCPU}
}

// GenerateTilesPerRank returns the tile counts per rank to benchmark for the
// distributed fill. More tiles shorten the pipeline start-up but send more
// boundary messages.
func GenerateTilesPerRank(quick bool) []int {
	if quick {
		return []int{1, 4, 16}
	}
	return []int{1, 2, 4, 8, 16, 32}
}

// TileWidthFor converts a tiles-per-rank setting into a tile width for n
// columns split across processes ranks.
func TileWidthFor(n, processes, tilesPerRank int) int {
	if processes < 1 {
		processes = 1
	}
	if tilesPerRank < 1 {
		tilesPerRank = 1
	}
	per := tilesPerRank * processes
	return max((n+per-1)/per, 1)
}
