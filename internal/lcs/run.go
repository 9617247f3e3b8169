package lcs

import "context"

// RunSequential solves pair with the sequential strategy and default options.
func RunSequential(ctx context.Context, pair Pair) (*Result, error) {
	return NewSequential().Solve(ctx, nil, 0, pair, Options{})
}

// RunParallel solves pair with the wavefront strategy on workers goroutines.
func RunParallel(ctx context.Context, pair Pair, workers int) (*Result, error) {
	return NewWavefront().Solve(ctx, nil, 0, pair, Options{Workers: workers})
}

// RunDistributed solves pair with the row-band strategy on processes ranks.
func RunDistributed(ctx context.Context, pair Pair, processes int) (*Result, error) {
	return NewDistributed().Solve(ctx, nil, 0, pair, Options{Processes: processes})
}
