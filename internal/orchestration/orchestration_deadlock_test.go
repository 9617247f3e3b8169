package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/progress"
)

// stubSolver simulates various solver behaviors for deadlock testing.
type stubSolver struct {
	name     string
	behavior string // "instant", "slow", "error", "progress_flood"
	delay    time.Duration
}

func (m *stubSolver) Solve(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, pair lcs.Pair, opts lcs.Options) (*lcs.Result, error) {
	ok := &lcs.Result{Strategy: m.name, Length: 1, LCS: "A"}
	switch m.behavior {
	case "slow":
		for i := 0; i < 100; i++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case progressChan <- progress.ProgressUpdate{Index: index, Value: float64(i) / 100.0}:
			default: // non-blocking
			}
			time.Sleep(m.delay)
		}
	case "error":
		return nil, fmt.Errorf("simulated error")
	case "progress_flood":
		for i := 0; i < 10000; i++ {
			select {
			case progressChan <- progress.ProgressUpdate{Index: index, Value: float64(i) / 10000.0}:
			default:
			}
		}
	}
	return ok, nil
}

func (m *stubSolver) Name() string { return m.name }

// drainingReporter just drains the channel.
type drainingReporter struct{}

func (drainingReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}

// TestOrchestrationNoDeadlock_MixedBehaviors verifies that ExecuteRuns
// completes without deadlocking under various solver behavior combinations.
func TestOrchestrationNoDeadlock_MixedBehaviors(t *testing.T) {
	testCases := []struct {
		name    string
		solvers []lcs.Solver
	}{
		{
			name: "all_instant",
			solvers: []lcs.Solver{
				&stubSolver{name: "s1", behavior: "instant"},
				&stubSolver{name: "s2", behavior: "instant"},
				&stubSolver{name: "s3", behavior: "instant"},
			},
		},
		{
			name: "mixed_instant_and_slow",
			solvers: []lcs.Solver{
				&stubSolver{name: "fast", behavior: "instant"},
				&stubSolver{name: "slow", behavior: "slow", delay: time.Millisecond},
			},
		},
		{
			name: "mixed_with_errors",
			solvers: []lcs.Solver{
				&stubSolver{name: "ok", behavior: "instant"},
				&stubSolver{name: "err", behavior: "error"},
			},
		},
		{
			name: "progress_flood",
			solvers: []lcs.Solver{
				&stubSolver{name: "flood1", behavior: "progress_flood"},
				&stubSolver{name: "flood2", behavior: "progress_flood"},
			},
		},
		{
			name:    "single_solver",
			solvers: []lcs.Solver{&stubSolver{name: "solo", behavior: "instant"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				ExecuteRuns(ctx, tc.solvers, lcs.Pair{A: lcs.Sequence("A"), B: lcs.Sequence("A")}, lcs.Options{}, drainingReporter{}, io.Discard)
			}()

			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatal("DEADLOCK: ExecuteRuns did not complete within timeout")
			}
		})
	}
}

// TestOrchestrationNoDeadlock_ContextCancellation verifies that cancelling
// the context during execution does not cause a deadlock.
func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	solvers := []lcs.Solver{
		&stubSolver{name: "slow1", behavior: "slow", delay: 100 * time.Millisecond},
		&stubSolver{name: "slow2", behavior: "slow", delay: 100 * time.Millisecond},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ExecuteRuns(ctx, solvers, lcs.Pair{}, lcs.Options{}, drainingReporter{}, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}
