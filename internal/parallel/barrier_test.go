package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestBarrierPhasesAreOrdered verifies that writes made before Await in one
// phase are visible to every party after the barrier trips.
func TestBarrierPhasesAreOrdered(t *testing.T) {
	t.Parallel()
	const parties, phases = 8, 50
	slots := make([]int, parties)
	b := NewBarrier(parties, nil)

	var wg sync.WaitGroup
	var bad atomic.Int64
	for w := 0; w < parties; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for p := 0; p < phases; p++ {
				slots[w] = p
				if err := b.Await(); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				for _, v := range slots {
					if v < p {
						bad.Add(1)
					}
				}
				if err := b.Await(); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if bad.Load() != 0 {
		t.Errorf("observed %d stale slots after barrier", bad.Load())
	}
	if got := b.Phase(); got != 2*phases {
		t.Errorf("expected %d phases, got %d", 2*phases, got)
	}
}

// TestBarrierActionRunsOncePerPhase checks the trip action contract.
func TestBarrierActionRunsOncePerPhase(t *testing.T) {
	t.Parallel()
	var calls []int
	b := NewBarrier(4, func(phase int) error {
		calls = append(calls, phase)
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p < 3; p++ {
				_ = b.Await()
			}
		}()
	}
	wg.Wait()

	if len(calls) != 3 || calls[0] != 0 || calls[1] != 1 || calls[2] != 2 {
		t.Errorf("unexpected action phases: %v", calls)
	}
}

// TestBarrierAbortWakesWaiters verifies that one failing party releases all
// the others with its error instead of deadlocking them.
func TestBarrierAbortWakesWaiters(t *testing.T) {
	t.Parallel()
	boom := errors.New("worker 0 failed")
	b := NewBarrier(4, nil)

	errs := make(chan error, 3)
	for w := 0; w < 3; w++ {
		go func() { errs <- b.Await() }()
	}
	time.Sleep(10 * time.Millisecond)
	b.Abort(boom)

	timeout := time.After(5 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, boom) {
				t.Errorf("expected %v, got %v", boom, err)
			}
		case <-timeout:
			t.Fatal("waiters were not released by Abort")
		}
	}

	if err := b.Await(); !errors.Is(err, boom) {
		t.Errorf("Await after Abort should fail fast, got %v", err)
	}
}

// TestBarrierActionErrorBreaksBarrier checks that an action error is
// delivered to every party of the failing phase.
func TestBarrierActionErrorBreaksBarrier(t *testing.T) {
	t.Parallel()
	stop := errors.New("canceled at phase 1")
	b := NewBarrier(3, func(phase int) error {
		if phase == 1 {
			return stop
		}
		return nil
	})

	var wg sync.WaitGroup
	var failures atomic.Int64
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p < 5; p++ {
				if err := b.Await(); err != nil {
					if errors.Is(err, stop) {
						failures.Add(1)
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 3 {
		t.Errorf("expected all 3 parties to see the action error, got %d", failures.Load())
	}
}

func TestBarrierAbortNilUsesSentinel(t *testing.T) {
	t.Parallel()
	b := NewBarrier(2, nil)
	b.Abort(nil)
	b.Abort(errors.New("second"))
	if !errors.Is(b.Err(), ErrBarrierAborted) {
		t.Errorf("expected ErrBarrierAborted, got %v", b.Err())
	}
}
