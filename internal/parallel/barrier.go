// Package parallel holds the synchronisation primitives shared by the
// concurrent fill strategies.
package parallel

import (
	"errors"
	"sync"
)

// ErrBarrierAborted is returned by Abort callers that do not supply a cause.
var ErrBarrierAborted = errors.New("parallel: barrier aborted")

// Barrier is a reusable rendezvous point for a fixed number of goroutines.
//
// Each phase ends when the last party calls Await. That party runs the trip
// action, if any, while the others are still parked, and then releases them
// all. An action error or a call to Abort breaks the barrier for good: every
// parked party and every later Await returns the same error.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	phase   int
	err     error
	action  func(phase int) error
}

// NewBarrier returns a barrier for parties goroutines. action may be nil.
func NewBarrier(parties int, action func(phase int) error) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties, action: action}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Await blocks until every party has arrived for the current phase or until
// the barrier is broken.
func (b *Barrier) Await() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b.err
	}
	phase := b.phase
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		if b.action != nil {
			if err := b.action(phase); err != nil {
				b.err = err
				b.cond.Broadcast()
				return err
			}
		}
		b.phase++
		b.cond.Broadcast()
		return nil
	}

	for phase == b.phase && b.err == nil {
		b.cond.Wait()
	}
	if phase == b.phase {
		return b.err
	}
	return nil
}

// Abort breaks the barrier with err and wakes every parked party. Only the
// first abort is kept.
func (b *Barrier) Abort(err error) {
	if err == nil {
		err = ErrBarrierAborted
	}
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Err reports the error that broke the barrier, if any.
func (b *Barrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Phase returns the number of completed phases.
func (b *Barrier) Phase() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}
