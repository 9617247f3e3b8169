// Package progress implements the observer plumbing used to report fill
// progress from the LCS strategies to whatever is displaying it.
package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// ProgressUpdate is a progress sample for one run. Value is in [0, 1].
type ProgressUpdate struct {
	Index int
	Value float64
}

// ProgressCallback receives a progress value in [0, 1]. Implementations must
// be safe for concurrent use: the distributed strategy calls it from every rank.
type ProgressCallback func(progress float64)

// ProgressObserver is notified of progress for the run at index.
type ProgressObserver interface {
	Update(index int, progress float64)
}

// ProgressSubject fans progress out to registered observers.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject returns an empty subject.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes the first occurrence of o.
func (s *ProgressSubject) Unregister(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends one update to every registered observer.
func (s *ProgressSubject) Notify(index int, progress float64) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, o := range observers {
		o.Update(index, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Freeze snapshots the current observers into a callback bound to index.
// Observers registered afterwards are not notified through it, so the hot
// path never takes the subject's lock.
func (s *ProgressSubject) Freeze(index int) ProgressCallback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	return func(progress float64) {
		for _, o := range snapshot {
			o.Update(index, progress)
		}
	}
}

// ChannelObserver forwards updates to a channel without ever blocking the
// producer; samples are dropped when the channel is full.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver returns an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

func (o *ChannelObserver) Update(index int, progress float64) {
	if o.ch == nil {
		return
	}
	select {
	case o.ch <- ProgressUpdate{Index: index, Value: clamp(progress)}:
	default:
	}
}

// LoggingObserver logs progress at debug level every time it advances by at
// least threshold.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver returns a throttled logging observer.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{logger: logger, threshold: threshold, last: make(map[int]float64)}
}

func (o *LoggingObserver) Update(index int, progress float64) {
	progress = clamp(progress)
	o.mu.Lock()
	prev, seen := o.last[index]
	emit := !seen || progress-prev >= o.threshold || (progress >= 1 && prev < 1)
	if emit {
		o.last[index] = progress
	}
	o.mu.Unlock()

	if emit {
		o.logger.Debug().Int("run", index).Float64("progress", progress).Msg("fill progress")
	}
}

// NoOpObserver discards updates.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() *NoOpObserver { return &NoOpObserver{} }

func (*NoOpObserver) Update(int, float64) {}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Tracker converts work-unit completions into throttled progress callbacks.
// It is safe for concurrent use; Done may be called from several goroutines.
type Tracker struct {
	mu       sync.Mutex
	total    int64
	done     int64
	step     int64
	next     int64
	callback ProgressCallback
}

// NewTracker reports through cb roughly every 1/steps of total work.
func NewTracker(total int64, steps int, cb ProgressCallback) *Tracker {
	if steps < 1 {
		steps = 1
	}
	step := total / int64(steps)
	if step < 1 {
		step = 1
	}
	return &Tracker{total: total, step: step, next: step, callback: cb}
}

// Done records n completed units.
func (t *Tracker) Done(n int64) {
	if t == nil || t.callback == nil {
		return
	}
	t.mu.Lock()
	t.done += n
	report := t.done >= t.next
	var value float64
	if report {
		for t.next <= t.done {
			t.next += t.step
		}
		if t.total > 0 {
			value = float64(t.done) / float64(t.total)
		} else {
			value = 1
		}
	}
	t.mu.Unlock()

	if report {
		t.callback(value)
	}
}

// Finish forces a final 100% report.
func (t *Tracker) Finish() {
	if t == nil || t.callback == nil {
		return
	}
	t.callback(1)
}
