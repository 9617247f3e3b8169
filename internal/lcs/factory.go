//go:generate mockgen -destination=mocks/mock_solver.go -package=mocks github.com/agbru/lcscalc/internal/lcs Solver,SolverFactory

package lcs

import (
	"fmt"
	"sort"
	"sync"
)

// Strategy names understood by the default factory.
const (
	StrategySequential  = "sequential"
	StrategyWavefront   = "wavefront"
	StrategyDistributed = "distributed"
)

// SolverFactory resolves strategy names to solvers.
type SolverFactory interface {
	Get(name string) (Solver, error)
	List() []string
	Register(name string, ctor func() Solver)
}

// DefaultFactory is a concurrency-safe registry that builds each solver once.
type DefaultFactory struct {
	mu      sync.RWMutex
	ctors   map[string]func() Solver
	solvers map[string]Solver
}

// NewDefaultFactory returns a factory holding the three built-in strategies.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		ctors:   make(map[string]func() Solver),
		solvers: make(map[string]Solver),
	}
	f.Register(StrategySequential, NewSequential)
	f.Register(StrategyWavefront, NewWavefront)
	f.Register(StrategyDistributed, NewDistributed)
	return f
}

// Register adds or replaces a strategy.
func (f *DefaultFactory) Register(name string, ctor func() Solver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[name] = ctor
	delete(f.solvers, name)
}

// Get returns the solver registered under name.
func (f *DefaultFactory) Get(name string) (Solver, error) {
	f.mu.RLock()
	s, ok := f.solvers[name]
	f.mu.RUnlock()
	if ok {
		return s, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.solvers[name]; ok {
		return s, nil
	}
	ctor, ok := f.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	s = ctor()
	f.solvers[name] = s
	return s, nil
}

// List returns the registered names in sorted order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ SolverFactory = (*DefaultFactory)(nil)
