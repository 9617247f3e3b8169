// Package metrics derives performance indicators from LCS runs and samples
// the Go runtime's memory statistics.
package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by live objects
	HeapSys      uint64 // bytes obtained from the OS for the heap
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Since reports what happened between an earlier snapshot and s: bytes
// allocated, GC cycles run and pause time spent. Heap fields keep the
// values of s.
func (s MemorySnapshot) Since(before MemorySnapshot) MemorySnapshot {
	d := s
	d.TotalAlloc = s.TotalAlloc - before.TotalAlloc
	d.NumGC = s.NumGC - before.NumGC
	d.PauseTotalNs = s.PauseTotalNs - before.PauseTotalNs
	return d
}
