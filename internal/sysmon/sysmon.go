// Package sysmon samples system-wide CPU and memory usage.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	// MemAvailable is the number of bytes the OS reports as available to
	// new allocations.
	MemAvailable uint64
}

// Sample collects a single system-wide snapshot. CPU usage is the delta
// since the previous call. Fields stay zero when the platform cannot report
// them.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext is Sample with a context for the underlying reads.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = vm.UsedPercent
		s.MemAvailable = vm.Available
	}
	return s
}

// FitsInMemory reports whether need bytes fit in the memory currently
// available. It answers true when availability is unknown.
func FitsInMemory(ctx context.Context, need uint64) (bool, uint64) {
	avail := SampleContext(ctx).MemAvailable
	if avail == 0 {
		return true, 0
	}
	return need <= avail, avail
}
