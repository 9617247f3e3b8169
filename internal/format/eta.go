package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	// rateWeight is the weight of the newest rate sample in the moving average.
	rateWeight = 0.3
	// maxETA caps estimates made from slow early samples, such as the short
	// first anti-diagonals of a wavefront fill.
	maxETA = 24 * time.Hour
)

// RunProgress follows the completion of several concurrent fills and
// estimates the time left from a smoothed rate of their average.
type RunProgress struct {
	done     []float64
	lastAvg  float64
	lastSeen time.Time
	rate     float64 // average fraction per second
	now      func() time.Time
}

// NewRunProgress creates a tracker for runs fills, all at zero.
func NewRunProgress(runs int) *RunProgress {
	return newRunProgress(runs, time.Now)
}

func newRunProgress(runs int, now func() time.Time) *RunProgress {
	return &RunProgress{done: make([]float64, max(runs, 0)), lastSeen: now(), now: now}
}

// Observe records that run index reached value and returns the new average
// with the estimated time left. Out-of-range indices leave the state alone
// and values are clamped to [0, 1].
func (p *RunProgress) Observe(index int, value float64) (float64, time.Duration) {
	if index >= 0 && index < len(p.done) {
		p.done[index] = min(max(value, 0), 1)
	}
	avg := p.Average()

	now := p.now()
	if dt := now.Sub(p.lastSeen).Seconds(); dt > 0 && avg > p.lastAvg {
		sample := (avg - p.lastAvg) / dt
		if p.rate == 0 {
			p.rate = sample
		} else {
			p.rate = rateWeight*sample + (1-rateWeight)*p.rate
		}
		p.lastAvg, p.lastSeen = avg, now
	}
	return avg, p.ETA()
}

// Average is the mean completion across runs, 0 without runs.
func (p *RunProgress) Average() float64 {
	if len(p.done) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.done {
		sum += v
	}
	return sum / float64(len(p.done))
}

// ETA is the estimated time left, 0 while no rate is known or once done.
func (p *RunProgress) ETA() time.Duration {
	avg := p.Average()
	if p.rate <= 0 || avg >= 1 {
		return 0
	}
	left := time.Duration((1 - avg) / p.rate * float64(time.Second))
	if left > maxETA || left < 0 {
		return maxETA
	}
	return left
}

// FormatETA renders an estimate compactly, e.g. "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta >= time.Hour:
		eta = eta.Truncate(time.Minute)
	default:
		eta = eta.Truncate(time.Second)
	}
	s := eta.String()
	for _, zero := range []string{"m0s", "h0m"} {
		if strings.HasSuffix(s, zero) {
			s = s[:len(s)-2]
		}
	}
	return s
}

// ProgressBar renders a bar of length cells, clamping progress to [0, 1].
func ProgressBar(progress float64, length int) string {
	filled := int(min(max(progress, 0), 1) * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders the percentage, the bar and the estimate.
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", min(max(progress, 0), 1)*100, ProgressBar(progress, width), FormatETA(eta))
}
