package format

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by a fixed step each time it is read.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestRunProgress_SteadyFillConverges(t *testing.T) {
	// One fill advancing 1% per second: the estimate is exact from the start.
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	p := newRunProgress(1, clock.now)

	var eta time.Duration
	for pct := 1; pct <= 40; pct++ {
		_, eta = p.Observe(0, float64(pct)/100)
	}
	if want := 60 * time.Second; eta < want-time.Second || eta > want+time.Second {
		t.Errorf("eta = %v, want about %v", eta, want)
	}
}

func TestRunProgress_AveragesRuns(t *testing.T) {
	p := NewRunProgress(4)
	p.Observe(0, 1)
	p.Observe(1, 0.5)
	avg, _ := p.Observe(3, 0.5)
	if avg != 0.5 {
		t.Errorf("average = %v, want 0.5", avg)
	}
}

func TestRunProgress_IgnoresBadInput(t *testing.T) {
	p := NewRunProgress(2)
	p.Observe(-1, 0.9)
	p.Observe(2, 0.9)
	if p.Average() != 0 {
		t.Errorf("out-of-range runs changed the average to %v", p.Average())
	}
	p.Observe(0, 7)
	p.Observe(1, -3)
	if p.Average() != 0.5 {
		t.Errorf("clamped average = %v, want 0.5", p.Average())
	}
	if NewRunProgress(-1).Average() != 0 {
		t.Error("no runs should average to 0")
	}
}

func TestRunProgress_ETAEdges(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}

	p := newRunProgress(1, clock.now)
	if p.ETA() != 0 {
		t.Error("no rate yet should give 0")
	}
	if _, eta := p.Observe(0, 1); eta != 0 {
		t.Errorf("finished fill eta = %v, want 0", eta)
	}

	// A regression does not update the rate.
	p = newRunProgress(1, clock.now)
	p.Observe(0, 0.5)
	before := p.ETA()
	if _, eta := p.Observe(0, 0.4); eta <= before {
		t.Errorf("eta after a step back = %v, want above %v", eta, before)
	}

	// The first diagonals of a large table crawl: the estimate is capped.
	slow := &fakeClock{t: time.Unix(0, 0), step: time.Hour}
	p = newRunProgress(1, slow.now)
	if _, eta := p.Observe(0, 1e-6); eta != maxETA {
		t.Errorf("eta = %v, want cap %v", eta, maxETA)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{300 * time.Millisecond, "< 1s"},
		{45*time.Second + 600*time.Millisecond, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{time.Hour + 15*time.Minute + 40*time.Second, "1h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.in); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{-1, "░░░░"},
		{2, "████"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.progress, 4); got != tt.want {
			t.Errorf("ProgressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	got := FormatProgressBarWithETA(0.25, 90*time.Second, 8)
	want := " 25.00% [██░░░░░░] ETA: 1m30s"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if s := FormatProgressBarWithETA(1.5, 0, 4); !strings.HasPrefix(s, "100.00% [████]") {
		t.Errorf("overshoot not clamped: %q", s)
	}
}
