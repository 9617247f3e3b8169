package tui

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSeries_KeepsNewestSamples(t *testing.T) {
	s := NewSeries(3)
	for _, v := range []float64{10, 20, 30, 40, 50} {
		s.Push(v)
	}
	if got := s.Values(); !slices.Equal(got, []float64{30, 40, 50}) {
		t.Errorf("values = %v, want [30 40 50]", got)
	}
	if s.Latest() != 50 {
		t.Errorf("latest = %v, want 50", s.Latest())
	}
}

func TestSeries_ClampsPercentages(t *testing.T) {
	s := NewSeries(4)
	s.Push(-5)
	s.Push(140)
	if got := s.Values(); !slices.Equal(got, []float64{0, 100}) {
		t.Errorf("values = %v, want [0 100]", got)
	}
}

func TestSeries_FitShrinksAndGrows(t *testing.T) {
	s := NewSeries(5)
	for i := range 5 {
		s.Push(float64(i * 10))
	}
	s.Fit(2)
	if got := s.Values(); !slices.Equal(got, []float64{30, 40}) {
		t.Errorf("after shrink = %v, want [30 40]", got)
	}
	s.Fit(4)
	s.Push(50)
	s.Push(60)
	if got := s.Values(); !slices.Equal(got, []float64{30, 40, 50, 60}) {
		t.Errorf("after grow = %v, want [30 40 50 60]", got)
	}
	s.Fit(0)
	if s.Len() != 1 {
		t.Errorf("a zero limit keeps one sample, got %d", s.Len())
	}
}

func TestSeries_EmptyAndClear(t *testing.T) {
	s := NewSeries(0)
	if s.Values() != nil || s.Latest() != 0 || s.Len() != 0 {
		t.Error("empty series should report nothing")
	}
	s.Push(42)
	s.Clear()
	if s.Len() != 0 || s.Latest() != 0 {
		t.Error("clear should drop every sample")
	}
}

func TestSeries_ValuesIsACopy(t *testing.T) {
	s := NewSeries(2)
	s.Push(10)
	v := s.Values()
	v[0] = 99
	if s.Latest() != 10 {
		t.Error("mutating Values changed the series")
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		in   []float64
		want string
	}{
		{nil, ""},
		{[]float64{0, 100}, "▁█"},
		{[]float64{-10, 250}, "▁█"},
		{[]float64{0, 15, 29, 43, 58, 72, 86, 100}, "▁▂▃▄▅▆▇█"},
	}
	for _, tt := range tests {
		if got := Sparkline(tt.in); got != tt.want {
			t.Errorf("Sparkline(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDotPlot_Shape(t *testing.T) {
	if DotPlot(nil, 4, 2) != nil || DotPlot([]float64{1}, 0, 2) != nil || DotPlot([]float64{1}, 4, 0) != nil {
		t.Fatal("degenerate plots should be nil")
	}
	lines := DotPlot([]float64{0, 50, 100}, 6, 3)
	if len(lines) != 3 {
		t.Fatalf("rows = %d, want 3", len(lines))
	}
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n != 6 {
			t.Errorf("line %q has %d cells, want 6", l, n)
		}
	}
}

func TestDotPlot_Corners(t *testing.T) {
	// One cell, one row: the older sample is the left dot column, the newest
	// the right one. 0% is the bottom dot, 100% the top.
	lines := DotPlot([]float64{0, 100}, 1, 1)
	want := string(rune(0x2800 | 0x40 | 0x08))
	if lines[0] != want {
		t.Errorf("cell = %U, want %U", []rune(lines[0])[0], []rune(want)[0])
	}
}

func TestDotPlot_RightAlignsAndDropsOldest(t *testing.T) {
	lines := DotPlot([]float64{100}, 3, 1)
	if !strings.HasPrefix(lines[0], "⠀⠀") {
		t.Errorf("a single sample belongs in the last cell: %q", lines[0])
	}

	many := make([]float64, 50)
	many[0] = 100 // scrolled out: only the last 2*width samples are drawn
	if top := DotPlot(many, 4, 2)[0]; strings.Trim(top, "⠀") != "" {
		t.Errorf("top row should be empty once the 100%% sample scrolls out: %q", top)
	}
}
