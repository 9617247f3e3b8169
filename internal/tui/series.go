package tui

import "strings"

// Series keeps the most recent percentage samples of one chart line. Values
// are clamped to [0, 100] on entry.
type Series struct {
	limit   int
	samples []float64
}

// NewSeries returns an empty series holding at most limit samples.
func NewSeries(limit int) *Series {
	return &Series{limit: max(limit, 1)}
}

// Push appends a sample and drops the oldest ones beyond the limit.
func (s *Series) Push(pct float64) {
	s.samples = append(s.samples, clampPct(pct))
	s.trim()
}

// Fit changes the limit, keeping the newest samples.
func (s *Series) Fit(limit int) {
	s.limit = max(limit, 1)
	s.trim()
}

func (s *Series) trim() {
	if over := len(s.samples) - s.limit; over > 0 {
		s.samples = append(s.samples[:0], s.samples[over:]...)
	}
}

// Len is the number of samples held.
func (s *Series) Len() int { return len(s.samples) }

// Latest is the newest sample, 0 when empty.
func (s *Series) Latest() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (s *Series) Values() []float64 {
	if len(s.samples) == 0 {
		return nil
	}
	return append([]float64(nil), s.samples...)
}

// Clear drops every sample.
func (s *Series) Clear() { s.samples = s.samples[:0] }

func clampPct(v float64) float64 {
	return min(max(v, 0), 100)
}

// levels are the eight block heights of a one-line sparkline.
const levels = "▁▂▃▄▅▆▇█"

// Sparkline draws percentages as one line of block characters.
func Sparkline(pcts []float64) string {
	blocks := []rune(levels)
	var sb strings.Builder
	for _, v := range pcts {
		sb.WriteRune(blocks[min(int(clampPct(v)*7/100), 7)])
	}
	return sb.String()
}

// dotBits[x][y] is the braille bit for dot column x (0-1) and dot row y (0-3)
// of a cell. A cell's rune is 0x2800 plus the bits of its raised dots.
var dotBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// DotPlot draws percentages as a braille scatter of rows text lines by width
// cells. Each cell holds two samples; the newest sample lands in the right
// column and older samples that do not fit are dropped.
func DotPlot(pcts []float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(pcts) == 0 {
		return nil
	}
	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = []rune(strings.Repeat("⠀", width))
	}

	dotsHigh := rows * 4
	if len(pcts) > 2*width {
		pcts = pcts[len(pcts)-2*width:]
	}
	offset := 2*width - len(pcts)
	for i, v := range pcts {
		x := offset + i
		// 0% sits on the bottom dot row, 100% on the top one.
		y := dotsHigh - 1 - int(clampPct(v)/100*float64(dotsHigh-1))
		cells[y/4][x/2] |= dotBits[x%2][y%4]
	}

	out := make([]string, rows)
	for r, line := range cells {
		out[r] = string(line)
	}
	return out
}
