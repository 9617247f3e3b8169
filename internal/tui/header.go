package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lcscalc/internal/format"
)

// HeaderModel renders the top bar: title, problem size and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	m, n      int
	width     int
}

// NewHeaderModel creates a header for an m x n problem.
func NewHeaderModel(version string, m, n int) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		m:         m,
		n:         n,
	}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since the start, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "lcscalc monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")
	size := versionStyle.Render(fmt.Sprintf("%s x %s", format.FormatCount(int64(h.m)), format.FormatCount(int64(h.n))))
	elapsed := elapsedStyle.Render("Elapsed: " + format.FormatExecutionDuration(h.Elapsed()))

	row := titleStyle.Render(titleText) + pipe + size + pipe + elapsed
	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += strings.Repeat(" ", gap)
	}
	return headerStyle.Width(h.width).Render(row)
}
