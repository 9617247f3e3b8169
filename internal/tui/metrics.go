package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/metrics"
)

// MetricsModel displays runtime memory and throughput metrics.
type MetricsModel struct {
	alloc        uint64
	heapSys      uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int
	speed        float64 // progress fraction per second, smoothed
	lastProgress float64
	lastUpdate   time.Time
	indicators   *metrics.Indicators
	width        int
	height       int
	now          func() time.Time
}

// minSpeedInterval is the shortest gap between two progress samples that
// moves the speed estimate.
const minSpeedInterval = 50 * time.Millisecond

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return newMetricsModel(time.Now)
}

func newMetricsModel(now func() time.Time) MetricsModel {
	return MetricsModel{lastUpdate: now(), now: now}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateProgress folds a new average progress into the smoothed speed.
// Samples closer than minSpeedInterval are ignored.
func (m *MetricsModel) UpdateProgress(progress float64) {
	now := m.now()
	elapsed := now.Sub(m.lastUpdate)
	if elapsed <= minSpeedInterval {
		return
	}
	if dp := progress - m.lastProgress; dp > 0 {
		instant := dp / elapsed.Seconds()
		if m.speed > 0 {
			m.speed = 0.7*m.speed + 0.3*instant
		} else {
			m.speed = instant
		}
	}
	m.lastProgress = progress
	m.lastUpdate = now
}

// UpdateIndicators stores live or final indicators.
func (m *MetricsModel) UpdateIndicators(ind *metrics.Indicators) {
	m.indicators = ind
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder
	rows.WriteString(titleStyle.Render(" Metrics"))

	colWidth := max((m.width-6)/2, 0)
	left := []string{
		formatMetricCol("Heap:", format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapSys), colWidth),
		formatMetricCol("Speed:", fmt.Sprintf("%.1f%%/s", m.speed*100), colWidth),
	}
	right := []string{
		formatMetricCol("GC Runs:", fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6), colWidth),
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
	}
	if ind := m.indicators; ind != nil {
		left = append(left, formatMetricCol("Cells:", format.FormatCount(ind.Cells), colWidth))
		right = append(right, formatMetricCol("Rate:", metrics.FormatCellsPerSecond(ind.CellsPerSecond), colWidth))
		if ind.Similarity > 0 || ind.TableBytes > 0 {
			left = append(left, formatMetricCol("Similarity:", metrics.FormatRatio(ind.Similarity), colWidth))
			right = append(right, formatMetricCol("Table:", format.FormatBytes(ind.TableBytes), colWidth))
		}
	}
	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
