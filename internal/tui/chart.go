package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/lcscalc/internal/format"
)

// sparklineWidth is the room taken by the label and value around a sparkline.
const sparklineWidth = 17

// ChartModel plots the average progress and system load over time.
type ChartModel struct {
	history         *Series
	cpuHistory      *Series
	memHistory      *Series
	averageProgress float64
	eta             time.Duration
	done            bool
	total           time.Duration
	width           int
	height          int
}

// NewChartModel creates an empty chart.
func NewChartModel() ChartModel {
	return ChartModel{
		history:    NewSeries(64),
		cpuHistory: NewSeries(32),
		memHistory: NewSeries(32),
	}
}

// SetSize updates dimensions and resizes the sample buffers to fit.
func (c *ChartModel) SetSize(w, h int) {
	c.width, c.height = w, h
	c.history.Fit(max((w-4)*2, 1))
	c.cpuHistory.Fit(max(w-sparklineWidth, 1))
	c.memHistory.Fit(max(w-sparklineWidth, 1))
}

// AddDataPoint records a progress sample.
func (c *ChartModel) AddDataPoint(_, average float64, eta time.Duration) {
	c.averageProgress = average
	c.eta = eta
	c.history.Push(average * 100)
}

// UpdateSysStats records a system load sample.
func (c *ChartModel) UpdateSysStats(cpuPct, memPct float64) {
	c.cpuHistory.Push(cpuPct)
	c.memHistory.Push(memPct)
}

// SetDone freezes the chart with the total run time.
func (c *ChartModel) SetDone(total time.Duration) {
	c.done = true
	c.total = total
	c.averageProgress = 1
	c.history.Push(100)
}

// Reset clears every sample.
func (c *ChartModel) Reset() {
	c.history.Clear()
	c.cpuHistory.Clear()
	c.memHistory.Clear()
	c.averageProgress = 0
	c.eta = 0
	c.done = false
	c.total = 0
}

func (c ChartModel) renderProgressBar() string {
	barWidth := c.width - 20
	if barWidth < 5 {
		return ""
	}
	filled := min(int(c.averageProgress*float64(barWidth)), barWidth)
	return fmt.Sprintf(" %s%s %5.1f%%",
		chartBarStyle.Render(strings.Repeat("█", filled)),
		chartEmptyStyle.Render(strings.Repeat("░", barWidth-filled)),
		c.averageProgress*100)
}

// View renders the chart panel.
func (c ChartModel) View() string {
	lines := []string{titleStyle.Render(" Progress Chart")}

	showSparklines := c.height >= 10
	chartRows := c.height - 6
	if showSparklines {
		chartRows -= 2
	}
	if chartRows > 0 {
		for _, l := range DotPlot(c.history.Values(), max(c.width-4, 1), chartRows) {
			lines = append(lines, " "+chartBarStyle.Render(l))
		}
	}

	lines = append(lines, c.renderProgressBar())
	if c.done {
		lines = append(lines, metricLabelStyle.Render(" Done in ")+metricValueStyle.Render(format.FormatExecutionDuration(c.total)))
	} else {
		lines = append(lines, metricLabelStyle.Render(" ETA: ")+metricValueStyle.Render(format.FormatETA(c.eta)))
	}

	if showSparklines {
		lines = append(lines,
			fmt.Sprintf(" %s %s %5.1f%%", metricLabelStyle.Render("CPU"), cpuSparklineStyle.Render(Sparkline(c.cpuHistory.Values())), c.cpuHistory.Latest()),
			fmt.Sprintf(" %s %s %5.1f%%", metricLabelStyle.Render("MEM"), memSparklineStyle.Render(Sparkline(c.memHistory.Values())), c.memHistory.Latest()),
		)
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}
