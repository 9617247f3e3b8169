package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lcscalc/internal/config"
	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/orchestration"
)

type runStatus int

const (
	runPending runStatus = iota
	runActive
	runDone
	runFailed
)

// runRow is one strategy's line in the runs panel.
type runRow struct {
	name     string
	progress float64
	status   runStatus
	duration time.Duration
	length   int
}

// RunsModel shows a progress bar per strategy above a scrollable event log.
type RunsModel struct {
	rows     []runRow
	bar      progress.Model
	log      []string
	viewport viewport.Model
	width    int
	height   int
}

// NewRunsModel creates the panel for the given strategy names.
func NewRunsModel(names []string) RunsModel {
	rows := make([]runRow, len(names))
	for i, n := range names {
		rows[i] = runRow{name: n}
	}
	return RunsModel{
		rows:     rows,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		viewport: viewport.New(0, 0),
	}
}

// SetSize updates the panel dimensions.
func (r *RunsModel) SetSize(w, h int) {
	r.width, r.height = w, h
	r.bar.Width = max(w-40, 10)
	r.viewport.Width = max(w-4, 0)
	r.viewport.Height = max(h-4-len(r.rows), 1)
	r.refresh()
}

// AddExecutionConfig logs the settings of the session.
func (r *RunsModel) AddExecutionConfig(cfg config.AppConfig, m, n int) {
	r.addLog(logAlgoStyle.Render("config"),
		fmt.Sprintf("%d x %d, strategy=%s workers=%d processes=%d trace=%s",
			m, n, cfg.Strategy, cfg.Workers, cfg.Processes, cfg.Trace))
}

// AddProgress records a progress update.
func (r *RunsModel) AddProgress(msg ProgressMsg) {
	if msg.Index < 0 || msg.Index >= len(r.rows) {
		return
	}
	row := &r.rows[msg.Index]
	if row.status == runPending {
		row.status = runActive
		r.addLog(logAlgoStyle.Render(row.name), logProgressStyle.Render("started"))
	}
	row.progress = msg.Value
}

// AddResults records the outcome of every run.
func (r *RunsModel) AddResults(results []orchestration.RunResult) {
	for _, res := range results {
		i := r.indexOf(res.Name)
		if i < 0 {
			continue
		}
		row := &r.rows[i]
		row.duration = res.Duration
		if res.Err != nil {
			row.status = runFailed
			r.addLog(logAlgoStyle.Render(row.name), logErrorStyle.Render("failed: "+res.Err.Error()))
			continue
		}
		row.status = runDone
		row.progress = 1
		row.length = res.Result.Length
		r.addLog(logAlgoStyle.Render(row.name), logSuccessStyle.Render(
			fmt.Sprintf("length %d in %s", row.length, format.FormatExecutionDuration(res.Duration))))
	}
}

// AddFinalResult logs the presented run and, if asked, its LCS.
func (r *RunsModel) AddFinalResult(msg FinalResultMsg) {
	res := msg.Result.Result
	if res == nil {
		return
	}
	r.addLog(logSuccessStyle.Render("result"), fmt.Sprintf("LCS length %d (%s)", res.Length, res.Strategy))
	if msg.Options.ShowLCS && res.LCS != "" {
		lcs := res.LCS
		if limit := max(r.width-30, 20); len(lcs) > limit {
			lcs = lcs[:limit/2] + "..." + lcs[len(lcs)-limit/2:]
		}
		r.addLog(logSuccessStyle.Render("lcs"), lcs)
	}
}

// AddError logs a failure.
func (r *RunsModel) AddError(msg ErrorMsg) {
	r.addLog(logErrorStyle.Render("error"), msg.Err.Error())
}

// Reset clears progress and the log.
func (r *RunsModel) Reset() {
	for i := range r.rows {
		r.rows[i] = runRow{name: r.rows[i].name}
	}
	r.log = nil
	r.refresh()
}

// Update forwards scroll keys to the log viewport.
func (r *RunsModel) Update(msg tea.Msg) {
	r.viewport, _ = r.viewport.Update(msg)
}

func (r *RunsModel) indexOf(name string) int {
	for i, row := range r.rows {
		if row.name == name {
			return i
		}
	}
	return -1
}

func (r *RunsModel) addLog(tag, text string) {
	ts := logTimeStyle.Render(time.Now().Format("15:04:05"))
	r.log = append(r.log, fmt.Sprintf("%s %s %s", ts, tag, text))
	r.refresh()
	r.viewport.GotoBottom()
}

func (r *RunsModel) refresh() {
	r.viewport.SetContent(strings.Join(r.log, "\n"))
}

func (r RunsModel) renderRow(row runRow) string {
	var status string
	switch row.status {
	case runPending:
		status = metricLabelStyle.Render("pending")
	case runActive:
		status = statusRunningStyle.Render("running")
	case runDone:
		status = statusDoneStyle.Render(fmt.Sprintf("L=%d %s", row.length, format.FormatExecutionDuration(row.duration)))
	case runFailed:
		status = statusErrorStyle.Render("failed")
	}
	return fmt.Sprintf(" %s %s %5.1f%% %s",
		logAlgoStyle.Render(fmt.Sprintf("%-12s", row.name)),
		r.bar.ViewAs(row.progress),
		row.progress*100,
		status)
}

// View renders the panel at its configured size.
func (r RunsModel) View() string {
	return r.renderToHeight(r.height)
}

func (r RunsModel) renderToHeight(h int) string {
	lines := make([]string, 0, len(r.rows)+2)
	lines = append(lines, titleStyle.Render(" Runs"))
	for _, row := range r.rows {
		lines = append(lines, r.renderRow(row))
	}
	lines = append(lines, "", r.viewport.View())
	return panelStyle.
		Width(max(r.width-2, 0)).
		Height(max(h-2, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
