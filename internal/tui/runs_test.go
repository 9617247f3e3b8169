package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/orchestration"
)

func TestRunsModel_ProgressOutOfRange(t *testing.T) {
	r := NewRunsModel([]string{"sequential"})
	r.AddProgress(ProgressMsg{Index: 3, Value: 0.5})
	r.AddProgress(ProgressMsg{Index: -1, Value: 0.5})
	if r.rows[0].status != runPending {
		t.Error("out-of-range updates must not touch rows")
	}
}

func TestRunsModel_LogsEvents(t *testing.T) {
	r := NewRunsModel([]string{"sequential", "distributed"})
	r.SetSize(100, 20)

	r.AddProgress(ProgressMsg{Index: 0, Value: 0.1})
	r.AddProgress(ProgressMsg{Index: 0, Value: 0.2})
	r.AddResults([]orchestration.RunResult{
		{Name: "sequential", Result: &lcs.Result{Length: 5}, Duration: time.Millisecond},
		{Name: "distributed", Err: errors.New("rank 1 unreachable")},
		{Name: "unknown", Err: errors.New("ignored")},
	})
	r.AddFinalResult(FinalResultMsg{
		Result:  orchestration.RunResult{Result: &lcs.Result{Length: 5, LCS: "GATCA", Strategy: "sequential"}},
		Options: orchestration.PresentationOptions{ShowLCS: true},
	})

	log := strings.Join(r.log, "\n")
	for _, want := range []string{"started", "length 5", "rank 1 unreachable", "LCS length 5", "GATCA"} {
		if !strings.Contains(log, want) {
			t.Errorf("expected log to contain %q", want)
		}
	}
	if strings.Count(log, "started") != 1 {
		t.Error("a run should be reported as started once")
	}
	if strings.Contains(log, "ignored") {
		t.Error("results for unknown strategies should be skipped")
	}
}

func TestRunsModel_TruncatesLongLCS(t *testing.T) {
	r := NewRunsModel([]string{"sequential"})
	r.SetSize(60, 20)

	long := strings.Repeat("ACGT", 100)
	r.AddFinalResult(FinalResultMsg{
		Result:  orchestration.RunResult{Result: &lcs.Result{Length: len(long), LCS: long}},
		Options: orchestration.PresentationOptions{ShowLCS: true},
	})
	last := r.log[len(r.log)-1]
	if !strings.Contains(last, "...") || strings.Contains(last, long) {
		t.Error("expected the subsequence to be elided")
	}
}

func TestRunsModel_Reset(t *testing.T) {
	r := NewRunsModel([]string{"wavefront"})
	r.AddProgress(ProgressMsg{Index: 0, Value: 0.7})
	r.Reset()

	if len(r.log) != 0 {
		t.Error("expected empty log after reset")
	}
	if r.rows[0].name != "wavefront" || r.rows[0].progress != 0 || r.rows[0].status != runPending {
		t.Errorf("row after reset = %+v", r.rows[0])
	}
}

func TestFooterModel_Status(t *testing.T) {
	f := NewFooterModel(DefaultKeyMap())
	f.SetWidth(100)

	if !strings.Contains(f.View(), "RUNNING") {
		t.Error("expected RUNNING")
	}
	f.SetPaused(true)
	if !strings.Contains(f.View(), "PAUSED") {
		t.Error("expected PAUSED")
	}
	f.SetDone(true)
	if !strings.Contains(f.View(), "DONE") {
		t.Error("expected DONE")
	}
	f.SetError(true)
	if !strings.Contains(f.View(), "ERROR") {
		t.Error("expected ERROR")
	}
	if !strings.Contains(f.View(), "quit") {
		t.Error("expected key help")
	}
}

func TestHeaderModel_Elapsed(t *testing.T) {
	h := NewHeaderModel("v2.0.0", 1000, 2000)
	h.SetWidth(80)
	h.startTime = time.Now().Add(-time.Second)
	h.SetDone()

	frozen := h.Elapsed()
	if frozen < time.Second {
		t.Errorf("Elapsed = %v, want at least 1s", frozen)
	}
	time.Sleep(5 * time.Millisecond)
	if h.Elapsed() != frozen {
		t.Error("expected elapsed time to stay frozen once done")
	}

	view := h.View()
	if !strings.Contains(view, "v2.0.0") || !strings.Contains(view, "1,000 x 2,000") {
		t.Errorf("unexpected header %q", view)
	}
}
