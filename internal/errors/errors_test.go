package apperrors_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/input"
	"github.com/agbru/lcscalc/internal/lcs"
)

// TestExitCodeForEngineErrors classifies the errors the engine and the input
// reader actually return.
func TestExitCodeForEngineErrors(t *testing.T) {
	t.Parallel()

	_, badSymbol := lcs.NewPair("ACGN", "ACGT", lcs.DNA)
	require.Error(t, badSymbol)

	pair, err := lcs.NewPair("GATTACA", "TAGATCA", lcs.DNA)
	require.NoError(t, err)
	_, tooBig := lcs.NewSequential().Solve(context.Background(), nil, 0, pair, lcs.Options{MemoryLimit: 16})
	require.Error(t, tooBig)

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()
	_, timedOut := lcs.NewWavefront().Solve(expired, nil, 0, pair, lcs.Options{Workers: 2})
	require.Error(t, timedOut)

	canceled, stop := context.WithCancel(context.Background())
	stop()
	_, interrupted := lcs.NewSequential().Solve(canceled, nil, 0, pair, lcs.Options{})
	require.Error(t, interrupted)

	_, badRecord := input.ReadPair(strings.NewReader("1,ACGT,AGCT,extra\n"), 0)
	require.Error(t, badRecord)

	lostPeer := &lcs.PartitionUnavailableError{Rank: 2, Row: 40, Cause: context.Canceled}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"invalid symbol", badSymbol, apperrors.ExitErrorInput},
		{"memory budget", tooBig, apperrors.ExitErrorConfig},
		{"deadline", timedOut, apperrors.ExitErrorTimeout},
		{"interrupt", interrupted, apperrors.ExitErrorCanceled},
		{"malformed record", badRecord, apperrors.ExitErrorInput},
		{"lost rank over a canceled link", lostPeer, apperrors.ExitErrorPartition},
		{"wrapped lost rank", fmt.Errorf("distributed: %w", lostPeer), apperrors.ExitErrorPartition},
		{"bad flag", apperrors.NewConfigError("--tile must be positive, got %d", -3), apperrors.ExitErrorConfig},
		{"worker panic", fmt.Errorf("%w: worker 1: boom", lcs.ErrWorkerPanic), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, apperrors.ExitCodeFor(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "--tile must be positive, got -3", apperrors.NewConfigError("--tile must be positive, got %d", -3).Error())
	assert.Equal(t, `validation error for "trace": must be one of tags, lengths, none`,
		apperrors.ValidationError{Field: "trace", Message: "must be one of tags, lengths, none"}.Error())
	assert.Equal(t, "memory error: requested 256 bytes, available 16 bytes (limit: 16)",
		apperrors.MemoryError{Requested: 256, Available: 16, Limit: 16}.Error())

	var cfg apperrors.ConfigError
	require.ErrorAs(t, fmt.Errorf("run: %w", apperrors.NewConfigError("no input")), &cfg)
	assert.Equal(t, "no input", cfg.Message)
}

type testColors struct{}

func (testColors) Red() string    { return "<red>" }
func (testColors) Yellow() string { return "<yellow>" }
func (testColors) Reset() string  { return "</>" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		duration time.Duration
		colors   apperrors.ColorProvider
		wantCode int
		wantOut  string
	}{
		{"success prints nothing", nil, time.Second, nil, apperrors.ExitSuccess, ""},
		{"timeout", context.DeadlineExceeded, 1500 * time.Millisecond, nil, apperrors.ExitErrorTimeout,
			"Status: Timeout after 1.5s (context deadline exceeded)\n"},
		{"canceled", context.Canceled, 0, nil, apperrors.ExitErrorCanceled, "Status: Canceled\n"},
		{"partition in colour", &lcs.PartitionUnavailableError{Rank: 1, Row: -1, Cause: errors.New("connection reset")},
			2 * time.Millisecond, testColors{}, apperrors.ExitErrorPartition,
			"<red>Status: Failure after 2ms</>: partition of rank 1 unavailable: connection reset\n"},
		{"timeout in colour", context.DeadlineExceeded, 0, testColors{}, apperrors.ExitErrorTimeout,
			"<yellow>Status: Timeout</> (context deadline exceeded)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := apperrors.HandleCalculationError(tt.err, tt.duration, &buf, tt.colors)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}
