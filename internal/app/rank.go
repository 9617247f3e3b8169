package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agbru/lcscalc/internal/cli"
	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/progress"
	"github.com/agbru/lcscalc/internal/transport"
)

const rankDialRetry = 200 * time.Millisecond

func (a *Application) newRankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Run one rank of a distributed fill over TCP",
		Long: `rank runs one process of a row-band distributed fill. Every rank is
started with the same pair, the same --peers list and its own --rank; rank
0 prints the result once the backtrace has reached it.

Example:
  lcscalc rank --rank 0 --peers :7000,:7001 --input pairs.csv
  lcscalc rank --rank 1 --peers :7000,:7001 --input pairs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCode(a.runRank(cmd.Context()))
		},
	}
}

func (a *Application) runRank(ctx context.Context) int {
	colors := cli.CLIColorProvider{}
	if len(a.Config.Peers) == 0 {
		return apperrors.HandleCalculationError(apperrors.NewConfigError("rank needs --peers"), 0, a.ErrWriter, colors)
	}
	// Every rank must derive the same tile width, so it follows the peer count.
	a.Config.Processes = len(a.Config.Peers)

	pair, opts, err := a.prepare(ctx)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, colors)
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger := a.logger.With().Int("rank", a.Config.Rank).Logger()
	ep, err := transport.DialTCP(ctx, transport.TCPConfig{
		Rank:          a.Config.Rank,
		Peers:         a.Config.Peers,
		RetryInterval: rankDialRetry,
		Compress:      a.Config.Compress,
		Logger:        logger,
	})
	if err != nil {
		if ctx.Err() == nil {
			err = &lcs.PartitionUnavailableError{Rank: a.Config.Rank, Row: -1, Cause: err}
		}
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, colors)
	}
	defer ep.Close()

	subject := progress.NewProgressSubject()
	subject.Register(progress.NewLoggingObserver(logger, 0.1))

	start := time.Now()
	res, err := lcs.RunRank(ctx, ep, pair, opts, subject.Freeze(a.Config.Rank))
	duration := time.Since(start)
	if err != nil {
		return apperrors.HandleCalculationError(err, duration, a.ErrWriter, colors)
	}
	logger.Info().
		Int("first_row", res.FirstRow).
		Int("last_row", res.LastRow).
		Dur("busy", res.Stat.Busy).
		Msg("rank finished")

	if res.Rank != 0 {
		return apperrors.ExitSuccess
	}
	if a.Config.Quiet {
		cli.DisplayQuietResult(a.Out, &lcs.Result{Length: res.Length, LCS: res.LCS})
		return apperrors.ExitSuccess
	}
	m, n := pair.Dims()
	fmt.Fprintf(a.Out, "Ranks:           %d\n", res.Size)
	fmt.Fprintf(a.Out, "Table:           %s x %s\n", format.FormatCount(int64(m)), format.FormatCount(int64(n)))
	fmt.Fprintf(a.Out, "Duration:        %s\n", format.FormatExecutionDuration(duration))
	fmt.Fprintf(a.Out, "LCS length:      %d\n", res.Length)
	if opts.Trace != lcs.TraceNone {
		fmt.Fprintf(a.Out, "LCS:             %s\n", res.LCS)
	}
	return apperrors.ExitSuccess
}
