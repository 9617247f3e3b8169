package app

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agbru/lcscalc/internal/calibration"
	"github.com/agbru/lcscalc/internal/ui"
)

func (a *Application) newCalibrateCommand() *cobra.Command {
	opts := calibration.DefaultOptions()
	var noSave bool
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Benchmark the parallel strategies and cache the fastest settings",
		Long: `calibrate fills a random DNA pair with several worker counts, rank counts
and tile widths, then saves the fastest settings to the calibration
profile (--calibration-profile, default ~/.lcscalc_calibration.json).
Later runs use them for large tables when --workers, --processes or
--tile-width are not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			opts.Logger = a.logger

			profile, err := calibration.RunCalibration(ctx, a.Factory, opts, a.Out)
			if err != nil {
				return err
			}
			path := calibration.ProfilePath(a.Config)
			if noSave || path == "" {
				return nil
			}
			if err := profile.SaveProfile(path); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "%s✓ Profile saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Size, "size", opts.Size, "length of both benchmark sequences")
	cmd.Flags().BoolVar(&opts.Quick, "quick", opts.Quick, "benchmark a reduced set of candidates")
	cmd.Flags().IntVar(&opts.Repeats, "repeats", opts.Repeats, "runs per candidate; the best time counts")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "print the results without writing the profile")
	return cmd
}
