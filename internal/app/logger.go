package app

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/lcscalc/internal/config"
	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/logging"
)

// newLogger builds the diagnostic logger from the log level and format
// settings.
func newLogger(cfg config.AppConfig, w io.Writer) (zerolog.Logger, error) {
	logger, err := logging.New(w, cfg.LogLevel, cfg.LogFormat, stdoutFile(w) != nil)
	if err != nil {
		return logger, apperrors.NewConfigError("invalid --log-level %q", cfg.LogLevel)
	}
	return logger, nil
}
