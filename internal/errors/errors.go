package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess        = 0
	ExitErrorGeneric   = 1
	ExitErrorTimeout   = 2
	ExitErrorMismatch  = 3 // two strategies disagreed on the LCS length
	ExitErrorConfig    = 4
	ExitErrorInput     = 5 // malformed sequences or records
	ExitErrorPartition = 6 // a distributed rank stopped answering
	ExitErrorCanceled  = 130
)

// ExitCoder is implemented by errors that know their exit code, so that this
// package never imports the packages raising them.
type ExitCoder interface {
	ExitCode() int
}

// ConfigError is a bad flag, environment value or config file entry.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

func (e ConfigError) ExitCode() int { return ExitErrorConfig }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError rejects one field of the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

func (e ValidationError) ExitCode() int { return ExitErrorInput }

// MemoryError reports a table that would exceed the memory budget. It is
// raised before anything is allocated and counts as a configuration error,
// since the budget is a user setting.
type MemoryError struct {
	Requested uint64
	Available uint64
	Limit     uint64
}

func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d bytes, available %d bytes (limit: %d)", e.Requested, e.Available, e.Limit)
}

func (e MemoryError) ExitCode() int { return ExitErrorConfig }

// ExitCodeFor resolves the exit code of err. The outermost ExitCoder in the
// chain wins over a context error beneath it, so a partition failure caused
// by a canceled peer still reports as a partition failure.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	}
	return ExitErrorGeneric
}
