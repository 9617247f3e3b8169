package apperrors

import (
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the ANSI sequences for error output.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColor struct{}

func (noColor) Red() string    { return "" }
func (noColor) Yellow() string { return "" }
func (noColor) Reset() string  { return "" }

// HandleCalculationError prints one status line for a failed run and
// returns its exit code. duration is shown when non-zero; nil colors print
// plain text.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColor{}
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s", duration.Round(time.Microsecond))
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Timeout%s%s (%v)\n", colors.Yellow(), suffix, colors.Reset(), err)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s%s\n", colors.Yellow(), suffix, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure%s%s: %v\n", colors.Red(), suffix, colors.Reset(), err)
	}
	return code
}
