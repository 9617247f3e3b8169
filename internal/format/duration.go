package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a run time: microseconds below a
// millisecond, milliseconds below a second, time.Duration's form above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}
