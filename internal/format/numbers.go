package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders an integer with locale grouping, e.g. 12,345,678.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatCellRate renders a throughput in cells per second.
func FormatCellRate(cells int64, seconds float64) string {
	if seconds <= 0 {
		return "n/a"
	}
	return printer.Sprintf("%.0f cells/s", float64(cells)/seconds)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return printer.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return printer.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
