// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteRecord].

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/ui"
)

// recordHeader names the columns of a result record file.
var recordHeader = []string{"m", "n", "strategy", "workers", "length", "elapsed_seconds", "lcs"}

// Record is one line of a result record file.
type Record struct {
	M, N     int
	Strategy string
	Workers  int
	Length   int
	Elapsed  time.Duration
	LCS      string
}

// RecordFromResult builds the record of a finished run.
func RecordFromResult(r *lcs.Result) Record {
	return Record{
		M: r.M, N: r.N,
		Strategy: r.Strategy,
		Workers:  r.Workers,
		Length:   r.Length,
		Elapsed:  r.Elapsed,
		LCS:      r.LCS,
	}
}

func (r Record) fields() []string {
	return []string{
		strconv.Itoa(r.M),
		strconv.Itoa(r.N),
		r.Strategy,
		strconv.Itoa(r.Workers),
		strconv.Itoa(r.Length),
		strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 6, 64),
		r.LCS,
	}
}

// WriteRecord appends rec to the delimited file at path, creating the file
// and its directory as needed. The header is written only to a new or
// empty file, so repeated runs accumulate into one table.
func WriteRecord(path string, rec Record) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return writeRecords(f, info.Size() == 0, rec)
}

func writeRecords(w io.Writer, header bool, recs ...Record) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(recordHeader); err != nil {
			return err
		}
	}
	for _, r := range recs {
		if err := cw.Write(r.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Speedup returns T1/Tp, or 0 when either time is not positive.
func Speedup(t1, tp time.Duration) float64 {
	if t1 <= 0 || tp <= 0 {
		return 0
	}
	return t1.Seconds() / tp.Seconds()
}

// WriteResults appends a record per successful run to path and reports the
// destination on out unless quiet.
func WriteResults(path string, results []*lcs.Result, quiet bool, out io.Writer) error {
	if path == "" {
		return nil
	}
	for _, r := range results {
		if err := WriteRecord(path, RecordFromResult(r)); err != nil {
			return err
		}
	}
	if !quiet {
		fmt.Fprintf(out, "\n%s✓ %d record(s) appended to: %s%s%s\n",
			ui.ColorGreen(), len(results), ui.ColorCyan(), path, ui.ColorReset())
	}
	return nil
}
