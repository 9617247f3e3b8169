// Package input reads the delimited pair files used for batch
// runs. A file holds one pair per record, either as "a,b" or as
// "index,a,b"; a header whose sequence columns are named sequence_a and
// sequence_b is skipped.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/agbru/lcscalc/internal/errors"
)

// ErrRowNotFound is returned when the requested record is past the end of the file.
var ErrRowNotFound = errors.New("row not found")

// Record is one pair read from a file.
type Record struct {
	// Index is the record's own index column, or its position when absent.
	Index int
	A, B  string
}

// ReadPair returns record row (0-based, header excluded) from r.
func ReadPair(r io.Reader, row int) (Record, error) {
	if row < 0 {
		return Record{}, apperrors.ValidationError{Field: "row", Message: fmt.Sprintf("must be >= 0, got %d", row)}
	}
	cr := newReader(r)
	pos := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: row %d of %d", ErrRowNotFound, row, pos)
		}
		if err != nil {
			return Record{}, apperrors.ValidationError{Field: "input", Message: err.Error()}
		}
		if isHeader(fields) {
			continue
		}
		if pos == row {
			return parseRecord(fields, pos)
		}
		pos++
	}
}

// ReadAll returns every record in r.
func ReadAll(r io.Reader) ([]Record, error) {
	cr := newReader(r)
	var out []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, apperrors.ValidationError{Field: "input", Message: err.Error()}
		}
		if isHeader(fields) {
			continue
		}
		rec, err := parseRecord(fields, len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ReadPairFile opens path and reads record row.
func ReadPairFile(path string, row int) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, apperrors.ValidationError{Field: "input", Message: err.Error()}
	}
	defer f.Close()
	return ReadPair(f, row)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

func isHeader(fields []string) bool {
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f), "sequence_a") {
			return true
		}
	}
	return false
}

func parseRecord(fields []string, pos int) (Record, error) {
	switch len(fields) {
	case 2:
		return Record{Index: pos, A: strings.TrimSpace(fields[0]), B: strings.TrimSpace(fields[1])}, nil
	case 3:
		idx, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return Record{}, apperrors.ValidationError{Field: "input", Message: fmt.Sprintf("record %d: bad index %q", pos, fields[0])}
		}
		return Record{Index: idx, A: strings.TrimSpace(fields[1]), B: strings.TrimSpace(fields[2])}, nil
	}
	return Record{}, apperrors.ValidationError{Field: "input", Message: fmt.Sprintf("record %d: want 2 or 3 fields, got %d", pos, len(fields))}
}

// RandomSequence returns n symbols drawn uniformly from symbols. It builds
// the benchmark pairs of a calibration run.
func RandomSequence(r *rand.Rand, symbols string, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = symbols[r.IntN(len(symbols))]
	}
	return string(buf)
}
