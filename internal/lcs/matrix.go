package lcs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

var tagGlyph = [...]byte{None: ' ', Diagonal: '\\', FromTop: '^', FromLeft: '<'}

// PrintMatrix writes the table with B across the top and A down the side.
// Row and column "-" are the empty-prefix border. With showTags each length
// is followed by its backtrack glyph: \ diagonal, ^ top, < left.
func PrintMatrix(w io.Writer, t *Table, pair Pair, showTags bool) error {
	if err := checkShape(t, pair); err != nil {
		return err
	}
	width := len(strconv.Itoa(t.Final())) + 1
	cell := width
	if showTags {
		cell++
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%5s", "")
	for j := 0; j < t.Cols(); j++ {
		fmt.Fprintf(bw, "%*s", cell, label(pair.B, j))
	}
	bw.WriteByte('\n')

	for i := 0; i < t.Rows(); i++ {
		fmt.Fprintf(bw, "%3s [", label(pair.A, i))
		for j := 0; j < t.Cols(); j++ {
			fmt.Fprintf(bw, "%*d", width, t.Length(i, j))
			if showTags {
				bw.WriteByte(tagGlyph[t.Tag(i, j)])
			}
		}
		bw.WriteString(" ]\n")
	}
	return bw.Flush()
}

func label(s Sequence, k int) string {
	if k == 0 {
		return "-"
	}
	return string(s[k-1])
}
