package lcs

import "fmt"

// Reconstruct recovers the LCS from a filled table, using the backtrack tags
// when the table kept them and the lengths otherwise.
func Reconstruct(t *Table, pair Pair) (string, error) {
	if t == nil {
		return "", ErrNoTrace
	}
	if t.HasTags() {
		return Backtrack(t, pair)
	}
	return Rebuild(t, pair)
}

// Backtrack walks the tags from (m, n) to the border in O(m+n).
func Backtrack(t *Table, pair Pair) (string, error) {
	if err := checkShape(t, pair); err != nil {
		return "", err
	}
	if !t.HasTags() {
		return "", ErrNoTrace
	}
	return walk(t, pair, t.Tag), nil
}

// Rebuild recovers the same string as Backtrack from lengths alone, by
// re-deriving each tag from the symbols and the two candidate neighbours.
func Rebuild(t *Table, pair Pair) (string, error) {
	if err := checkShape(t, pair); err != nil {
		return "", err
	}
	return walk(t, pair, func(i, j int) Tag {
		return deriveTag(pair.A[i-1], pair.B[j-1], uint32(t.Length(i-1, j)), uint32(t.Length(i, j-1)))
	}), nil
}

// deriveTag applies the recurrence's decision without the top-left length,
// which a match does not need.
func deriveTag(a, b byte, top, left uint32) Tag {
	_, tag := Evaluate(a, b, 0, top, left)
	return tag
}

func walk(t *Table, pair Pair, tagAt func(i, j int) Tag) string {
	i, j := len(pair.A), len(pair.B)
	out := make([]byte, t.Final())
	pos := len(out)
	for i > 0 && j > 0 {
		switch tagAt(i, j) {
		case Diagonal:
			pos--
			out[pos] = pair.A[i-1]
			i, j = i-1, j-1
		case FromTop:
			i--
		default:
			j--
		}
	}
	return string(out[pos:])
}

func checkShape(t *Table, pair Pair) error {
	if t == nil {
		return ErrNoTrace
	}
	if m, n := pair.Dims(); t.Rows() != m+1 || t.Cols() != n+1 {
		return fmt.Errorf("lcs: table is %dx%d, pair needs %dx%d", t.Rows(), t.Cols(), m+1, n+1)
	}
	return nil
}
