package lcs

// Table is the padded (m+1) x (n+1) DP grid. Row 0 and column 0 are the empty
// prefixes and always hold zero. Lengths are stored row-major in one slice;
// tags, when kept, use one byte per cell.
type Table struct {
	rows, cols int
	lengths    []uint32
	tags       []Tag
}

// NewTable allocates a zeroed table for sequences of length m and n.
func NewTable(m, n int, withTags bool) *Table {
	t := &Table{rows: m + 1, cols: n + 1}
	t.lengths = make([]uint32, t.rows*t.cols)
	if withTags {
		t.tags = make([]Tag, t.rows*t.cols)
	}
	return t
}

// Rows returns m+1.
func (t *Table) Rows() int { return t.rows }

// Cols returns n+1.
func (t *Table) Cols() int { return t.cols }

// HasTags reports whether backtrack tags were kept.
func (t *Table) HasTags() bool { return t.tags != nil }

// Length returns the LCS length of A[:i] and B[:j].
func (t *Table) Length(i, j int) int { return int(t.lengths[i*t.cols+j]) }

// Tag returns the backtrack tag of cell (i, j), or None if tags are not kept.
func (t *Table) Tag(i, j int) Tag {
	if t.tags == nil {
		return None
	}
	return t.tags[i*t.cols+j]
}

// Final returns the LCS length of the whole pair.
func (t *Table) Final() int { return int(t.lengths[len(t.lengths)-1]) }

// Row returns a read-only view of row i's lengths.
func (t *Table) Row(i int) []uint32 { return t.lengths[i*t.cols : (i+1)*t.cols] }

// Equal reports whether both tables have the same shape and lengths, and the
// same tags when both keep them.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || t.cols != o.cols {
		return false
	}
	for k, v := range t.lengths {
		if o.lengths[k] != v {
			return false
		}
	}
	if t.tags == nil || o.tags == nil {
		return true
	}
	for k, v := range t.tags {
		if o.tags[k] != v {
			return false
		}
	}
	return true
}

// evaluate fills interior cell (i, j) from its already-final neighbours.
func (t *Table) evaluate(i, j int, a, b byte) {
	k := i*t.cols + j
	l, tag := Evaluate(a, b, t.lengths[k-t.cols-1], t.lengths[k-t.cols], t.lengths[k-1])
	t.lengths[k] = l
	if t.tags != nil {
		t.tags[k] = tag
	}
}

// fillRow evaluates columns [lo, hi) of row i.
func (t *Table) fillRow(i, lo, hi int, a byte, b Sequence) {
	for j := lo; j < hi; j++ {
		t.evaluate(i, j, a, b[j-1])
	}
}

// EstimateBytes returns the memory a full table for (m, n) needs under
// trace. It is an upper bound: the sequential length-only fill keeps just two
// rows.
func EstimateBytes(m, n int, trace Trace) uint64 {
	cells := uint64(m+1) * uint64(n+1)
	if trace == TraceTags {
		return cells * 5
	}
	return cells * 4
}
