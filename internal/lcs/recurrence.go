package lcs

// Tag records which neighbour a cell's length came from.
type Tag uint8

const (
	// None marks border cells and tables that keep no tags.
	None Tag = iota
	Diagonal
	FromTop
	FromLeft
)

func (t Tag) String() string {
	switch t {
	case Diagonal:
		return "diagonal"
	case FromTop:
		return "top"
	case FromLeft:
		return "left"
	}
	return "none"
}

// Evaluate computes one interior cell from its symbols and its three
// dependencies. A match extends the top-left diagonal; otherwise the larger
// of top and left wins and ties go to top.
func Evaluate(a, b byte, topLeft, top, left uint32) (uint32, Tag) {
	if a == b {
		return topLeft + 1, Diagonal
	}
	if top >= left {
		return top, FromTop
	}
	return left, FromLeft
}
