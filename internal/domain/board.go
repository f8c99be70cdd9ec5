package domain

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Other returns the opposing mark. Empty has no opponent.
func (c Cell) Other() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// WinLines lists every index triple that wins the game: rows, then columns,
// then diagonals. The order is fixed and shared by every scan.
var WinLines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// EmptyCells returns the indices of empty cells in ascending order.
func (b Board) EmptyCells() []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Status is the coarse state of a board.
type Status uint8

const (
	InProgress Status = iota
	Won
	Draw
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Outcome is derived from a board; Winner is set only when Status is Won.
type Outcome struct {
	Status Status
	Winner Cell
}

// Over reports whether the game has ended.
func (o Outcome) Over() bool { return o.Status != InProgress }

// EvaluateOutcome scans the win lines in order and returns the first uniform
// line as the winner, a draw for a full board, and InProgress otherwise.
func EvaluateOutcome(b Board) Outcome {
	for _, ln := range WinLines {
		c := b[ln[0]]
		if c != Empty && c == b[ln[1]] && c == b[ln[2]] {
			return Outcome{Status: Won, Winner: c}
		}
	}
	if b.Full() {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: InProgress}
}
