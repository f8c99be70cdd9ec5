package engine

import "github.com/jaminalder/tictactoe-arena/internal/domain"

// FindBlockingMove returns the empty cell of the first win line (in
// domain.WinLines order) where opponent already holds the other two cells.
// Without such a threat it returns the lowest empty cell.
func FindBlockingMove(b domain.Board, opponent domain.Cell) (int, error) {
	if opponent != domain.X && opponent != domain.O {
		return -1, ErrInvalidMark
	}
	for _, ln := range domain.WinLines {
		p, q, r := ln[0], ln[1], ln[2]
		switch {
		case b[p] == opponent && b[q] == opponent && b[r] == domain.Empty:
			return r, nil
		case b[p] == opponent && b[r] == opponent && b[q] == domain.Empty:
			return q, nil
		case b[q] == opponent && b[r] == opponent && b[p] == domain.Empty:
			return p, nil
		}
	}
	for i, c := range b {
		if c == domain.Empty {
			return i, nil
		}
	}
	return -1, ErrNoLegalMoves
}
