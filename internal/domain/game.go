package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Cell
	Winner Cell
	Over   bool
	Moves  int
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// Play places the current turn's mark at cell idx (0..8).
func (g *Game) Play(idx int) error {
	if g.Over {
		return ErrGameOver
	}
	if idx < 0 || idx >= len(g.Board) {
		return ErrOutOfBounds
	}
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	out := EvaluateOutcome(g.Board)
	if out.Over() {
		g.Winner = out.Winner
		g.Over = true
		return nil
	}

	g.Turn = g.Turn.Other()
	return nil
}

// Outcome re-derives the outcome from the board.
func (g Game) Outcome() Outcome {
	return EvaluateOutcome(g.Board)
}
