// Package engine decides AI moves: an exhaustive minimax search, a one-ply
// blocking heuristic, and the per-tier mixture of those with random play.
package engine

import (
	"errors"

	"github.com/jaminalder/tictactoe-arena/internal/domain"
)

// Errors returned by the engine. All of them are caller contract violations.
var (
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrInvalidMark  = errors.New("invalid mark")
	ErrUnknownTier  = errors.New("unknown tier")
)

// Terminal scores. X minimizes and O maximizes.
const (
	scoreXWins = -10
	scoreOWins = 10
	scoreDraw  = 0
)

type scoredMove struct {
	Index int
	Score int
}

// minimax searches the full game tree below b with side to move. It places and
// removes marks on b while recursing; b is restored before returning.
// Terminal boards return Index -1.
func minimax(b *domain.Board, side domain.Cell) scoredMove {
	out := domain.EvaluateOutcome(*b)
	switch {
	case out.Status == domain.Won && out.Winner == domain.X:
		return scoredMove{Index: -1, Score: scoreXWins}
	case out.Status == domain.Won:
		return scoredMove{Index: -1, Score: scoreOWins}
	case out.Status == domain.Draw:
		return scoredMove{Index: -1, Score: scoreDraw}
	}

	best := scoredMove{Index: -1}
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = side
		score := minimax(b, side.Other()).Score
		b[i] = domain.Empty

		// first candidate wins ties
		switch {
		case best.Index < 0:
			best = scoredMove{Index: i, Score: score}
		case side == domain.O && score > best.Score:
			best = scoredMove{Index: i, Score: score}
		case side == domain.X && score < best.Score:
			best = scoredMove{Index: i, Score: score}
		}
	}
	return best
}

// BestMove returns the minimax-optimal cell for side on board b.
func BestMove(b domain.Board, side domain.Cell) (int, error) {
	if err := checkPlayable(b, side); err != nil {
		return -1, err
	}
	return minimax(&b, side).Index, nil
}

func checkPlayable(b domain.Board, side domain.Cell) error {
	if side != domain.X && side != domain.O {
		return ErrInvalidMark
	}
	if b.Full() {
		return ErrNoLegalMoves
	}
	if domain.EvaluateOutcome(b).Over() {
		return domain.ErrGameOver
	}
	return nil
}
