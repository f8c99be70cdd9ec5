package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/jaminalder/tictactoe-arena/internal/domain"
)

// Tier is a difficulty level for AI turns.
type Tier uint8

const (
	TierEasy Tier = iota + 1
	TierHard
)

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Strategy mixture per tier.
const (
	EasyBlockChance   = 0.7
	HardOptimalChance = 0.9
)

// Mode is the game mode a session runs in.
type Mode string

const (
	ModePVP     Mode = "pvp"
	ModePVEEasy Mode = "pve-easy"
	ModePVEHard Mode = "pve-hard"
	ModeAIvsAI  Mode = "ai-vs-ai"
)

// Modes lists every mode in menu order.
var Modes = []Mode{ModePVP, ModePVEEasy, ModePVEHard, ModeAIvsAI}

var ErrUnknownMode = errors.New("unknown mode")

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Tier returns the difficulty AI turns use in this mode; ok is false for PvP.
func (m Mode) Tier() (t Tier, ok bool) {
	switch m {
	case ModePVEEasy, ModeAIvsAI:
		return TierEasy, true
	case ModePVEHard:
		return TierHard, true
	default:
		return 0, false
	}
}

// AIPlays reports whether the AI moves for mark. Humans always hold X.
func (m Mode) AIPlays(mark domain.Cell) bool {
	switch m {
	case ModePVEEasy, ModePVEHard:
		return mark == domain.O
	case ModeAIvsAI:
		return mark == domain.X || mark == domain.O
	default:
		return false
	}
}

// Rand is the randomness source for tier selection. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int    { return rand.IntN(n) }

// Selector picks moves for AI turns.
type Selector struct {
	rnd Rand
}

// NewSelector returns a selector drawing from rnd, or from the global
// math/rand/v2 source when rnd is nil.
func NewSelector(rnd Rand) *Selector {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Selector{rnd: rnd}
}

// ChooseMove returns the cell side plays on board b at the given tier.
func (s *Selector) ChooseMove(b domain.Board, side domain.Cell, tier Tier) (int, error) {
	if err := checkPlayable(b, side); err != nil {
		return -1, err
	}
	switch tier {
	case TierEasy:
		// easy turns guard the human mark whichever side is moving
		if s.rnd.Float64() < EasyBlockChance {
			return FindBlockingMove(b, domain.X)
		}
		return s.randomMove(b), nil
	case TierHard:
		if s.rnd.Float64() < HardOptimalChance {
			return BestMove(b, side)
		}
		return s.randomMove(b), nil
	default:
		return -1, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
}

func (s *Selector) randomMove(b domain.Board) int {
	empty := b.EmptyCells()
	return empty[s.rnd.IntN(len(empty))]
}
