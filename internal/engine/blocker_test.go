package engine

import (
	"errors"
	"testing"

	"github.com/jaminalder/tictactoe-arena/internal/domain"
)

func TestFindBlockingMove(t *testing.T) {
	tests := []struct {
		name     string
		board    domain.Board
		opponent domain.Cell
		want     int
	}{
		{
			name: "blocks end of top row",
			board: domain.Board{
				x, x, __,
				__, __, __,
				__, __, __,
			},
			opponent: x,
			want:     2,
		},
		{
			name: "blocks gap in the middle of a line",
			board: domain.Board{
				__, __, __,
				o, __, o,
				x, __, __,
			},
			opponent: o,
			want:     4,
		},
		{
			name: "blocks start of a column",
			board: domain.Board{
				__, o, __,
				x, __, __,
				x, __, __,
			},
			opponent: x,
			want:     0,
		},
		{
			name: "first threat in line order wins",
			board: domain.Board{
				__, __, __,
				x, x, __,
				__, x, __,
			},
			opponent: x,
			// row 3,4,5 precedes column 1,4,7
			want: 5,
		},
		{
			name: "ignores own two-in-a-row",
			board: domain.Board{
				o, o, __,
				__, x, __,
				__, __, __,
			},
			opponent: x,
			want:     2,
		},
		{
			name: "no threat falls back to lowest empty cell",
			board: domain.Board{
				x, __, __,
				__, o, __,
				__, __, __,
			},
			opponent: x,
			want:     1,
		},
		{
			name: "blocked line is not a threat",
			board: domain.Board{
				x, x, o,
				__, __, __,
				__, __, __,
			},
			opponent: x,
			want:     3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindBlockingMove(tt.board, tt.opponent)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestFindBlockingMoveFullBoard(t *testing.T) {
	full := domain.Board{x, o, x, x, o, o, o, x, x}
	if _, err := FindBlockingMove(full, x); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
}

func TestFindBlockingMoveInvalidMark(t *testing.T) {
	if _, err := FindBlockingMove(domain.Board{}, domain.Empty); !errors.Is(err, ErrInvalidMark) {
		t.Fatalf("expected ErrInvalidMark, got %v", err)
	}
}
