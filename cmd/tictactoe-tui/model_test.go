package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/domain"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

func newTestModel(t *testing.T, mode engine.Mode) model {
	t.Helper()
	svc := app.New(app.Options{AIDelay: time.Hour, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	gs, err := svc.CreateGame(mode)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m, err := initialModel(ctx, svc, *gs)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	return m
}

func press(m model, key string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(model)
}

func TestDigitKeysPlayCells(t *testing.T) {
	m := newTestModel(t, engine.ModePVP)
	m = press(m, "5")
	if m.state.Game.Board[4] != domain.X {
		t.Fatalf("expected X in the centre, got %v", m.state.Game.Board)
	}
	m = press(m, "5")
	if m.err != "Cell is occupied" {
		t.Fatalf("expected occupied error, got %q", m.err)
	}
	if !strings.Contains(m.View(), " 1 | 2 | 3") || !strings.Contains(m.View(), "O to move") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
}

func TestModeKeyCyclesModes(t *testing.T) {
	m := newTestModel(t, engine.ModePVP)
	for _, want := range []engine.Mode{engine.ModePVEEasy, engine.ModePVEHard, engine.ModeAIvsAI, engine.ModePVP} {
		m = press(m, "m")
		if m.state.Mode != want {
			t.Fatalf("expected %s, got %s", want, m.state.Mode)
		}
	}
}

func TestAITurnLocksInput(t *testing.T) {
	m := newTestModel(t, engine.ModePVEHard)
	m = press(m, "1")
	m = press(m, "2")
	if m.err != "Not your turn" {
		t.Fatalf("expected not-your-turn error, got %q", m.err)
	}
	if !strings.Contains(m.View(), "O is thinking...") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
}

func TestUpdateMsgRefreshesState(t *testing.T) {
	m := newTestModel(t, engine.ModePVP)
	if _, err := m.svc.Play(m.id, 0); err != nil {
		t.Fatalf("play: %v", err)
	}
	next, cmd := m.Update(UpdateMsg{})
	if cmd == nil {
		t.Fatalf("expected another wait command")
	}
	if next.(model).state.Game.Moves != 1 {
		t.Fatalf("expected refreshed state")
	}
}
