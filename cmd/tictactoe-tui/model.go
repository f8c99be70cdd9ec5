package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/domain"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

// UpdateMsg signals that the session changed, usually after an AI move.
type UpdateMsg struct{}

// droppedMsg means the service closed our subscription for falling behind.
type droppedMsg struct{}

type model struct {
	ctx     context.Context
	svc     *app.Service
	id      string
	state   app.GameState
	updates <-chan []byte
	err     string
}

func initialModel(ctx context.Context, svc *app.Service, gs app.GameState) (model, error) {
	updates, _, err := svc.Subscribe(ctx, gs.ID)
	if err != nil {
		return model{}, err
	}
	return model{ctx: ctx, svc: svc, id: gs.ID, state: gs, updates: updates}, nil
}

func waitForUpdate(updates <-chan []byte) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return droppedMsg{}
		}
		return UpdateMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "m":
			m.apply(m.svc.StartMode(m.id, nextMode(m.state.Mode)))
		case "r":
			m.apply(m.svc.ResetBoard(m.id))
		case "s":
			m.apply(m.svc.ResetScore(m.id))
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.apply(m.svc.Play(m.id, int(key[0]-'1')))
		}
	case UpdateMsg:
		m.refresh()
		return m, waitForUpdate(m.updates)
	case droppedMsg:
		updates, _, err := m.svc.Subscribe(m.ctx, m.id)
		if err != nil {
			return m, tea.Quit
		}
		m.updates = updates
		m.refresh()
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m *model) refresh() {
	if gs, ok := m.svc.Get(m.id); ok {
		m.state = *gs
	}
}

func (m *model) apply(gs *app.GameState, err error) {
	if gs != nil {
		m.state = *gs
	}
	m.err = ""
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNotYourTurn):
		m.err = "Not your turn"
	case errors.Is(err, domain.ErrOccupied):
		m.err = "Cell is occupied"
	case errors.Is(err, domain.ErrGameOver):
		m.err = "Game is over, press r"
	default:
		m.err = err.Error()
	}
}

func nextMode(cur engine.Mode) engine.Mode {
	for i, md := range engine.Modes {
		if md == cur {
			return engine.Modes[(i+1)%len(engine.Modes)]
		}
	}
	return engine.Modes[0]
}

func (m model) View() string {
	var s strings.Builder
	fmt.Fprintf(&s, "Mode: %s\n", strings.ToUpper(string(m.state.Mode)))
	fmt.Fprintf(&s, "X %d  |  draws %d  |  O %d\n\n", m.state.ScoreX, m.state.Draws, m.state.ScoreO)
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			if sym := m.state.Game.Board[i].String(); sym != "" {
				cells[c] = sym
			} else {
				cells[c] = fmt.Sprint(i + 1)
			}
		}
		s.WriteString(" " + strings.Join(cells, " | ") + "\n")
		if r < 2 {
			s.WriteString("---+---+---\n")
		}
	}
	fmt.Fprintf(&s, "\n%s\n", m.state.Status())
	if m.err != "" {
		fmt.Fprintf(&s, "! %s\n", m.err)
	}
	s.WriteString("\n1-9 play, m mode, r reset board, s reset score, q quit.\n")
	return s.String()
}
