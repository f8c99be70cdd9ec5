package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/config"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load("tictactoe-tui", args, os.Getenv)
	if err != nil {
		return err
	}
	// the terminal belongs to the UI
	logger := cfg.NewLogger(io.Discard)

	aiDelay := cfg.AIDelay
	if aiDelay == 0 {
		aiDelay = -1
	}
	svc := app.New(app.Options{AIDelay: aiDelay, Logger: logger})
	gs, err := svc.CreateGame(engine.ModePVEEasy)
	if err != nil {
		return err
	}

	// cancelling ctx releases every subscription the UI made
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, err := initialModel(ctx, svc, *gs)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
