package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/config"
	"github.com/jaminalder/tictactoe-arena/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load("tictactoe", args, os.Getenv)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	aiDelay := cfg.AIDelay
	if aiDelay == 0 {
		aiDelay = -1
	}
	svc := app.New(app.Options{AIDelay: aiDelay, Logger: logger})
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, web.Options{Logger: logger, Heartbeat: cfg.Heartbeat}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info("listening", "addr", cfg.Addr, "ai_delay", cfg.AIDelay)
	var runErr error
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown failed", "err", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Error("forced close failed", "err", closeErr)
		}
	}
	return runErr
}
