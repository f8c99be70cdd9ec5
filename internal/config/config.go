// Package config reads process configuration from flags, with defaults taken
// from TICTACTOE_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds settings shared by the server and terminal binaries.
type Config struct {
	Addr      string
	AIDelay   time.Duration
	Heartbeat time.Duration
	LogLevel  slog.Level
	LogFormat string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:      ":8080",
		AIDelay:   500 * time.Millisecond,
		Heartbeat: 15 * time.Second,
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
	}
}

var ErrInvalid = errors.New("invalid config")

// Load parses args (without the program name). getenv supplies environment
// defaults; pass os.Getenv in production.
func Load(name string, args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv == nil {
		getenv = os.Getenv
	}

	env := func(key, def string) string {
		if v := getenv("TICTACTOE_" + key); v != "" {
			return v
		}
		return def
	}
	envDuration := func(key string, def time.Duration) (time.Duration, error) {
		v := getenv("TICTACTOE_" + key)
		if v == "" {
			return def, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: TICTACTOE_%s: %v", ErrInvalid, key, err)
		}
		return d, nil
	}

	aiDelay, err := envDuration("AI_DELAY", cfg.AIDelay)
	if err != nil {
		return cfg, err
	}
	heartbeat, err := envDuration("HEARTBEAT", cfg.Heartbeat)
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", env("ADDR", cfg.Addr), "HTTP listen address")
	fs.DurationVar(&cfg.AIDelay, "ai-delay", aiDelay, "Delay before an AI move is applied")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", heartbeat, "Idle keep-alive interval for event streams")
	level := fs.String("log-level", env("LOG_LEVEL", cfg.LogLevel.String()), "Log level: debug, info, warn, error")
	format := fs.String("log-format", env("LOG_FORMAT", cfg.LogFormat), "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.Addr = *addr
	if err := cfg.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return cfg, fmt.Errorf("%w: log level %q", ErrInvalid, *level)
	}
	cfg.LogFormat = strings.ToLower(*format)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return cfg, fmt.Errorf("%w: log format %q", ErrInvalid, *format)
	}
	if cfg.AIDelay < 0 || cfg.Heartbeat <= 0 {
		return cfg, fmt.Errorf("%w: durations must be positive", ErrInvalid)
	}
	return cfg, nil
}

// NewLogger builds the process logger described by cfg.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
