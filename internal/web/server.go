package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/tictactoe-arena/internal/app"
)

const defaultHeartbeat = 15 * time.Second

// Options tunes the HTTP layer. Zero values pick defaults.
type Options struct {
	Logger    *slog.Logger
	Heartbeat time.Duration
}

// NewServer wires routes and returns an http.Handler. It installs the board
// fragment as the service's broadcast renderer.
func NewServer(s *app.Service, opts Options) http.Handler {
	h := &handlers{svc: s, tpl: loadTemplates(), log: opts.Logger, heartbeat: opts.Heartbeat}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.heartbeat <= 0 {
		h.heartbeat = defaultHeartbeat
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Post("/mode", h.mode)
		r.Post("/play", h.play)
		r.Post("/reset", h.reset)
		r.Post("/restart", h.restart)
		r.Get("/events", h.events)
		r.Get("/ws", h.ws)
	})
	return r
}
