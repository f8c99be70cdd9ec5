package web

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/domain"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, gs app.GameState, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderBoard(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, "base", nil))
}

func formMode(r *http.Request) (engine.Mode, error) {
	_ = r.ParseForm()
	v := r.Form.Get("mode")
	if v == "" {
		return engine.ModePVP, nil
	}
	return engine.ParseMode(v)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	mode, err := formMode(r)
	if err != nil {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.CreateGame(mode)
	if err != nil {
		h.log.Error("create game", "err", err)
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.game, "base", newBoardView(*gs, "")))
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
	mode, err := formMode(r)
	if err != nil {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.StartMode(chi.URLParam(r, "id"), mode)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.ResetBoard(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.ResetScore(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	idx, err := strconv.Atoi(r.Form.Get("i"))
	if err != nil {
		idx = -1
	}
	gs, err := h.svc.Play(id, idx)
	var errMsg string
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, app.ErrNotYourTurn):
			errMsg = "Not your turn"
		case errors.Is(err, domain.ErrOccupied):
			errMsg = "Cell is occupied"
		case errors.Is(err, domain.ErrOutOfBounds):
			errMsg = "Out of bounds"
		case errors.Is(err, domain.ErrGameOver):
			errMsg = "Game is over"
		default:
			errMsg = "Invalid move"
		}
	}
	h.writeBoard(w, *gs, errMsg)
}

type scoresDTO struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

type stateDTO struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Board     [9]string `json:"board"`
	Turn      string    `json:"turn"`
	Winner    string    `json:"winner"`
	Over      bool      `json:"over"`
	AIPending bool      `json:"ai_pending"`
	Status    string    `json:"status"`
	Scores    scoresDTO `json:"scores"`
}

func stateFromGame(gs app.GameState) stateDTO {
	dto := stateDTO{
		ID:        gs.ID,
		Mode:      string(gs.Mode),
		Turn:      gs.Game.Turn.String(),
		Winner:    gs.Game.Winner.String(),
		Over:      gs.Game.Over,
		AIPending: gs.AIPending,
		Status:    gs.Status(),
		Scores:    scoresDTO{X: gs.ScoreX, O: gs.ScoreO, Draws: gs.Draws},
	}
	for i, c := range gs.Game.Board {
		dto.Board[i] = c.String()
	}
	return dto
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stateFromGame(*gs))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeSSE frames data as one event; every line gets its own data field.
func writeSSE(w io.Writer, event string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		_, _ = fmt.Fprintf(w, "data: %s\n", sc.Bytes())
	}
	_, _ = io.WriteString(w, "\n")
}
