package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/tictactoe-arena/internal/app"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ws streams JSON state snapshots. Clients may send {"type":"request_status"}
// to get a fresh snapshot; idle connections get a ping message.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	requests := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg wsMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				continue
			}
			if msg.Type == "request_status" {
				select {
				case requests <- struct{}{}:
				default:
				}
			}
		}
	}()

	if err := h.writeStatus(conn, id); err != nil {
		return
	}
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload, _ := json.Marshal(wsMessage{Type: "ping"})
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := h.writeStatus(conn, id); err != nil {
				return
			}
			lastWrite = time.Now()
		case <-requests:
			if err := h.writeStatus(conn, id); err != nil {
				return
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < h.heartbeat {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return
			}
			lastWrite = time.Now()
		}
	}
}

func (h *handlers) writeStatus(conn *websocket.Conn, id string) error {
	gs, ok := h.svc.Get(id)
	if !ok {
		return app.ErrNotFound
	}
	payload, err := json.Marshal(stateFromGame(*gs))
	if err != nil {
		return err
	}
	msg, err := json.Marshal(wsMessage{Type: "status", Payload: payload})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}
