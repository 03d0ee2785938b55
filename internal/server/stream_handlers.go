package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"gameshow/internal/wshub"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// handleEvents streams session events to the contestant viewer.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	msgChan := sess.Broadcaster.Subscribe()
	defer sess.Broadcaster.Unsubscribe(msgChan)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgChan:
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Data, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

// handleConsole upgrades the host console to a websocket that receives
// sound cues and control state. Nothing is read from the client.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to accept", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	sess.Hub.Register(client)
	defer sess.Hub.Unregister(client.ID)
	slog.DebugContext(r.Context(), "console connected", "code", sess.Code, "client", client.ID)

	sess.Hub.UndoState(sess.Undo.CanUndo())
	sess.Hub.PauseState(sess.Paused())

	ctx := conn.CloseRead(r.Context())
	client.WritePump(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.Archive != nil {
		if err := s.Archive.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
