package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/lucidra/sandbox-server/internal/identity"
)

const writeTimeout = 5 * time.Second

// WebSocketHandler streams progression events to dashboard clients.
type WebSocketHandler struct {
	hub           *Hub
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(hub *Hub, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP upgrades the connection and forwards the caller's events
// until the client disconnects.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns(),
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("WebSocket close error", "error", closeErr)
		}
	}()

	sub := h.hub.Subscribe(sessionID)
	defer sub.Close()

	slog.Info("Progress stream connected", "session_id", sessionID)

	// CloseRead drains and discards client frames; its context ends
	// when the client goes away.
	ctx := ws.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := h.write(ctx, ws, ev); err != nil {
				slog.Debug("Progress stream write failed", "error", err, "session_id", sessionID)
				return
			}
		}
	}
}

func (h *WebSocketHandler) write(ctx context.Context, ws *websocket.Conn, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, payload)
}

func (h *WebSocketHandler) originPatterns() []string {
	if h.isDev || h.allowedOrigin == "" {
		return []string{"*"}
	}
	return []string{h.allowedOrigin}
}
