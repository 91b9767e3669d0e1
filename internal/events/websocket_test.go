package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/lucidra/sandbox-server/internal/identity"
)

func newStreamServer(t *testing.T, hub *Hub, sessionID string) *httptest.Server {
	t.Helper()
	h := NewWebSocketHandler(hub, "", true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(identity.ContextWithSessionID(r.Context(), sessionID)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func waitForSubscribers(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.SubscriberCount(userID) != want {
		select {
		case <-deadline:
			t.Fatalf("Expected %d subscribers for %q, got %d", want, userID, hub.SubscriberCount(userID))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWebSocketHandler_DeliversEvents(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub, "ws-session")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	waitForSubscribers(t, hub, "ws-session", 1)

	hub.Publish(Event{Type: TypeXPAwarded, UserID: "ws-session", MissionID: "m1", XPAwarded: 25})

	msgType, payload, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if msgType != websocket.MessageText {
		t.Errorf("Expected a text frame, got %v", msgType)
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("Failed to decode event %q: %v", payload, err)
	}
	if ev.Type != TypeXPAwarded || ev.XPAwarded != 25 || ev.MissionID != "m1" {
		t.Errorf("Unexpected event payload: %+v", ev)
	}
}

func TestWebSocketHandler_IgnoresOtherUsersEvents(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub, "ws-session")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	waitForSubscribers(t, hub, "ws-session", 1)

	hub.Publish(Event{Type: TypeBadgeEarned, UserID: "someone-else", BadgeID: "b1"})
	hub.Publish(Event{Type: TypeXPAwarded, UserID: "ws-session", XPAwarded: 10})

	// The first frame to arrive must be the caller's own event.
	_, payload, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if ev.UserID != "ws-session" || ev.Type != TypeXPAwarded {
		t.Errorf("Expected the caller's xp_awarded event, got %+v", ev)
	}
}

func TestWebSocketHandler_UnsubscribesOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub, "ws-session")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	waitForSubscribers(t, hub, "ws-session", 1)

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitForSubscribers(t, hub, "ws-session", 0)
}

func TestWebSocketHandler_RejectsMissingSession(t *testing.T) {
	h := NewWebSocketHandler(NewHub(), "", true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/progress", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without a session, got %d", rec.Code)
	}
}
