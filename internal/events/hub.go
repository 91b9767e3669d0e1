// Package events fans progression events out to connected dashboard
// clients.
package events

import (
	"sync"
)

// Event types published by the sandbox facade.
const (
	TypeXPAwarded        = "xp_awarded"
	TypeBadgeEarned      = "badge_earned"
	TypeMissionCompleted = "mission_completed"
)

// Event is one progression update delivered to a user's subscribers.
type Event struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	MissionID string `json:"missionId,omitempty"`
	SubtaskID string `json:"subtaskId,omitempty"`
	XPAwarded int    `json:"xpAwarded,omitempty"`
	BadgeID   string `json:"badgeId,omitempty"`
	TotalXP   int    `json:"totalXP,omitempty"`
	Level     int    `json:"level,omitempty"`
}

// Subscription is one subscriber's event channel. Close it when the
// client disconnects.
type Subscription struct {
	C      chan Event
	userID string
	hub    *Hub
}

// Close removes the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub routes events to per-user subscribers. Publishing never blocks;
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for a user's events.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, 16),
		userID: userID,
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
	close(sub.C)
}

// Publish delivers the event to every subscriber of its user.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.UserID] {
		select {
		case sub.C <- ev:
		default:
			// Slow consumer; drop rather than block the publisher.
		}
	}
}

// SubscriberCount returns the number of live subscriptions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
