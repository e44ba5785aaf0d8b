package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// per-session poll buffer; oldest events are dropped on overflow
	sessionQueueSize = 256

	sessionIdleTimeout = 2 * time.Minute
)

// pollSession buffers events for one long-poll consumer between polls.
type pollSession struct {
	queue    []Event
	notify   chan struct{}
	lastSeen time.Time
}

// Hub fans broadcast events out to every connected websocket and every
// registered long-poll session. The poll path exists for deployments
// where the websocket upgrade is blocked by a proxy.
type Hub struct {
	mu        sync.Mutex
	wsClients map[*websocket.Conn]struct{}
	sessions  map[string]*pollSession
}

type Stats struct {
	WSClients    int `json:"ws_clients"`
	PollSessions int `json:"poll_sessions"`
}

func NewHub() *Hub {
	return &Hub{
		wsClients: make(map[*websocket.Conn]struct{}),
		sessions:  make(map[string]*pollSession),
	}
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.wsClients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Broadcast marshals payload and delivers one event to all consumers.
// Delivery is best effort: dead websockets are dropped, full poll
// queues lose their oldest entry.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[realtime] marshal %s payload: %v", event, err)
		return
	}
	b, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}

	for _, s := range h.sessions {
		s.queue = append(s.queue, Event{Event: event, Data: data})
		if len(s.queue) > sessionQueueSize {
			s.queue = s.queue[len(s.queue)-sessionQueueSize:]
		}
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// Poll drains the session's queued events, waiting up to wait for the
// first one. An unknown session id registers a new session, so the
// first poll doubles as the subscribe call.
func (h *Hub) Poll(sessionID string, wait time.Duration) []Event {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		s = &pollSession{notify: make(chan struct{}, 1)}
		h.sessions[sessionID] = s
	}
	s.lastSeen = time.Now()

	if len(s.queue) > 0 {
		events := s.queue
		s.queue = nil
		h.mu.Unlock()
		return events
	}
	notify := s.notify
	h.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-notify:
	case <-timer.C:
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s.lastSeen = time.Now()
	events := s.queue
	s.queue = nil
	return events
}

// PurgeIdle drops poll sessions that have not polled recently.
func (h *Hub) PurgeIdle() {
	cutoff := time.Now().Add(-sessionIdleTimeout)
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(h.sessions, id)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		WSClients:    len(h.wsClients),
		PollSessions: len(h.sessions),
	}
}
