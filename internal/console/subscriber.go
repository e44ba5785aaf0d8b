package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event names pushed by the notification channel, one
// created/updated/deleted triple per collection kind.
const (
	EventArticleCreated = "ArticleCreated"
	EventArticleUpdated = "ArticleUpdated"
	EventArticleDeleted = "ArticleDeleted"

	EventClientCreated = "ClientCreated"
	EventClientUpdated = "ClientUpdated"
	EventClientDeleted = "ClientDeleted"
)

const notificationsPath = "/hubs/notifications"

// Handler consumes one event payload. Created/updated events carry a
// raw record; deleted events carry the bare identity.
type Handler func(data json.RawMessage)

type event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Subscriber maintains one long-lived connection to the notification
// channel and dispatches incoming events to registered handlers in
// arrival order. It prefers the websocket transport and falls back to
// long polling where the upgrade is blocked; either way it reconnects
// on transport loss until its context is cancelled. Connect failures
// are logged, never surfaced as fatal: the view stays usable on REST
// data alone.
type Subscriber struct {
	baseURL string
	token   TokenSource

	// ReconnectDelay is the pause between connection attempts.
	ReconnectDelay time.Duration
	// PollWait is the long-poll hold time requested per poll.
	PollWait time.Duration

	dialer *websocket.Dialer
	http   *http.Client

	mu       sync.Mutex
	handlers map[string]Handler
}

func NewSubscriber(baseURL string, token TokenSource) *Subscriber {
	return &Subscriber{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		ReconnectDelay: 1 * time.Second,
		PollWait:       25 * time.Second,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		// no overall timeout: requests are held open for PollWait
		http:     &http.Client{},
		handlers: make(map[string]Handler),
	}
}

// On registers the handler for an event name. Events without a handler
// are ignored.
func (s *Subscriber) On(name string, fn Handler) {
	s.mu.Lock()
	s.handlers[name] = fn
	s.mu.Unlock()
}

// Start runs the subscription loop on its own goroutine; cancelling ctx
// tears the connection down unconditionally.
func (s *Subscriber) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run blocks until ctx is cancelled, reconnecting after every transport
// loss.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.runWebSocket(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if isUpgradeRefused(err) {
				log.Printf("[console] websocket unavailable, using long polling: %v", err)
				if err := s.runPoll(ctx); err != nil && ctx.Err() == nil {
					log.Printf("[console] poll transport lost: %v", err)
				}
			} else {
				log.Printf("[console] notification channel lost: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.ReconnectDelay):
		}
	}
}

func (s *Subscriber) runWebSocket(ctx context.Context) error {
	endpoint, err := s.websocketURL()
	if err != nil {
		return err
	}

	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", notificationsPath, err)
	}
	defer conn.Close()

	log.Printf("[console] connected to %s", notificationsPath)

	// unblock the read loop on teardown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var ev event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("[console] skipping malformed event: %v", err)
			continue
		}
		s.dispatch(ev)
	}
}

func (s *Subscriber) runPoll(ctx context.Context) error {
	session := uuid.NewString()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		events, err := s.pollOnce(ctx, session)
		if err != nil {
			return err
		}
		for _, ev := range events {
			s.dispatch(ev)
		}
	}
}

func (s *Subscriber) pollOnce(ctx context.Context, session string) ([]event, error) {
	q := url.Values{}
	q.Set("session", session)
	q.Set("wait", fmt.Sprintf("%d", int(s.PollWait.Seconds())))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+notificationsPath+"/poll?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if s.token != nil {
		if token := s.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Events []event `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return payload.Events, nil
}

func (s *Subscriber) dispatch(ev event) {
	s.mu.Lock()
	fn := s.handlers[ev.Event]
	s.mu.Unlock()
	if fn != nil {
		fn(ev.Data)
	}
}

func (s *Subscriber) websocketURL() (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	q := url.Values{}
	if s.token != nil {
		if token := s.token(); token != "" {
			q.Set("access_token", token)
		}
	}
	return (&url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     strings.TrimSuffix(u.Path, "/") + notificationsPath,
		RawQuery: q.Encode(),
	}).String(), nil
}

// isUpgradeRefused reports whether the websocket dial died on the
// handshake rather than mid-stream, which is the signature of a proxy
// that blocks upgrades.
func isUpgradeRefused(err error) bool {
	return errors.Is(err, websocket.ErrBadHandshake)
}
