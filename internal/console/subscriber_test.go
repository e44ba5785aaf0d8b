package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubscriberWebSocketDelivery(t *testing.T) {
	payloads := []string{
		`{"event":"ArticleCreated","data":{"id":1,"title":"a"}}`,
		`{"event":"ArticleUpdated","data":{"id":1,"title":"a2"}}`,
		`{"event":"ArticleDeleted","data":1}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, notificationsPath, r.URL.Path)
		assert.Equal(t, "tok-ws", r.URL.Query().Get("access_token"))

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, p := range payloads {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(p)))
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string

	sub := NewSubscriber(srv.URL, func() string { return "tok-ws" })
	for _, name := range []string{EventArticleCreated, EventArticleUpdated, EventArticleDeleted} {
		name := name
		sub.On(name, func(json.RawMessage) {
			mu.Lock()
			seen = append(seen, name)
			mu.Unlock()
		})
	}
	sub.Start(ctx)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{EventArticleCreated, EventArticleUpdated, EventArticleDeleted}, seen)
}

func TestSubscriberFallsBackToLongPolling(t *testing.T) {
	var mu sync.Mutex
	var sessions []string
	polls := 0

	mux := http.NewServeMux()
	// the upgrade endpoint refuses to speak websocket
	mux.HandleFunc(notificationsPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upgrades not allowed here", http.StatusBadRequest)
	})
	mux.HandleFunc(notificationsPath+"/poll", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		polls++
		n := polls
		sessions = append(sessions, r.URL.Query().Get("session"))
		mu.Unlock()

		assert.Equal(t, "Bearer tok-poll", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			_, _ = w.Write([]byte(`{"events":[{"event":"ClientCreated","data":{"clientId":5}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got json.RawMessage
	var gotMu sync.Mutex

	sub := NewSubscriber(srv.URL, func() string { return "tok-poll" })
	sub.PollWait = 1 * time.Second
	sub.On(EventClientCreated, func(data json.RawMessage) {
		gotMu.Lock()
		got = data
		gotMu.Unlock()
	})
	sub.Start(ctx)

	waitFor(t, func() bool {
		gotMu.Lock()
		defer gotMu.Unlock()
		return got != nil
	})

	gotMu.Lock()
	assert.JSONEq(t, `{"clientId":5}`, string(got))
	gotMu.Unlock()

	// every poll of one fallback session reuses the same session id
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return polls >= 2
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, sessions[0], sessions[1])
	assert.NotEmpty(t, sessions[0])
}

func TestSubscriberReconnectsAfterTransportLoss(t *testing.T) {
	var mu sync.Mutex
	dials := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dials++
		n := dials
		mu.Unlock()

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		if n == 1 {
			// first connection dies immediately
			conn.Close()
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"ArticleCreated","data":{"id":1}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan struct{}, 1)
	sub := NewSubscriber(srv.URL, nil)
	sub.ReconnectDelay = 20 * time.Millisecond
	sub.On(EventArticleCreated, func(json.RawMessage) {
		select {
		case delivered <- struct{}{}:
		default:
		}
	})
	sub.Start(ctx)

	select {
	case <-delivered:
	case <-time.After(3 * time.Second):
		t.Fatal("no event after reconnect")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, dials, 2)
}

func TestWebsocketURL(t *testing.T) {
	sub := NewSubscriber("http://localhost:8080", func() string { return "abc" })
	u, err := sub.websocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/hubs/notifications?access_token=abc", u)

	sub = NewSubscriber("https://admin.example.com", nil)
	u, err = sub.websocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://admin.example.com/hubs/notifications", u)
}
