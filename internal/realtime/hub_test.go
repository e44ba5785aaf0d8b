package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollRegistersSessionAndDrainsQueue(t *testing.T) {
	h := NewHub()

	// first poll registers the session; nothing queued yet
	events := h.Poll("session-1", 10*time.Millisecond)
	assert.Empty(t, events)
	assert.Equal(t, 1, h.Stats().PollSessions)

	h.Broadcast(ArticleCreated, map[string]any{"id": 1})
	h.Broadcast(ArticleDeleted, 1)

	events = h.Poll("session-1", 10*time.Millisecond)
	require.Len(t, events, 2)
	assert.Equal(t, ArticleCreated, events[0].Event)
	assert.Equal(t, ArticleDeleted, events[1].Event)
	assert.JSONEq(t, `{"id":1}`, string(events[0].Data))

	// drained: a second poll comes back empty
	events = h.Poll("session-1", 10*time.Millisecond)
	assert.Empty(t, events)
}

func TestPollWakesOnBroadcast(t *testing.T) {
	h := NewHub()
	h.Poll("session-1", time.Millisecond)

	done := make(chan []Event, 1)
	go func() {
		done <- h.Poll("session-1", 5*time.Second)
	}()

	// give the poller time to block
	time.Sleep(50 * time.Millisecond)
	h.Broadcast(ClientUpdated, map[string]any{"clientId": 3})

	select {
	case events := <-done:
		require.Len(t, events, 1)
		assert.Equal(t, ClientUpdated, events[0].Event)
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not wake on broadcast")
	}
}

func TestBroadcastFansOutToEverySession(t *testing.T) {
	h := NewHub()
	h.Poll("a", time.Millisecond)
	h.Poll("b", time.Millisecond)

	h.Broadcast(ArticleUpdated, map[string]any{"id": 7})

	for _, session := range []string{"a", "b"} {
		events := h.Poll(session, 10*time.Millisecond)
		require.Len(t, events, 1, "session %s", session)
		assert.Equal(t, ArticleUpdated, events[0].Event)
	}
}

func TestSessionQueueDropsOldestOnOverflow(t *testing.T) {
	h := NewHub()
	h.Poll("slow", time.Millisecond)

	for i := 0; i < sessionQueueSize+10; i++ {
		h.Broadcast(ArticleCreated, map[string]any{"id": i})
	}

	events := h.Poll("slow", 10*time.Millisecond)
	require.Len(t, events, sessionQueueSize)
	// the first ten broadcasts were dropped
	assert.JSONEq(t, `{"id":10}`, string(events[0].Data))
}

func TestPurgeIdleDropsStaleSessions(t *testing.T) {
	h := NewHub()
	h.Poll("stale", time.Millisecond)
	h.Poll("fresh", time.Millisecond)

	h.mu.Lock()
	h.sessions["stale"].lastSeen = time.Now().Add(-3 * time.Minute)
	h.mu.Unlock()

	h.PurgeIdle()

	stats := h.Stats()
	assert.Equal(t, 1, stats.PollSessions)
	h.mu.Lock()
	_, ok := h.sessions["fresh"]
	h.mu.Unlock()
	assert.True(t, ok)
}

func TestBroadcastUnmarshalablePayloadIsDropped(t *testing.T) {
	h := NewHub()
	h.Poll("s", time.Millisecond)

	h.Broadcast(ArticleCreated, make(chan int))

	events := h.Poll("s", 10*time.Millisecond)
	assert.Empty(t, events)
}
