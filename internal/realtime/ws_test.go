package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminhub/internal/auth"
)

var testTokens = auth.TokenService{
	Secret:   []byte("ws-test-secret"),
	Issuer:   "adminhub-test",
	Duration: time.Hour,
}

func newHubServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	r := gin.New()
	r.GET("/hubs/notifications", WSHandler(hub, testTokens))
	r.GET("/hubs/notifications/poll", PollHandler(hub, testTokens))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func signToken(t *testing.T) string {
	t.Helper()
	token, _, err := testTokens.Sign(&auth.Account{ID: 1, Username: "ws"})
	require.NoError(t, err)
	return token
}

func TestWSHandlerDeliversBroadcasts(t *testing.T) {
	srv, hub := newHubServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/hubs/notifications?access_token=" + signToken(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	// first frame is the welcome message
	var ev Event
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "welcome", ev.Event)

	// the hub registers the connection before the welcome is written,
	// so a broadcast from here on is guaranteed to reach it
	hub.Broadcast(ArticleCreated, map[string]any{"id": 12, "title": "pushed"})

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, ArticleCreated, ev.Event)
	assert.JSONEq(t, `{"id":12,"title":"pushed"}`, string(ev.Data))
}

func TestWSHandlerRejectsBadToken(t *testing.T) {
	srv, _ := newHubServer(t)

	resp, err := http.Get(srv.URL + "/hubs/notifications")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/hubs/notifications?access_token=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPollHandler(t *testing.T) {
	srv, hub := newHubServer(t)
	token := signToken(t)

	get := func(target string, auth bool) (*http.Response, error) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+target, nil)
		require.NoError(t, err)
		if auth {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return http.DefaultClient.Do(req)
	}

	// no token
	resp, err := get("/hubs/notifications/poll?session=s1&wait=1", false)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// no session
	resp, err = get("/hubs/notifications/poll?wait=1", true)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// registering poll comes back empty
	resp, err = get("/hubs/notifications/poll?session=s1&wait=1", true)
	require.NoError(t, err)
	var payload struct {
		Events []Event `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Empty(t, payload.Events)

	hub.Broadcast(ClientDeleted, 4)

	resp, err = get("/hubs/notifications/poll?session=s1&wait=1", true)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Len(t, payload.Events, 1)
	assert.Equal(t, ClientDeleted, payload.Events[0].Event)
	assert.Equal(t, "4", string(payload.Events[0].Data))
}
