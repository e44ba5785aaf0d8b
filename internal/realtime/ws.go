package realtime

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"adminhub/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

func WSHandler(hub *Hub, tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		if _, err := tokens.Parse(raw); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(ws)
		log.Println("[ws] client connected")

		// Optional welcome message
		_ = ws.WriteMessage(
			websocket.TextMessage,
			[]byte(`{"event":"welcome","data":{"transport":"websocket"}}`),
		)

		// Keep connection alive (ignore incoming messages)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Println("[ws] client disconnected")
	}
}

// PollHandler serves the long-poll fallback transport. Clients supply a
// session id of their choosing and repeatedly GET; each response returns
// the events queued since the previous poll.
func PollHandler(hub *Hub, tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		if _, err := tokens.Parse(raw); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		session := c.Query("session")
		if session == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "session required"})
			return
		}

		wait := 25 * time.Second
		if s := c.Query("wait"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs > 0 && secs <= 60 {
				wait = time.Duration(secs) * time.Second
			}
		}

		events := hub.Poll(session, wait)
		if events == nil {
			events = []Event{}
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
