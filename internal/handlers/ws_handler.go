package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"pchat-api/internal/auth"
	"pchat-api/internal/middleware"
	"pchat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsClient implements realtime.Conn by wrapping a websocket connection.
// Writes are serialized: fan-outs from other users' dispatch loops and
// the ping goroutine all hit the same conn.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(payload []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return false
	}
	return true
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler authenticates the handshake, upgrades the
// connection, binds it to the resolved user and runs the read loop.
// A missing or invalid credential rejects the attempt before the
// upgrade; no state is mutated for a rejected handshake.
func WebSocketHandler(c *gin.Context) {
	tokenString := middleware.TokenFromRequest(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login to access this route"})
		return
	}
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	user, ok := lookupUser(claims.UserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login to access this route"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	client := &wsClient{conn: conn}
	router := Realtime()
	router.Connect(user, client)

	// Heartbeat: send periodic pings; close on error
	pingTicker := time.NewTicker(30 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					// ping failed; reader loop will exit on next error
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pingTicker.Stop()
		router.Disconnect(user, client)
		client.Close()
	}()

	// Reader loop: one frame at a time, in arrival order
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Normal close or error; exit loop
			return
		}
		var frame realtime.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("websocket: malformed frame from %s: %v", user.ID, err)
			continue
		}
		router.Dispatch(user, client, frame)
	}
}
