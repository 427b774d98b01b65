package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pchat-api/internal/auth"
	"pchat-api/internal/database"
	"pchat-api/internal/models"
	"pchat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func wsServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WebSocketHandler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(realtime.Frame{Event: event, Data: raw}))
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame realtime.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocket_RejectsMissingToken(t *testing.T) {
	srv := wsServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_RejectsInvalidToken(t *testing.T) {
	srv := wsServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_RejectsUnknownUser(t *testing.T) {
	useInMemoryDB(t)
	srv := wsServer(t)

	token, err := auth.GenerateToken("no-such-user", "ghost")
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_JoinThenMessageEndToEnd(t *testing.T) {
	useInMemoryDB(t)
	alice := seedUser(t, "Alice", "ws-alice", "pw-123456")
	bob := seedUser(t, "Bob", "ws-bob", "pw-123456")
	srv := wsServer(t)

	tokenA, err := auth.GenerateToken(alice.ID, alice.Username)
	require.NoError(t, err)
	tokenB, err := auth.GenerateToken(bob.ID, bob.Username)
	require.NoError(t, err)

	members := []string{alice.ID, bob.ID}

	// Alice connects and joins; receiving her own snapshot confirms
	// her binding is live before Bob enters
	connA := dialWS(t, srv, tokenA)
	writeFrame(t, connA, realtime.EventChatJoined, realtime.PresenceIn{
		UserID:  alice.ID,
		Members: []string{alice.ID},
	})
	frameA := readFrame(t, connA)
	require.Equal(t, realtime.EventOnlineUsers, frameA.Event)

	// Bob joins: both resolved members get the full online snapshot
	connB := dialWS(t, srv, tokenB)
	writeFrame(t, connB, realtime.EventChatJoined, realtime.PresenceIn{
		UserID:  bob.ID,
		Members: members,
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := readFrame(t, conn)
		require.Equal(t, realtime.EventOnlineUsers, frame.Event)
		var online []string
		require.NoError(t, json.Unmarshal(frame.Data, &online))
		require.Contains(t, online, alice.ID)
		require.Contains(t, online, bob.ID)
	}

	// Alice sends a message: envelope then alert on both connections
	writeFrame(t, connA, realtime.EventNewMessage, realtime.NewMessageIn{
		ChatID:  "chat-ws",
		Members: members,
		Message: "hello over the wire",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := readFrame(t, conn)
		require.Equal(t, realtime.EventNewMessage, frame.Event)
		var out realtime.NewMessageOut
		require.NoError(t, json.Unmarshal(frame.Data, &out))
		require.Equal(t, "hello over the wire", out.Message.Content)
		require.Equal(t, alice.ID, out.Message.Sender.ID)

		frame = readFrame(t, conn)
		require.Equal(t, realtime.EventNewMessageAlert, frame.Event)
	}

	// the durable record lands independently of delivery
	require.Eventually(t, func() bool {
		var count int64
		database.GetDB().Model(&models.Message{}).
			Where("chat_id = ? AND sender_id = ?", "chat-ws", alice.ID).
			Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Alice disconnects without CHAT_LEAVED: Bob still gets the
	// updated global snapshot
	require.NoError(t, connA.Close())
	frame := readFrame(t, connB)
	require.Equal(t, realtime.EventOnlineUsers, frame.Event)
	var online []string
	require.NoError(t, json.Unmarshal(frame.Data, &online))
	require.NotContains(t, online, alice.ID)
}
