package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func newServer(t *testing.T, hub *Hub, userID int64) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(hub, nil, zerolog.Nop())
	r.GET("/ws", func(c *gin.Context) { h.Serve(c, userID) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_DeliversToUserSockets(t *testing.T) {
	hub := startHub(t)
	url := newServer(t, hub, 42)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetClientsCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.SendToUser(7, EventMessage, map[string]string{"content": "not for you"})
	hub.SendToUser(42, EventMessage, map[string]string{"content": "hello"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventMessage, event.Type)
	assert.Equal(t, "hello", event.Payload["content"])
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := startHub(t)
	url := newServer(t, hub, 3)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.GetClientsCount(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.GetClientsCount(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := startHub(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(hub, []string{"https://footlink.app"}, zerolog.Nop())
	r.GET("/ws", func(c *gin.Context) { h.Serve(c, 1) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_SendWithoutSocketsIsNoop(t *testing.T) {
	hub := startHub(t)
	hub.SendToUser(99, EventMessageRead, nil)
	assert.Equal(t, 0, hub.GetClientsCount(99))
}

func TestClient_AnswersHeartbeat(t *testing.T) {
	hub := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(newServer(t, hub, 5), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventPong, event.Type)
}

func TestClient_OneFramePerEvent(t *testing.T) {
	hub := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(newServer(t, hub, 8), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientsCount(8) == 1 }, time.Second, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		hub.SendToUser(8, EventMessage, map[string]int{"n": i})
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < 3; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var event struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &event), "each frame is a single JSON document")
		assert.Equal(t, i, event.Payload["n"])
	}
}
