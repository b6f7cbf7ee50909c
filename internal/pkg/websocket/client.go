package websocket

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// inbound frames are heartbeats only
	maxInboundSize = 512

	sendBuffer  = 64
	replyBuffer = 4
)

// EventPong answers an inbound {"type":"ping"} frame. Browsers cannot send
// protocol-level pings, so they heartbeat with this instead.
const EventPong = "pong"

type inbound struct {
	Type string `json:"type"`
}

// Client is one live socket of a user
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	logger zerolog.Logger

	// send is owned by the hub, which closes it on unregister
	send chan []byte
	// replies carries heartbeat answers from readPump to writePump; never closed
	replies chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, logger zerolog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		userID:  userID,
		logger:  logger.With().Int64("userID", userID).Logger(),
		send:    make(chan []byte, sendBuffer),
		replies: make(chan []byte, replyBuffer),
	}
}

// readPump runs until the peer goes away. Chat messages are posted over REST;
// the only inbound frame understood here is the heartbeat.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logClose(err)
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg inbound
		if json.Unmarshal(data, &msg) != nil || msg.Type != "ping" {
			continue
		}
		pong, err := json.Marshal(Event{Type: EventPong, Timestamp: time.Now()})
		if err != nil {
			continue
		}
		select {
		case c.replies <- pong:
		default:
		}
	}
}

func (c *Client) logClose(err error) {
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		c.logger.Info().Msg("WebSocket closed by peer")
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
		c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
	default:
		c.logger.Debug().Err(err).Msg("WebSocket read ended")
	}
}

// writePump writes each queued event as its own text frame and keeps the
// connection alive with protocol pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if !c.write(websocket.TextMessage, event) {
				return
			}

		case reply := <-c.replies:
			if !c.write(websocket.TextMessage, reply) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Msg("WebSocket write failed")
		return false
	}
	return true
}
