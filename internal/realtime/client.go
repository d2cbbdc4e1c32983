package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 45 * time.Second
	pingPeriod     = 15 * time.Second
	maxFrameBytes  = 1 << 20
	sendBufferSize = 64
)

// Client is one live websocket connection. The identity fields are set by
// the presence:join frame and are only touched from the read pump, which
// also runs the dispatch, so they need no extra locking.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id         string
	externalID string
	name       string
}

// HandleConn runs a connection until it drops. It blocks in the read pump,
// so callers invoke it from the HTTP handler goroutine of the upgrade.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   uuid.New().String(),
	}

	h.Register(c)
	go c.writePump()
	c.readPump()
}

// trySend queues a frame without blocking. A client whose buffer is full
// simply misses the frame; the catch-up fetch covers it on reload.
func (c *Client) trySend(raw []byte) bool {
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.hub.Logf("Client %s sent a malformed frame {%v}", c.id, err)
			continue
		}
		c.hub.Dispatch(c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
