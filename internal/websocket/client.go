package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"itinerary-collab/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one authenticated websocket connection.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int
	name   string
	email  string

	// Room subscriptions. Only the hub goroutine touches these.
	editing map[int]struct{}
	chats   map[int]struct{}

	closeOnce sync.Once
}

// inbound is a frame read from a client, not yet decoded past the envelope.
type inbound struct {
	client *Client
	event  string
	data   json.RawMessage
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int, name, email string) *Client {
	return &Client{
		id:      uuid.NewString(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.cfg.SendBuffer),
		userID:  userID,
		name:    name,
		email:   email,
		editing: make(map[int]struct{}),
		chats:   make(map[int]struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() int {
	return c.userID
}

// ReadPump forwards frames to the hub until the connection fails, then
// unregisters the client. Transport closure is the only disconnect signal.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.closeTransport()
	}()

	pongWait := c.hub.cfg.PongWait
	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("WebSocket error on connection %s: %v", c.id, err)
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			env = models.Envelope{}
		}

		select {
		case c.hub.inbound <- inbound{client: c, event: env.Event, data: env.Data}:
		case <-c.hub.done:
			return
		}
	}
}

// WritePump drains the send buffer onto the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	writeWait := c.hub.cfg.WriteWait
	ticker := time.NewTicker(c.hub.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.closeTransport()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Debug("Write error on connection %s: %v", c.id, err)
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

// closeTransport closes the socket, which ends ReadPump and triggers the
// normal disconnect path.
func (c *Client) closeTransport() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
