// internal/chat/client.go

package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

// Client is one user's websocket connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	userID  int64
	service Service

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, service Service) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
		userID:  userID,
		service: service,
	}
}

func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// close signals the write pump to stop. The send channel is never
// closed: the hub may race a delivery against a disconnect, and a
// send into a buffered open channel is harmless where a send into
// a closed one would panic.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			break
		}
		c.processMessage(message)
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
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

func (c *Client) processMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid message")
		return
	}

	ctx := context.Background()

	switch WSMessageType(msg.Type) {
	case WSTypeMessage:
		var req SendMessageRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError("invalid message payload")
			return
		}
		if _, err := c.service.SendMessage(ctx, c.userID, &req); err != nil {
			c.sendError(err.Error())
		}

	case WSTypeTyping, WSTypeStopTyping:
		var event TypingEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		c.service.RelayTyping(ctx, c.userID, event.ConversationID, WSMessageType(msg.Type) == WSTypeTyping)

	case WSTypeRead:
		var event ReadEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		if err := c.service.MarkRead(ctx, c.userID, event.ConversationID); err != nil {
			c.sendError(err.Error())
		}

	default:
		log.Printf("chat: unknown ws message type %q from user %d", msg.Type, c.userID)
	}
}

func (c *Client) sendError(message string) {
	event := NewWSMessage(WSTypeError, map[string]string{"message": message})
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
