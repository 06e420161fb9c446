// internal/chat/hub.go

package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub maintains active websocket connections, one per user
type Hub struct {
	clients    map[int64]*Client
	clientsMux sync.RWMutex

	register   chan *Client
	unregister chan *Client

	service Service

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Bind attaches the service after construction. Hub and service
// reference each other, so one side has to be wired late.
func (h *Hub) Bind(service Service) {
	h.service = service
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			h.cleanup()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	// A reconnect replaces the previous connection
	if old, exists := h.clients[client.userID]; exists {
		old.close()
	}
	h.clients[client.userID] = client
	total := len(h.clients)
	h.clientsMux.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.onConnect(client)
	}()

	log.Printf("chat: user %d connected (%d online)", client.userID, total)
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	current, exists := h.clients[client.userID]
	if exists && current == client {
		delete(h.clients, client.userID)
	}
	total := len(h.clients)
	h.clientsMux.Unlock()

	if !exists || current != client {
		return
	}
	client.close()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.notifyPresence(client.userID, "offline")
	}()

	log.Printf("chat: user %d disconnected (%d online)", client.userID, total)
}

// onConnect flushes messages that arrived while the user was offline
// and tells their match partners they came online.
func (h *Hub) onConnect(client *Client) {
	pending, err := h.service.PendingMessages(h.ctx, client.userID)
	if err != nil {
		log.Printf("chat: pending messages for user %d: %v", client.userID, err)
	}
	for _, msg := range pending {
		h.SendToUser(client.userID, NewWSMessage(WSTypeMessage, msg))
	}

	h.notifyPresence(client.userID, "online")
}

func (h *Hub) notifyPresence(userID int64, status string) {
	partners, err := h.service.ConversationPartners(h.ctx, userID)
	if err != nil {
		log.Printf("chat: partners for user %d: %v", userID, err)
		return
	}

	event := NewWSMessage(WSTypePresence, PresenceEvent{UserID: userID, Status: status})
	for _, partnerID := range partners {
		h.SendToUser(partnerID, event)
	}
}

// SendToUser delivers a websocket event to userID if they are
// connected. Returns false when they are offline.
func (h *Hub) SendToUser(userID int64, message WSMessage) bool {
	h.clientsMux.RLock()
	client, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return false
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("chat: marshal ws message: %v", err)
		return false
	}

	select {
	case <-client.done:
		// Connection already closing, treat as offline
		return false
	case client.send <- data:
		return true
	default:
		// Slow consumer, drop the connection
		go func() { h.unregister <- client }()
		return false
	}
}

func (h *Hub) IsUserOnline(userID int64) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) ActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	for _, client := range h.clients {
		client.close()
	}
	h.clients = make(map[int64]*Client)
	h.clientsMux.Unlock()
}

// NewWSMessage wraps a payload in the websocket envelope
func NewWSMessage(msgType WSMessageType, data interface{}) WSMessage {
	return WSMessage{
		Type:      string(msgType),
		Data:      mustMarshal(data),
		Timestamp: time.Now(),
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("chat: marshal payload: %v", err)
		return json.RawMessage(`{}`)
	}
	return data
}
