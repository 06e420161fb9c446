// internal/chat/hub_test.go

package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hubStubService covers only the hooks the hub itself calls.
type hubStubService struct {
	Service
}

func (hubStubService) PendingMessages(ctx context.Context, userID int64) ([]*Message, error) {
	return nil, nil
}

func (hubStubService) ConversationPartners(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func TestHubSendDuringReconnectChurn(t *testing.T) {
	hub := NewHub()
	hub.Bind(hubStubService{})
	go hub.Run()

	// Hammer deliveries to one user while their connection is
	// repeatedly replaced and torn down. A delivery racing a
	// disconnect must never panic the hub.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	event := NewWSMessage(WSTypeMessage, map[string]string{"body": "hello"})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.SendToUser(1, event)
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		client := NewClient(hub, nil, 1, nil)
		hub.register <- client
		hub.unregister <- client
	}

	close(stop)
	wg.Wait()
	hub.Shutdown()

	assert.False(t, hub.IsUserOnline(1))
	assert.Equal(t, 0, hub.ActiveConnections())
}

func TestHubSendToClosedClientReportsOffline(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, 7, nil)

	hub.clientsMux.Lock()
	hub.clients[7] = client
	hub.clientsMux.Unlock()

	client.close()
	client.close() // idempotent

	delivered := hub.SendToUser(7, NewWSMessage(WSTypePresence, PresenceEvent{UserID: 7, Status: "online"}))
	assert.False(t, delivered)
}
