// Package sse broadcasts cart updates to connected UI surfaces, so totals
// shown in the navbar stay in sync with mutations made anywhere else.
package sse

import (
	"context"
	"sync"

	"storefront/internal/models"
)

// CartEventEmitter fans each user's cart snapshots out to that user's open
// streams.
type CartEventEmitter struct {
	mu      sync.RWMutex
	clients map[string][]chan models.Cart
}

func NewCartEventEmitter() *CartEventEmitter {
	return &CartEventEmitter{
		clients: make(map[string][]chan models.Cart),
	}
}

// Subscribe registers a stream for the user's cart updates. The channel is
// removed and closed when ctx is done.
func (e *CartEventEmitter) Subscribe(ctx context.Context, userID string) chan models.Cart {
	clientChan := make(chan models.Cart, 10)

	e.mu.Lock()
	e.clients[userID] = append(e.clients[userID], clientChan)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.unsubscribe(userID, clientChan)
	}()

	return clientChan
}

// Broadcast delivers a snapshot to every stream of the user. Slow clients
// are skipped rather than blocking the mutation path.
func (e *CartEventEmitter) Broadcast(userID string, snapshot models.Cart) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, clientChan := range e.clients[userID] {
		select {
		case clientChan <- snapshot:
		default:
		}
	}
}

func (e *CartEventEmitter) unsubscribe(userID string, clientChan chan models.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()

	channels := e.clients[userID]
	for i, ch := range channels {
		if ch == clientChan {
			e.clients[userID] = append(channels[:i], channels[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[userID]) == 0 {
		delete(e.clients, userID)
	}
}
