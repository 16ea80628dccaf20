package api

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/checkout"
)

// UserSession bundles the per-user pieces: the cart store and its checkout
// orchestrator.
type UserSession struct {
	Cart     *cart.Store
	Checkout *checkout.Orchestrator
}

// SessionFactory builds a UserSession for a user id; wiring of shared
// clients and the repository happens in main.
type SessionFactory func(userID string) *UserSession

// Registry lazily creates one UserSession per authenticated user and
// rehydrates the cart from durable storage exactly once.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*UserSession
	factory  SessionFactory
}

func NewRegistry(factory SessionFactory) *Registry {
	return &Registry{
		sessions: make(map[string]*UserSession),
		factory:  factory,
	}
}

func (r *Registry) ForUser(ctx context.Context, userID string) (*UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[userID]; ok {
		return session, nil
	}

	session := r.factory(userID)
	if err := session.Cart.Rehydrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to rehydrate cart: %w", err)
	}
	r.sessions[userID] = session
	return session, nil
}
