// Package cart is the single source of truth for a user's pending ticket
// selections. Every mutation recomputes the derived totals from the item
// collection and synchronously writes the result through the Repository, so
// an interrupted session resumes with the last committed cart.
package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/money"
)

// Repository persists the item collection under the user's namespace.
// Totals are never persisted; they are recomputed on load.
type Repository interface {
	Load(ctx context.Context, userID string) ([]models.LineItem, error)
	Save(ctx context.Context, userID string, items []models.LineItem) error
	Clear(ctx context.Context, userID string) error
}

// Subscriber receives a snapshot of the cart after each mutation.
type Subscriber func(models.Cart)

// Store holds one user's cart. All mutations are atomic with respect to the
// totals recomputation: the whole collection is rewritten under one lock.
type Store struct {
	mu     sync.Mutex
	userID string
	repo   Repository
	logger *logger.Logger

	items      []models.LineItem
	totalItems int
	totalPrice float64
	subs       []Subscriber
}

func NewStore(repo Repository, userID string, log *logger.Logger) *Store {
	return &Store{
		userID: userID,
		repo:   repo,
		logger: log,
	}
}

// Rehydrate loads the persisted item collection and recomputes totals.
// Called once at session start; an empty record yields an empty cart.
func (s *Store) Rehydrate(ctx context.Context) error {
	items, err := s.repo.Load(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("failed to load cart for user %s: %w", s.userID, err)
	}

	s.mu.Lock()
	s.items = items
	s.recompute()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.LogCart("REHYDRATE", s.userID, fmt.Sprintf("%d items restored", snapshot.TotalItems))
	s.notify(snapshot)
	return nil
}

// AddItem inserts a new line item, or sums the quantity onto an existing
// entry with the same ticket type id. On a merge the existing entry's other
// fields are kept, including the unit price captured at first add.
// Quantity must be a positive integer; validating that is the caller's job.
func (s *Store) AddItem(ctx context.Context, item models.LineItem) error {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].TicketTypeID == item.TicketTypeID {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.recompute()
	err := s.persistLocked(ctx)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.LogCart("ADD", s.userID, fmt.Sprintf("%s x%d (merged=%v)", item.TicketTypeID, item.Quantity, merged))
	s.notify(snapshot)
	return err
}

// RemoveItem deletes the entry with the given ticket type id. An absent id
// is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, ticketTypeID string) error {
	s.mu.Lock()
	found := false
	kept := s.items[:0]
	for _, item := range s.items {
		if item.TicketTypeID == ticketTypeID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		s.mu.Unlock()
		return nil
	}
	s.items = kept
	s.recompute()
	err := s.persistLocked(ctx)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.LogCart("REMOVE", s.userID, ticketTypeID)
	s.notify(snapshot)
	return err
}

// UpdateQuantity sets the quantity of an existing entry directly. A
// quantity below 1 is the caller's signal to call RemoveItem instead; the
// store does not auto-delete on zero. An absent id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, ticketTypeID string, quantity int) error {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].TicketTypeID == ticketTypeID {
			s.items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil
	}
	s.recompute()
	err := s.persistLocked(ctx)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.LogCart("UPDATE", s.userID, fmt.Sprintf("%s -> %d", ticketTypeID, quantity))
	s.notify(snapshot)
	return err
}

// Clear empties the cart and removes the persisted record. Used after a
// verified checkout or an explicit user action.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.recompute()
	err := s.repo.Clear(ctx, s.userID)
	if err != nil {
		err = fmt.Errorf("failed to clear cart for user %s: %w", s.userID, err)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.LogCart("CLEAR", s.userID, "cart emptied")
	s.notify(snapshot)
	return err
}

// Snapshot returns a consistent copy of the cart. The copy is safe to hold
// across later mutations.
func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer invoked with a snapshot after every
// mutation. Subscribers must not call back into the store synchronously.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

func (s *Store) recompute() {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range s.items {
		totalItems += item.Quantity
		totalPrice += money.LineTotal(item.UnitPrice, item.Quantity)
	}
	s.totalItems = totalItems
	s.totalPrice = totalPrice
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.userID, s.items); err != nil {
		s.logger.Error("CART", fmt.Sprintf("Failed to persist cart for user %s: %v", s.userID, err))
		return fmt.Errorf("failed to persist cart for user %s: %w", s.userID, err)
	}
	return nil
}

func (s *Store) snapshotLocked() models.Cart {
	items := make([]models.LineItem, len(s.items))
	copy(items, s.items)
	return models.Cart{
		Items:      items,
		TotalItems: s.totalItems,
		TotalPrice: s.totalPrice,
	}
}

func (s *Store) notify(snapshot models.Cart) {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}
