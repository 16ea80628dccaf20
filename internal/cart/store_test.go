package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// fakeRepository is an in-memory Repository so store behavior can be tested
// without a real storage backend.
type fakeRepository struct {
	mu      sync.Mutex
	records map[string][]models.LineItem
	saves   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string][]models.LineItem)}
}

func (f *fakeRepository) Load(_ context.Context, userID string) ([]models.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]models.LineItem, len(f.records[userID]))
	copy(items, f.records[userID])
	return items, nil
}

func (f *fakeRepository) Save(_ context.Context, userID string, items []models.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]models.LineItem, len(items))
	copy(stored, items)
	f.records[userID] = stored
	f.saves++
	return nil
}

func (f *fakeRepository) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, userID)
	return nil
}

func newTestStore(t *testing.T) (*cart.Store, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	store := cart.NewStore(repo, "user-1", logger.NewTestLogger())
	require.NoError(t, store.Rehydrate(context.Background()))
	return store, repo
}

func generalAdmission(quantity int) models.LineItem {
	return models.LineItem{
		TicketTypeID: "tt-1",
		EventID:      "event-1",
		EventName:    "Summer Music Festival",
		TicketName:   "General Admission",
		UnitPrice:    500,
		Quantity:     quantity,
	}
}

func vip(quantity int) models.LineItem {
	return models.LineItem{
		TicketTypeID: "tt-2",
		EventID:      "event-1",
		EventName:    "Summer Music Festival",
		TicketName:   "VIP",
		UnitPrice:    2100,
		Quantity:     quantity,
	}
}

func TestAddItemComputesTotals(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.AddItem(ctx, vip(1)))

	snapshot := store.Snapshot()
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, 3, snapshot.TotalItems)
	assert.Equal(t, 3100.0, snapshot.TotalPrice)
}

func TestAddItemMergesQuantities(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))

	// Same ticket type with a different price: quantity accumulates, the
	// original price stands.
	repeat := generalAdmission(3)
	repeat.UnitPrice = 999
	require.NoError(t, store.AddItem(ctx, repeat))

	snapshot := store.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 5, snapshot.Items[0].Quantity)
	assert.Equal(t, 500.0, snapshot.Items[0].UnitPrice)
	assert.Equal(t, 5, snapshot.TotalItems)
	assert.Equal(t, 2500.0, snapshot.TotalPrice)
}

func TestRemoveItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.AddItem(ctx, vip(1)))

	require.NoError(t, store.RemoveItem(ctx, "tt-1"))

	snapshot := store.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "tt-2", snapshot.Items[0].TicketTypeID)
	assert.Equal(t, 1, snapshot.TotalItems)
	assert.Equal(t, 2100.0, snapshot.TotalPrice)
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	savesBefore := repo.saves

	require.NoError(t, store.RemoveItem(ctx, "missing"))

	snapshot := store.Snapshot()
	assert.Equal(t, 2, snapshot.TotalItems)
	assert.Equal(t, 1000.0, snapshot.TotalPrice)
	assert.Equal(t, savesBefore, repo.saves, "a no-op must not rewrite storage")
}

func TestUpdateQuantitySetsDirectly(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.UpdateQuantity(ctx, "tt-1", 7))

	snapshot := store.Snapshot()
	assert.Equal(t, 7, snapshot.Items[0].Quantity)
	assert.Equal(t, 7, snapshot.TotalItems)
	assert.Equal(t, 3500.0, snapshot.TotalPrice)
}

func TestUpdateQuantityAbsentIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.UpdateQuantity(ctx, "missing", 9))

	assert.Equal(t, 2, store.Snapshot().TotalItems)
}

func TestClearCart(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.Clear(ctx))

	snapshot := store.Snapshot()
	assert.Empty(t, snapshot.Items)
	assert.Equal(t, 0, snapshot.TotalItems)
	assert.Equal(t, 0.0, snapshot.TotalPrice)

	stored, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestTotalsInvariantUnderMutationSequence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	checkInvariant := func() {
		snapshot := store.Snapshot()
		wantItems := 0
		wantPrice := 0.0
		for _, item := range snapshot.Items {
			wantItems += item.Quantity
			wantPrice += item.UnitPrice * float64(item.Quantity)
		}
		assert.Equal(t, wantItems, snapshot.TotalItems)
		assert.Equal(t, wantPrice, snapshot.TotalPrice)
	}

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	checkInvariant()
	require.NoError(t, store.AddItem(ctx, vip(3)))
	checkInvariant()
	require.NoError(t, store.UpdateQuantity(ctx, "tt-2", 1))
	checkInvariant()
	require.NoError(t, store.AddItem(ctx, generalAdmission(1)))
	checkInvariant()
	require.NoError(t, store.RemoveItem(ctx, "tt-1"))
	checkInvariant()
	require.NoError(t, store.Clear(ctx))
	checkInvariant()
}

func TestRehydrateRoundTrip(t *testing.T) {
	repo := newFakeRepository()
	ctx := context.Background()

	first := cart.NewStore(repo, "user-1", logger.NewTestLogger())
	require.NoError(t, first.Rehydrate(ctx))
	require.NoError(t, first.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, first.AddItem(ctx, vip(1)))

	// A fresh store over the same repository sees the same items with
	// recomputed totals.
	second := cart.NewStore(repo, "user-1", logger.NewTestLogger())
	require.NoError(t, second.Rehydrate(ctx))

	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t, 3, second.Snapshot().TotalItems)
	assert.Equal(t, 3100.0, second.Snapshot().TotalPrice)
}

func TestSubscriberReceivesSnapshots(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var received []models.Cart
	store.Subscribe(func(snapshot models.Cart) {
		mu.Lock()
		received = append(received, snapshot)
		mu.Unlock()
	})

	require.NoError(t, store.AddItem(ctx, generalAdmission(2)))
	require.NoError(t, store.UpdateQuantity(ctx, "tt-1", 4))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, 2, received[0].TotalItems)
	assert.Equal(t, 4, received[1].TotalItems)
}
