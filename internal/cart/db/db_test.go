package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"storefront/internal/cart/db"
	"storefront/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Shared-cache in-memory SQLite so every pooled connection sees the
	// same database.
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	db.Migrate(bunDB)

	return &db.DB{Bun: bunDB}, bunDB
}

func TestLoadMissingRecordIsEmptyCart(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	items, err := cartDB.Load(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, items)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	items := []models.LineItem{
		{
			TicketTypeID: "tt-1",
			EventID:      "event-1",
			EventName:    "Summer Music Festival",
			TicketName:   "General Admission",
			UnitPrice:    500,
			Quantity:     2,
		},
		{
			TicketTypeID: "tt-2",
			EventID:      "event-1",
			EventName:    "Summer Music Festival",
			TicketName:   "VIP",
			UnitPrice:    2100,
			Quantity:     1,
		},
	}

	err := cartDB.Save(ctx, "user123", items)
	require.NoError(t, err)

	loaded, err := cartDB.Load(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestSaveUpsertsExistingRecord(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	first := []models.LineItem{{TicketTypeID: "tt-1", TicketName: "General Admission", UnitPrice: 500, Quantity: 2}}
	second := []models.LineItem{{TicketTypeID: "tt-1", TicketName: "General Admission", UnitPrice: 500, Quantity: 5}}

	require.NoError(t, cartDB.Save(ctx, "user123", first))
	require.NoError(t, cartDB.Save(ctx, "user123", second))

	loaded, err := cartDB.Load(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 5, loaded[0].Quantity)
}

func TestSaveNilItemsLoadsAsEmptyCollection(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	require.NoError(t, cartDB.Save(ctx, "user123", nil))

	loaded, err := cartDB.Load(ctx, "user123")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestClearRemovesRecord(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	items := []models.LineItem{{TicketTypeID: "tt-1", TicketName: "General Admission", UnitPrice: 500, Quantity: 2}}
	require.NoError(t, cartDB.Save(ctx, "user123", items))
	require.NoError(t, cartDB.Clear(ctx, "user123"))

	loaded, err := cartDB.Load(ctx, "user123")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing a user with no record is not an error.
	assert.NoError(t, cartDB.Clear(ctx, "user123"))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	cartDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	require.NoError(t, cartDB.Save(ctx, "user-a", []models.LineItem{{TicketTypeID: "tt-1", Quantity: 1}}))
	require.NoError(t, cartDB.Save(ctx, "user-b", []models.LineItem{{TicketTypeID: "tt-2", Quantity: 3}}))

	require.NoError(t, cartDB.Clear(ctx, "user-a"))

	loaded, err := cartDB.Load(ctx, "user-b")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "tt-2", loaded[0].TicketTypeID)
}
