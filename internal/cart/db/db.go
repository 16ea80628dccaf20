// Package db stores each user's cart as a single durable record in a local
// sqlite file. Only the item collection is written; totals are always
// recomputed by the store on load so stored totals can never drift.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"storefront/internal/models"
)

type DB struct {
	Bun *bun.DB
}

type cartRecord struct {
	bun.BaseModel `bun:"table:carts"`

	UserID    string    `bun:"user_id,pk"`
	Items     []byte    `bun:"items"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Load returns the persisted item collection for a user. A missing record
// is an empty cart, not an error.
func (d *DB) Load(ctx context.Context, userID string) ([]models.LineItem, error) {
	var record cartRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.LineItem
	if err := json.Unmarshal(record.Items, &items); err != nil {
		return nil, fmt.Errorf("corrupt cart record for user %s: %w", userID, err)
	}
	return items, nil
}

// Save writes the whole item collection in one upsert.
func (d *DB) Save(ctx context.Context, userID string, items []models.LineItem) error {
	if items == nil {
		items = []models.LineItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return err
	}

	record := cartRecord{
		UserID:    userID,
		Items:     encoded,
		UpdatedAt: time.Now(),
	}
	_, err = d.Bun.NewInsert().
		Model(&record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("items = EXCLUDED.items").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Clear removes the record entirely.
func (d *DB) Clear(ctx context.Context, userID string) error {
	_, err := d.Bun.NewDelete().
		Model((*cartRecord)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
