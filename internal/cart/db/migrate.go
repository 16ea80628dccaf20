package db

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

func Migrate(db *bun.DB) {
	ctx := context.Background()

	_, err := db.NewCreateTable().Model((*cartRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		log.Fatalf("create carts table failed: %v", err)
	}

	log.Println("✅ carts table ready")
}
