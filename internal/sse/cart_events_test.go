package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func TestBroadcastReachesAllStreamsOfUser(t *testing.T) {
	emitter := NewCartEventEmitter()
	ctx := context.Background()

	first := emitter.Subscribe(ctx, "user123")
	second := emitter.Subscribe(ctx, "user123")
	other := emitter.Subscribe(ctx, "user456")

	snapshot := models.Cart{TotalItems: 2, TotalPrice: 1000}
	emitter.Broadcast("user123", snapshot)

	assert.Equal(t, snapshot, <-first)
	assert.Equal(t, snapshot, <-second)

	select {
	case <-other:
		t.Fatal("another user's stream must not receive the snapshot")
	default:
	}
}

func TestSubscribeCleansUpOnContextCancel(t *testing.T) {
	emitter := NewCartEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	stream := emitter.Subscribe(ctx, "user123")
	cancel()

	// The channel closes once the unsubscribe goroutine runs.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-stream:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Broadcasting afterwards must not panic or block.
	emitter.Broadcast("user123", models.Cart{TotalItems: 1})
}

func TestBroadcastSkipsFullStreams(t *testing.T) {
	emitter := NewCartEventEmitter()
	stream := emitter.Subscribe(context.Background(), "user123")

	// Fill the buffer past capacity; extra snapshots are dropped, not
	// blocking the mutation path.
	for i := 0; i < 20; i++ {
		emitter.Broadcast("user123", models.Cart{TotalItems: i})
	}

	received := 0
	for {
		select {
		case <-stream:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 10, received)
}
