package live

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisRelay_ForwardsFramesToHub(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	hub, url := newTestHub(t, HubConfig{})
	viewer := dialViewer(t, hub, url, 1)

	relay := NewRedisRelay(rdb, "fieldops:live", hub, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		subs := rdb.PubSubNumSub(ctx, "fieldops:live").Val()
		return subs["fieldops:live"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, relay.Broadcast(ctx, "plantation_created", map[string]any{"id": 2}))

	f := readFrame(t, viewer)
	assert.Equal(t, "plantation_created", f.Event)
	assert.Equal(t, map[string]any{"id": float64(2)}, f.Data)
}

func TestRedisRelay_BroadcastFailure(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer rdb.Close()
	m.Close()

	relay := NewRedisRelay(rdb, "fieldops:live", NewHub(HubConfig{}, nil), nil)

	assert.Error(t, relay.Broadcast(context.Background(), "job_updated", map[string]any{"id": 1}))
}

func TestRedisRelay_RunStopsWithContext(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	relay := NewRedisRelay(rdb, "fieldops:live", NewHub(HubConfig{}, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
