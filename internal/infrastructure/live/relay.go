package live

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay spreads frames across API instances: Broadcast publishes the frame
// on a Redis channel and Run forwards every frame on that channel to the local hub.
type RedisRelay struct {
	client   *redis.Client
	channel  string
	hub      *Hub
	logger   *zap.Logger
	retryGap time.Duration
}

// NewRedisRelay creates a relay feeding hub from channel
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:   client,
		channel:  channel,
		hub:      hub,
		logger:   logger.Named("live.relay"),
		retryGap: time.Second,
	}
}

// Broadcast publishes the named event for every instance, including this one
func (r *RedisRelay) Broadcast(ctx context.Context, name string, payload any) error {
	frame, err := EncodeFrame(name, payload)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, frame).Err(); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", name, r.channel, err)
	}
	return nil
}

// Run forwards relayed frames to the hub until ctx is done, resubscribing when
// the subscription drops.
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		r.forward(ctx)
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("relay subscription closed, resubscribing", zap.String("channel", r.channel))
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retryGap):
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			r.logger.Error("relay subscribe failed", zap.String("channel", r.channel), zap.Error(err))
		}
		return
	}
	r.logger.Info("relay subscribed", zap.String("channel", r.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.hub.Deliver([]byte(msg.Payload))
		}
	}
}
