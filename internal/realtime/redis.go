package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "shift-tracker:tickets"

// RedisBus publishes ticket events to a Redis channel and replays everything
// received on it into the local hub, so instances converge on one feed.
type RedisBus struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *slog.Logger
}

func NewRedisBus(client *redis.Client, channel string, hub *Hub, log *slog.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		hub:     hub,
		log:     log.With(slog.String("component", "redis_bus")),
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	const op = "realtime.RedisBus.Publish"

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: marshal event: %w", op, err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Error("failed to publish ticket event",
			slog.String("op", op),
			slog.String("id", ev.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Run forwards channel messages into the hub until ctx is done.
func (b *RedisBus) Run(ctx context.Context) error {
	const op = "realtime.RedisBus.Run"

	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("%s: subscribe %s: %w", op, b.channel, err)
	}
	b.log.Info("subscribed to ticket events", slog.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.log.Warn("ticket event channel closed")
				return nil
			}
			b.forward(ctx, msg.Payload)
		}
	}
}

func (b *RedisBus) forward(ctx context.Context, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		b.log.Warn("dropping malformed ticket event", slog.String("error", err.Error()))
		return
	}
	_ = b.hub.Publish(ctx, ev)
}
