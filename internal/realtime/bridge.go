package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Bridge subscribes to the shared redis channel and routes received events
// into the local hub. One bridge runs per instance.
type Bridge struct {
	rdb     redis.UniversalClient
	hub     *Hub
	channel string
	log     *slog.Logger
}

func NewBridge(rdb redis.UniversalClient, hub *Hub, channel string, log *slog.Logger) *Bridge {
	if channel == "" {
		channel = DefaultPubSubChannel
	}
	return &Bridge{rdb: rdb, hub: hub, channel: channel, log: log}
}

// Run blocks consuming the subscription until ctx is cancelled. Malformed
// messages are logged and skipped; the subscription stays up.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Force the SUBSCRIBE round-trip so wiring errors surface at startup.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("skip malformed realtime event", "error", err)
				continue
			}
			b.hub.Route(ev)
		}
	}
}
