package feed

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisChannel is the pub/sub channel shared by all marks instances.
const redisChannel = "marks:feed"

// RedisBridge mirrors hub events over redis pub/sub so that a change made on
// one server instance invalidates caches attached to any other instance.
type RedisBridge struct {
	client *goredis.Client
	hub    *Hub
	log    *zap.Logger
}

// NewRedisBridge creates a bridge between hub and the given redis client.
func NewRedisBridge(client *goredis.Client, hub *Hub, log *zap.Logger) *RedisBridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBridge{client: client, hub: hub, log: log}
}

// Run pumps events both ways until ctx is cancelled. Outbound: events
// published on the local hub are broadcast to redis. Inbound: events from
// other instances are injected into the local hub. Events that this bridge
// itself injected are filtered by origin to prevent echo loops.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.hub.Subscribe(Bookmarks)
	defer sub.Cancel()

	pubsub := b.client.Subscribe(ctx, redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if ev.Origin != b.hub.Origin() {
				continue // arrived via redis, do not bounce it back
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				b.log.Error("marshal feed event", zap.Error(err))
				continue
			}
			if err := b.client.Publish(ctx, redisChannel, payload).Err(); err != nil {
				b.log.Warn("redis publish failed", zap.Error(err))
			}

		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("malformed feed event from redis", zap.Error(err))
				continue
			}
			if ev.Origin == b.hub.Origin() {
				continue // our own broadcast
			}
			b.hub.Inject(ev)
		}
	}
}
