package events

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Topic of an invalidation event for a collection, e.g. "cache.clean.users".
func Topic(collection string) string { return "cache.clean." + collection }

// Broadcaster announces that an entity collection changed. Delivery is
// fire-and-forget and at-least-once; subscribers must treat duplicates as
// harmless. EntityChanged must not block the mutation that triggered it.
type Broadcaster interface {
	EntityChanged(collection string)
}

// RedisBroadcaster publishes invalidation events over redis pub/sub so
// every process holding a read cache can purge it.
type RedisBroadcaster struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisBroadcaster(rdb *redis.Client, log *zap.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb, log: log}
}

func (b *RedisBroadcaster) EntityChanged(collection string) {
	topic := Topic(collection)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rdb.Publish(ctx, topic, "").Err(); err != nil {
			b.log.Warn("invalidation publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}()
}

// Bus is the in-process fallback used when no redis is configured
// (embedded/memory deployments). Same contract, local subscribers only.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]func()
}

func NewBus() *Bus { return &Bus{subs: make(map[string][]func())} }

func (b *Bus) Subscribe(topic string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], fn)
}

func (b *Bus) EntityChanged(collection string) {
	b.mu.RLock()
	fns := make([]func(), len(b.subs[Topic(collection)]))
	copy(fns, b.subs[Topic(collection)])
	b.mu.RUnlock()
	for _, fn := range fns {
		go fn()
	}
}
