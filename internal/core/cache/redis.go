package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

// GetOrLoad reads key from redis, falling back to load with singleflight so
// concurrent misses hit the store once.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Purge drops every key under "<namespace>.". Purging an already-empty
// namespace is a no-op, so duplicate invalidation events are harmless.
func (c *Cache) Purge(ctx context.Context, namespace string) error {
	if !strings.HasSuffix(namespace, ".") {
		namespace += "."
	}
	iter := c.RDB.Scan(ctx, 0, namespace+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

// Listen subscribes to the given invalidation topics and purges the
// matching namespace on every message until ctx is done. The topic layout
// is "cache.clean.<collection>"; the collection is the purged namespace.
func (c *Cache) Listen(ctx context.Context, log *zap.Logger, topics ...string) {
	sub := c.RDB.Subscribe(ctx, topics...)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ns := strings.TrimPrefix(msg.Channel, "cache.clean.")
				if err := c.Purge(ctx, ns); err != nil {
					log.Warn("cache purge failed", zap.String("namespace", ns), zap.Error(err))
				}
			}
		}
	}()
}
