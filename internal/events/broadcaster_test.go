package events

import (
	"sync"
	"testing"
	"time"
)

func TestTopic(t *testing.T) {
	if got := Topic("users"); got != "cache.clean.users" {
		t.Fatalf("Topic = %q", got)
	}
}

func TestBusDelivery(t *testing.T) {
	bus := NewBus()
	got := make(chan int, 2)
	bus.Subscribe(Topic("users"), func() { got <- 1 })
	bus.Subscribe(Topic("users"), func() { got <- 2 })
	bus.Subscribe(Topic("orders"), func() { t.Error("wrong topic delivered") })

	bus.EntityChanged("users")

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatal("subscriber not invoked")
		}
	}
}

// Duplicate delivery must leave an idempotent purge in a sane state.
func TestBusDuplicateDeliveryIdempotent(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	cache := map[string]string{"users.id.1": "x", "users.id.2": "y"}
	purged := make(chan struct{}, 4)
	bus.Subscribe(Topic("users"), func() {
		mu.Lock()
		for k := range cache {
			delete(cache, k)
		}
		mu.Unlock()
		purged <- struct{}{}
	})

	bus.EntityChanged("users")
	bus.EntityChanged("users")

	for i := 0; i < 2; i++ {
		select {
		case <-purged:
		case <-time.After(time.Second):
			t.Fatal("purge not invoked")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(cache) != 0 {
		t.Fatalf("cache not empty after purge: %v", cache)
	}
}

func TestBusNoSubscribers(t *testing.T) {
	NewBus().EntityChanged("users") // must not panic or block
}
