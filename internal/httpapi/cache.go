package httpapi

import (
	"context"
	"sync"

	"github.com/Malek720-420/InternExtract/internal/store"
)

// SnapshotCache holds the most recent wholesale snapshot delivered by the
// store subscription. It is the only shared mutable state in the process:
// replaced as a whole on every notification, read-only in between.
type SnapshotCache struct {
	mu        sync.RWMutex
	current   store.Snapshot
	listeners map[chan store.Snapshot]struct{}
}

// NewSnapshotCache returns an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{listeners: make(map[chan store.Snapshot]struct{})}
}

// Set replaces the cached snapshot and fans it out to every listener.
// Wired as the subscription's onSnapshot callback.
func (c *SnapshotCache) Set(snap store.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = snap
	for ch := range c.listeners {
		select {
		case ch <- snap:
		default:
			// Listener is not keeping up; it will catch up on the next
			// snapshot — each one carries the full partition anyway.
		}
	}
}

// Get returns the most recent snapshot.
func (c *SnapshotCache) Get() store.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Listen registers a listener channel that receives every subsequent
// snapshot until ctx is done.
func (c *SnapshotCache) Listen(ctx context.Context) <-chan store.Snapshot {
	ch := make(chan store.Snapshot, 1)

	c.mu.Lock()
	c.listeners[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.listeners, ch)
		c.mu.Unlock()
	}()

	return ch
}
