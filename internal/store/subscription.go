package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// ErrAlreadySubscribed — a session holds exactly one standing subscription.
var ErrAlreadySubscribed = errors.New("subscription already active for this session")

// subscription is the standing live view of the owner partition. It lives
// for the process lifetime and is never explicitly unsubscribed in normal
// operation.
type subscription struct {
	mu sync.Mutex // serializes refreshes so callbacks never interleave
}

// Subscribe establishes the session's single real-time subscription.
//
// onSnapshot receives the entire current partition — never a delta — once
// immediately, then after every change notification (from any client, this
// session included), then on every periodic resync tick. onError receives
// read failures; the subscription keeps running after them.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) error {
	if s.ownerID == "" {
		return ErrUnauthenticated
	}
	if s.sub != nil {
		return ErrAlreadySubscribed
	}
	s.sub = &subscription{}

	refresh := func() {
		s.sub.mu.Lock()
		defer s.sub.mu.Unlock()

		snap, err := s.loadSnapshot(ctx)
		if err != nil {
			onError(err)
			return
		}
		onSnapshot(snap)
	}

	// Initial snapshot before any notification can arrive.
	refresh()

	pubsub := s.rdb.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		s.sub = nil
		return fmt.Errorf("subscribe %s: %w", s.channel(), err)
	}

	go func() {
		for range pubsub.Channel() {
			refresh()
		}
	}()

	// Safety net: a dropped notification only delays convergence until the
	// next forced resync.
	c := cron.New()
	if _, err := c.AddFunc(s.ResyncSpec, refresh); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.ResyncSpec, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
		if err := pubsub.Close(); err != nil {
			log.Printf("[store] pubsub close: %v", err)
		}
	}()

	log.Printf("[store] subscription active for owner %s (resync %s)", s.ownerID, s.ResyncSpec)
	return nil
}
