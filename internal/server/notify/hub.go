// Package notify fans daily log snapshots out to live subscribers and bridges
// Postgres LISTEN/NOTIFY so that writes on other server instances reach them.
package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
)

// Key identifies one daily log document.
type Key struct {
	UserID string
	Date   string
}

type topic struct {
	latest meallog.DailyLog
	subs   map[*Subscription]struct{}
}

// Hub keeps per-document subscriber sets. Publishers never block: every
// subscriber owns a one slot buffer and only the newest snapshot is kept.
type Hub struct {
	mu     sync.Mutex
	topics map[Key]*topic
	closed bool
	log    logging.Logger
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		topics: make(map[Key]*topic),
		log:    log.With("module", "notify.hub"),
	}
}

// Subscription is a live feed of snapshots for one document. The channel is
// closed once the subscription ends.
type Subscription struct {
	hub  *Hub
	key  Key
	ch   chan meallog.DailyLog
	once sync.Once
	stop func() bool
}

// C delivers snapshots. It is closed after Close.
func (s *Subscription) C() <-chan meallog.DailyLog { return s.ch }

// Close unregisters the subscription and then closes its channel.
// It is safe to call more than once and from any goroutine.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		stop := s.stop
		s.hub.removeLocked(s)
		close(s.ch)
		s.hub.mu.Unlock()

		if stop != nil {
			stop()
		}
	})
}

// Subscribe registers a listener for (userID, date). initial is delivered
// first unless the hub already holds a newer snapshot, which is delivered
// instead. The subscription also ends when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, userID, date string, initial meallog.DailyLog) *Subscription {
	key := Key{UserID: userID, Date: date}
	s := &Subscription{hub: h, key: key, ch: make(chan meallog.DailyLog, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.once.Do(func() { close(s.ch) })
		return s
	}

	t := h.topics[key]
	if t == nil {
		t = &topic{latest: initial, subs: make(map[*Subscription]struct{})}
		h.topics[key] = t
	} else if initial.Version > t.latest.Version {
		t.latest = initial
	}
	t.subs[s] = struct{}{}
	s.ch <- t.latest
	s.stop = context.AfterFunc(ctx, s.Close)
	h.mu.Unlock()

	h.log.Debug(ctx, "subscribed", "user_id", userID, "date", date)
	return s
}

// Publish offers a snapshot to every subscriber of (userID, log.Date).
// Snapshots that are not newer than the last one seen are dropped. It
// reports whether the snapshot was accepted.
func (h *Hub) Publish(userID string, snap meallog.DailyLog) bool {
	key := Key{UserID: userID, Date: snap.Date}

	h.mu.Lock()
	defer h.mu.Unlock()

	t := h.topics[key]
	if t == nil || snap.Version <= t.latest.Version {
		return false
	}
	t.latest = snap
	for s := range t.subs {
		offer(s.ch, snap)
	}
	return true
}

// Wants reports whether (userID, date) has subscribers that have not seen
// version yet. The listener uses it to skip pointless reads.
func (h *Hub) Wants(userID, date string, version int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.topics[Key{UserID: userID, Date: date}]
	return t != nil && version > t.latest.Version
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, t := range h.topics {
		n += len(t.subs)
	}
	return n
}

// Close ends every subscription. Later Subscribe calls return closed
// subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription
	for _, t := range h.topics {
		for s := range t.subs {
			all = append(all, s)
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

func (h *Hub) removeLocked(s *Subscription) {
	t := h.topics[s.key]
	if t == nil {
		return
	}
	delete(t.subs, s)
	if len(t.subs) == 0 {
		delete(h.topics, s.key)
	}
}

// offer replaces any undelivered snapshot with snap. Only the hub sends on
// subscriber channels and always under h.mu, so the second send cannot block.
func offer(ch chan meallog.DailyLog, snap meallog.DailyLog) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
