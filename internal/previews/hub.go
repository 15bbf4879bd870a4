package previews

import (
	"context"
	"sync"

	"profileplus/internal/profiles"
	"profileplus/internal/shared/telemetry"
)

const subscriberBuffer = 4

type subscriber struct {
	ch chan profiles.Profile
}

// Hub fans preview writes out to the viewers of the same profile id.
// A subscriber whose buffer is full is disconnected instead of blocking
// the writer; it can reconnect and read the slot again.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in previews for id. The returned channel is
// closed when cancel is called or the subscriber is dropped.
func (h *Hub) Subscribe(id string) (<-chan profiles.Profile, func()) {
	s := &subscriber{ch: make(chan profiles.Profile, subscriberBuffer)}
	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscriber]struct{})
	}
	h.subs[id][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() { h.remove(id, s) })
	}
}

// Publish delivers p to every subscriber of p.ID without blocking.
func (h *Hub) Publish(p profiles.Profile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[p.ID] {
		select {
		case s.ch <- p.Clone():
		default:
			telemetry.Warn("preview.subscriber_dropped", map[string]any{"profile_id": p.ID})
			h.removeLocked(p.ID, s)
		}
	}
}

// Subscribers returns the number of open subscriptions for id.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

func (h *Hub) remove(id string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id, s)
}

func (h *Hub) removeLocked(id string, s *subscriber) {
	set, ok := h.subs[id]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(h.subs, id)
	}
}

// Channel writes previews to the store slot and notifies open viewers.
type Channel struct {
	Store *profiles.Store
	Hub   *Hub
}

// Write overwrites the preview slot and then publishes the record.
// HasCVFile reflects only whether this draft carries a file.
func (c *Channel) Write(ctx context.Context, p profiles.Profile) error {
	p.HasCVFile = p.CVFile != nil
	p.CVFile = nil
	if err := c.Store.WritePreview(ctx, p); err != nil {
		return err
	}
	c.Hub.Publish(p)
	return nil
}

// Current returns the slot record when it belongs to id.
func (c *Channel) Current(ctx context.Context, id string) *profiles.Profile {
	p := c.Store.ReadPreview(ctx)
	if p == nil || p.ID != id {
		return nil
	}
	return p
}
