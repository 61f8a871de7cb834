package sink

import (
	"sync"
	"time"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
)

// Event is a signal as received by the sink.
type Event struct {
	ID         string               `json:"id"`
	ReceivedAt time.Time            `json:"received_at"`
	Payload    *impressions.Payload `json:"payload"`
}

// Ring keeps the most recent events, oldest first.
type Ring struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

// NewRing returns a ring holding up to size events.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{events: make([]Event, size)}
}

// Add stores e, evicting the oldest event when full.
func (r *Ring) Add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Len returns the number of stored events.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.events)
	}
	return r.next
}

// List returns up to limit of the newest events, oldest first. A limit
// of zero or less returns everything.
func (r *Ring) List(limit int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ordered []Event
	if r.full {
		ordered = append(ordered, r.events[r.next:]...)
	}
	ordered = append(ordered, r.events[:r.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}
