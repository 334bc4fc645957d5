package subscribers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventDeduper remembers which events were already handled.
type EventDeduper interface {
	// FirstSeen records eventID and reports whether it was new.
	FirstSeen(ctx context.Context, eventID uuid.UUID) (bool, error)
	// Forget drops eventID so a redelivery is handled again.
	Forget(ctx context.Context, eventID uuid.UUID) error
}

// MemoryDeduper is the local-mode EventDeduper. Entries expire after ttl.
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[uuid.UUID]time.Time
	now  func() time.Time
}

// NewMemoryDeduper creates an in-memory deduper.
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryDeduper{
		ttl:  ttl,
		seen: make(map[uuid.UUID]time.Time),
		now:  time.Now,
	}
}

// FirstSeen implements EventDeduper.
func (d *MemoryDeduper) FirstSeen(_ context.Context, eventID uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.seen {
		if now.After(expires) {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = now.Add(d.ttl)
	return true, nil
}

// Forget implements EventDeduper.
func (d *MemoryDeduper) Forget(_ context.Context, eventID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}
