// Package dedupe remembers recently seen upload ids so a retried upload is
// applied at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultCapacity = 50000

// Deduper records seen upload ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. Check and record happen atomically.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a failed upload can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ringDeduper keeps the most recent ids in a fixed ring. When the ring is
// full the oldest id is forgotten. A capacity <= 0 keeps everything.
type ringDeduper struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]int // id -> ring slot, -1 when unbounded
	ring     []string
	next     int
}

// NewInMemoryDeduper creates a ring-backed deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.capacity > 0 {
		d.ring = make([]string, d.capacity)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.capacity <= 0 {
		d.seen[id] = -1
		return false
	}

	if old := d.ring[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.capacity
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.ring[slot] = ""
	}
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
