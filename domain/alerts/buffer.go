package alerts

import (
	"sync"

	"github.com/soocke/zone-console/metrics"
)

// DefaultCapacity is the number of alerts retained for display.
const DefaultCapacity = 20

// Buffer is a bounded FIFO of the most recent alerts. When full, each push
// evicts the oldest entry.
type Buffer struct {
	mu       sync.Mutex
	items    []Alert
	capacity int
	subs     map[int]func([]Alert)
	nextSub  int
	metrics  *metrics.Metrics
}

// NewBuffer returns a buffer holding at most capacity alerts (DefaultCapacity if <= 0).
func NewBuffer(capacity int, m *metrics.Metrics) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		items:    make([]Alert, 0, capacity),
		capacity: capacity,
		subs:     map[int]func([]Alert){},
		metrics:  m,
	}
}

// Capacity returns the maximum number of retained alerts.
func (b *Buffer) Capacity() int { return b.capacity }

// Push appends alerts in order. Subscribers receive one snapshot per call.
func (b *Buffer) Push(in ...Alert) {
	if b == nil || len(in) == 0 {
		return
	}
	b.mu.Lock()
	for _, a := range in {
		if len(b.items) == b.capacity {
			copy(b.items, b.items[1:])
			b.items = b.items[:len(b.items)-1]
			b.metrics.AlertDropped()
		}
		b.items = append(b.items, a)
	}
	snap := b.snapshotLocked()
	subs := make([]func([]Alert), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns the retained alerts oldest first.
func (b *Buffer) Snapshot() []Alert {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Len returns the number of retained alerts.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Subscribe registers fn for snapshots after every push.
func (b *Buffer) Subscribe(fn func([]Alert)) (unsubscribe func()) {
	if b == nil || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Buffer) snapshotLocked() []Alert {
	out := make([]Alert, len(b.items))
	copy(out, b.items)
	return out
}
