package capture

import "sync"

// Ring is a fixed-capacity byte buffer that always holds the most recent
// bytes written to it. Writes past capacity overwrite the oldest data, which
// makes it suitable for keeping a bounded transcript of a process's raw
// output.
//
// Ring implements io.Writer and is safe for concurrent use, so several sinks
// may share one as their pass-through target.
type Ring struct {
	mu   sync.RWMutex
	data []byte
	head int // index of the oldest byte
	tail int // index where the next byte lands
	full bool
}

// NewRing creates a ring with the given capacity in bytes. Capacities below
// one byte are clamped to one.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]byte, capacity)}
}

// Write stores p, overwriting the oldest bytes when capacity is exceeded.
// It always reports success.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(p) >= len(r.data) {
		// Only the tail of p survives; take it directly.
		copy(r.data, p[len(p)-len(r.data):])
		r.head, r.tail, r.full = 0, 0, true
		return len(p), nil
	}

	n := copy(r.data[r.tail:], p)
	copy(r.data, p[n:])
	newTail := (r.tail + len(p)) % len(r.data)

	if r.full || len(p) >= r.available() {
		r.full = true
		r.head = newTail
	}
	r.tail = newTail
	return len(p), nil
}

// available reports the free capacity. Caller holds the lock.
func (r *Ring) available() int {
	if r.full {
		return 0
	}
	if r.tail >= r.head {
		return len(r.data) - (r.tail - r.head)
	}
	return r.head - r.tail
}

// Bytes returns a chronologically ordered copy of the retained bytes.
func (r *Ring) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full && r.tail >= r.head {
		return append([]byte(nil), r.data[r.head:r.tail]...)
	}
	out := make([]byte, 0, len(r.data))
	out = append(out, r.data[r.head:]...)
	out = append(out, r.data[:r.tail]...)
	return out
}

// Len returns the number of retained bytes.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.data)
	}
	if r.tail >= r.head {
		return r.tail - r.head
	}
	return len(r.data) - r.head + r.tail
}

// Reset discards all retained bytes, keeping the allocation.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head, r.tail, r.full = 0, 0, false
}
