package alert

import "sync"

// ringBuffer is a bounded, thread-safe queue of alerts awaiting publication.
// When full, the oldest entries are dropped to make room; losing an old
// best-effort audit copy is preferable to blocking the auth path.
type ringBuffer struct {
	mu       sync.Mutex
	entries  []*Alert
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &ringBuffer{
		entries:  make([]*Alert, capacity),
		capacity: capacity,
	}
}

// enqueue adds an alert, dropping the oldest if necessary.
func (b *ringBuffer) enqueue(a *Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}

	b.entries[b.head] = a
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// dequeueBatch removes up to n alerts from the buffer.
func (b *ringBuffer) dequeueBatch(n int) []*Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	out := make([]*Alert, n)
	for i := 0; i < n; i++ {
		out[i] = b.entries[b.tail]
		b.entries[b.tail] = nil
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return out
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *ringBuffer) droppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
