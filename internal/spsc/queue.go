// Package spsc implements the bounded single-producer/single-consumer
// lock-free queue used to connect the three pipeline stages (spec §4.1).
//
// The protocol is the canonical Lamport ring buffer: the writer owns tail,
// the reader owns head, and each side publishes its index with a release
// store so the other side's acquire load is guaranteed to observe the slot
// write that preceded it. Each side additionally caches its last observed
// view of the other side's index, so a Push/Pop that has headroom never
// needs to touch the other side's cache line at all.
package spsc

import "sync/atomic"

// cacheLinePad is sized to separate hot fields that are written by
// different goroutines onto distinct cache lines, avoiding false sharing.
type cacheLinePad [64]byte

// Queue is a fixed-capacity ring buffer with one producer and one
// consumer. Capacity must be a power of two; NewQueue rounds up. One slot
// is always sacrificed, so the effective capacity is N-1.
type Queue[T any] struct {
	_ cacheLinePad
	// tail is advanced by the single writer.
	tail uint64
	_    cacheLinePad
	// cachedHead is the writer's last-observed copy of head. Re-read from
	// head only when the cached value says the ring might be full.
	cachedHead uint64
	_          cacheLinePad
	// head is advanced by the single reader.
	head uint64
	_    cacheLinePad
	// cachedTail is the reader's last-observed copy of tail.
	cachedTail uint64
	_          cacheLinePad

	mask   uint64
	buffer []T
}

// NewQueue allocates a queue with at least the given capacity, rounded up
// to the next power of two.
func NewQueue[T any](capacity int) *Queue[T] {
	n := nextPow2(capacity)
	return &Queue[T]{
		mask:   n - 1,
		buffer: make([]T, n),
	}
}

func nextPow2(n int) uint64 {
	if n < 2 {
		return 2
	}
	v := uint64(n - 1)
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}

// Cap returns the queue's backing capacity (one slot of which is always
// unused).
func (q *Queue[T]) Cap() int {
	return int(q.mask + 1)
}

// Push enqueues an item. Writer-only. Returns false if the queue is full.
func (q *Queue[T]) Push(item T) bool {
	tail := atomic.LoadUint64(&q.tail) // owned by us: relaxed is sufficient
	if tail-q.cachedHead >= q.mask {
		q.cachedHead = atomic.LoadUint64(&q.head) // acquire: see latest reader position
		if tail-q.cachedHead >= q.mask {
			return false
		}
	}
	q.buffer[tail&q.mask] = item
	atomic.StoreUint64(&q.tail, tail+1) // release: publish slot write before index
	return true
}

// Pop dequeues an item. Reader-only. Returns (zero, false) if empty.
func (q *Queue[T]) Pop() (T, bool) {
	head := atomic.LoadUint64(&q.head) // owned by us: relaxed is sufficient
	if head >= q.cachedTail {
		q.cachedTail = atomic.LoadUint64(&q.tail) // acquire: see latest writer position
		if head >= q.cachedTail {
			var zero T
			return zero, false
		}
	}
	item := q.buffer[head&q.mask]
	var zero T
	q.buffer[head&q.mask] = zero // drop the reference so it can be GC'd
	atomic.StoreUint64(&q.head, head+1) // release
	return item, true
}

// IsEmpty reports whether the queue appeared empty at the time of the
// call. Observational only; may be stale the instant it returns.
func (q *Queue[T]) IsEmpty() bool {
	return atomic.LoadUint64(&q.head) == atomic.LoadUint64(&q.tail)
}

// Len returns the queue's approximate length. Observational only.
func (q *Queue[T]) Len() int {
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	return int(tail - head)
}
