// Package ring provides a bounded, lock-free MPSC (multiple-producer,
// single-consumer) ring buffer.
//
// It is a generic, bounded variant of the teacher's MicrotaskRing
// (github.com/joeycumines/go-utilpkg/eventloop, ingress.go): the same
// Release/Acquire sequence-number protocol, but deliberately without the
// overflow slice — the safety event queue (spec.md §5, "a bounded MPSC ring
// consumed by the tick thread") must reject rather than grow when full, so
// that a runaway producer cannot make the tick thread do unbounded work.
package ring

import (
	"runtime"
	"sync/atomic"
)

// seqSkip marks a slot as not-yet-claimed, distinct from any real sequence
// number, avoiding the wrap-around ambiguity the teacher's ring also guards
// against (see ingress.go's R101 fix notes).
const seqSkip = uint64(1) << 63

// Queue is a bounded MPSC ring buffer over T. Capacity is rounded up to the
// next power of two. Push is safe from any goroutine; Pop must only be
// called from the single consumer (the tick thread).
type Queue[T any] struct {
	mask uint64

	buffer []T
	valid  []atomic.Bool
	seq    []atomic.Uint64

	head atomic.Uint64
	tail atomic.Uint64
}

// New creates a bounded queue with capacity rounded up to a power of two,
// minimum 2.
func New[T any](capacity int) *Queue[T] {
	n := 2
	for n < capacity {
		n <<= 1
	}
	q := &Queue[T]{
		mask:   uint64(n - 1),
		buffer: make([]T, n),
		valid:  make([]atomic.Bool, n),
		seq:    make([]atomic.Uint64, n),
	}
	for i := range q.seq {
		q.seq[i].Store(seqSkip)
	}
	return q
}

// Push attempts to enqueue v. It returns false if the ring is full.
func (q *Queue[T]) Push(v T) bool {
	for {
		tail := q.tail.Load()
		head := q.head.Load()

		if tail-head > q.mask {
			return false // full
		}

		if q.tail.CompareAndSwap(tail, tail+1) {
			idx := tail & q.mask
			q.buffer[idx] = v
			q.valid[idx].Store(true)
			q.seq[idx].Store(tail + 1) // any non-skip value works; monotonic for debugging
			return true
		}
	}
}

// Pop removes and returns the oldest value. ok is false if the ring is
// empty. Only the single consumer goroutine may call Pop.
func (q *Queue[T]) Pop() (v T, ok bool) {
	head := q.head.Load()
	tail := q.tail.Load()

	for head < tail {
		idx := head & q.mask
		if q.seq[idx].Load() == seqSkip || !q.valid[idx].Load() {
			// producer claimed the slot but hasn't published yet; spin.
			runtime.Gosched()
			head = q.head.Load()
			tail = q.tail.Load()
			continue
		}

		v = q.buffer[idx]
		var zero T
		q.buffer[idx] = zero
		q.valid[idx].Store(false)
		q.seq[idx].Store(seqSkip)
		q.head.Add(1)
		return v, true
	}

	return v, false
}

// Len returns the approximate number of queued items.
func (q *Queue[T]) Len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail <= head {
		return 0
	}
	return int(tail - head)
}
