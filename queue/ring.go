// SPDX-License-Identifier: EPL-2.0

package queue

import "sync/atomic"

// Ring is a lock-free SPSC ring buffer. The read and write cursors only ever
// grow; their difference is the number of queued elements.
type Ring[T any] struct {
	buf []T

	head atomic.Uint64 // next element to read, owned by the consumer
	_    [56]byte
	tail atomic.Uint64 // next element to write, owned by the producer
	_    [56]byte
}

// New returns a ring holding up to capacity elements.
func New[T any](capacity int) *Ring[T] {
	return &Ring[T]{buf: make([]T, max(capacity, 0))}
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len returns the number of queued elements.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Free returns the number of elements that can be written.
func (r *Ring[T]) Free() int {
	return len(r.buf) - r.Len()
}

// Head returns the total number of elements ever read or discarded.
func (r *Ring[T]) Head() uint64 { return r.head.Load() }

// Tail returns the total number of elements ever written.
func (r *Ring[T]) Tail() uint64 { return r.tail.Load() }

// Write copies as much of src as fits and returns the count. Producer only.
func (r *Ring[T]) Write(src []T) int {
	size := uint64(len(r.buf))
	if size == 0 {
		return 0
	}

	tail := r.tail.Load()
	free := size - (tail - r.head.Load())
	n := min(uint64(len(src)), free)
	if n == 0 {
		return 0
	}

	start := tail % size
	first := min(n, size-start)
	copy(r.buf[start:start+first], src[:first])
	copy(r.buf[:n-first], src[first:n])

	r.tail.Store(tail + n)
	return int(n)
}

// WriteZero appends up to n zero values and returns the count. Producer only.
func (r *Ring[T]) WriteZero(n int) int {
	size := uint64(len(r.buf))
	if size == 0 || n <= 0 {
		return 0
	}

	tail := r.tail.Load()
	free := size - (tail - r.head.Load())
	m := min(uint64(n), free)

	start := tail % size
	first := min(m, size-start)
	clear(r.buf[start : start+first])
	clear(r.buf[:m-first])

	r.tail.Store(tail + m)
	return int(m)
}

// Read moves up to len(dst) elements into dst and returns the count.
// Consumer only.
func (r *Ring[T]) Read(dst []T) int {
	n := r.Peek(dst)
	r.head.Add(uint64(n))
	return n
}

// Peek copies up to len(dst) queued elements without consuming them.
// Consumer only.
func (r *Ring[T]) Peek(dst []T) int {
	size := uint64(len(r.buf))
	if size == 0 {
		return 0
	}

	head := r.head.Load()
	n := min(uint64(len(dst)), r.tail.Load()-head)
	if n == 0 {
		return 0
	}

	start := head % size
	first := min(n, size-start)
	copy(dst[:first], r.buf[start:start+first])
	copy(dst[first:n], r.buf[:n-first])

	return int(n)
}

// Discard drops up to n queued elements and returns the count. Consumer only.
func (r *Ring[T]) Discard(n int) int {
	if n <= 0 {
		return 0
	}

	head := r.head.Load()
	m := min(uint64(n), r.tail.Load()-head)
	r.head.Store(head + m)
	return int(m)
}

// DiscardTo advances the read cursor to pos if pos lies ahead of it and
// does not pass the write cursor. Consumer only.
func (r *Ring[T]) DiscardTo(pos uint64) int {
	head := r.head.Load()
	if pos <= head {
		return 0
	}
	return r.Discard(int(pos - head))
}

// Reset empties the ring. Neither side may be active during the call.
func (r *Ring[T]) Reset() {
	r.head.Store(r.tail.Load())
}
