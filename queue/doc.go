// SPDX-License-Identifier: EPL-2.0

// Package queue implements a fixed-capacity single-producer/single-consumer
// ring buffer.
//
// A Ring never blocks and never allocates after construction. Write accepts
// as many elements as fit and reports the count, so a partial write means
// the ring is full and the caller should retry the remainder later:
//
//	r := queue.New[float32](4096 * 10)
//	n := r.Write(samples) // producer goroutine
//	m := r.Read(dst)      // consumer goroutine
//
// Exactly one goroutine may write and exactly one may read at a time. Len
// and Free are snapshots and may be stale by the time they are used; the
// producer can trust Free as a lower bound and the consumer can trust Len
// as a lower bound.
package queue
