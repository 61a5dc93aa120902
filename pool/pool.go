// SPDX-License-Identifier: EPL-2.0

// Package pool provides fixed-capacity object pools with generation-checked
// handles.
//
// All items are allocated when the pool is built. Acquire hands out a free
// slot and Release returns it; releasing bumps the slot generation so any
// Handle still referring to the old occupant stops resolving. The set of
// acquired items is published as an immutable snapshot that a real-time
// reader can walk without taking a lock.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/spat360/audio"
)

// Handle identifies one occupancy of a pool slot. The zero Handle never
// resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was issued by Acquire. It does not check whether
// the slot has since been released.
func (h Handle) Valid() bool { return h.gen != 0 }

type slot[T any] struct {
	item *T
	gen  atomic.Uint32
	used bool
}

// Pool is a fixed set of pre-allocated T values.
type Pool[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []uint32

	live atomic.Pointer[[]*T]
}

// New allocates capacity items with newItem.
func New[T any](capacity int, newItem func(index int) *T) *Pool[T] {
	p := &Pool[T]{
		slots: make([]slot[T], capacity),
		free:  make([]uint32, 0, capacity),
	}
	for i := range p.slots {
		p.slots[i].item = newItem(i)
		p.slots[i].gen.Store(1)
	}
	// hand out low indices first
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i))
	}
	empty := make([]*T, 0)
	p.live.Store(&empty)
	return p
}

// Cap returns the number of slots.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Len returns the number of acquired slots.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots) - len(p.free)
}

// Acquire takes a free slot, runs init on it and then publishes it to the
// live snapshot. It fails with audio.ErrNoObjectsInPool when every slot is
// taken.
func (p *Pool[T]) Acquire(init func(h Handle, item *T)) (Handle, *T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		return Handle{}, nil, audio.ErrNoObjectsInPool
	}

	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.used = true
	h := Handle{index: idx, gen: s.gen.Load()}
	if init != nil {
		init(h, s.item)
	}

	p.publishLocked()
	return h, s.item, nil
}

// Get resolves h to its item. It is safe to call concurrently with Acquire
// and Release.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if !h.Valid() || int(h.index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.index]
	if s.gen.Load() != h.gen {
		return nil, false
	}
	return s.item, true
}

// Release invalidates h, removes its item from the live snapshot and calls
// quiesce before the slot becomes reusable. quiesce runs without the pool
// lock held so it may wait for readers of the previous snapshot. Releasing
// a stale handle is a no-op that returns false.
func (p *Pool[T]) Release(h Handle, quiesce func(item *T)) bool {
	p.mu.Lock()
	if !h.Valid() || int(h.index) >= len(p.slots) {
		p.mu.Unlock()
		return false
	}
	s := &p.slots[h.index]
	if !s.used || s.gen.Load() != h.gen {
		p.mu.Unlock()
		return false
	}

	next := h.gen + 1
	if next == 0 {
		next = 1
	}
	s.gen.Store(next)
	s.used = false
	p.publishLocked()
	p.mu.Unlock()

	if quiesce != nil {
		quiesce(s.item)
	}

	p.mu.Lock()
	p.free = append(p.free, h.index)
	p.mu.Unlock()
	return true
}

// Live returns the current snapshot of acquired items. The slice must not
// be modified.
func (p *Pool[T]) Live() []*T {
	return *p.live.Load()
}

// Handles returns a handle for every acquired slot.
func (p *Pool[T]) Handles() []Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	hs := make([]Handle, 0, len(p.slots)-len(p.free))
	for i := range p.slots {
		if p.slots[i].used {
			hs = append(hs, Handle{index: uint32(i), gen: p.slots[i].gen.Load()})
		}
	}
	return hs
}

func (p *Pool[T]) publishLocked() {
	live := make([]*T, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].used {
			live = append(live, p.slots[i].item)
		}
	}
	p.live.Store(&live)
}
