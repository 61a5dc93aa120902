// SPDX-License-Identifier: EPL-2.0

// Package events delivers engine notifications to client callbacks away
// from the real-time path.
//
// Producers on the mix and decode goroutines Post without blocking; a full
// queue drops the event and counts it. Callbacks then run either on the
// dispatcher goroutine started with Run, or on whatever goroutine calls
// Drain.
package events

import (
	"context"
	"sync/atomic"
)

// Event is a notification raised by a source or the engine.
type Event int

const (
	ErrorBufferUnderrun Event = iota
	ErrorQueueStarvation
	DecoderInit
	EndOfStream
	Looped
	Invalid
)

func (e Event) String() string {
	switch e {
	case ErrorBufferUnderrun:
		return "ERROR_BUFFER_UNDERRUN"
	case ErrorQueueStarvation:
		return "ERROR_QUEUE_STARVATION"
	case DecoderInit:
		return "DECODER_INIT"
	case EndOfStream:
		return "END_OF_STREAM"
	case Looped:
		return "LOOPED"
	default:
		return "INVALID"
	}
}

// Callback receives an event and the object it was registered on. Context
// the callback needs travels in its closure.
type Callback func(ev Event, owner any)

// Slot holds the callback registered on one object. It is safe to set from
// a client goroutine while producers read it.
type Slot struct {
	cb atomic.Pointer[Callback]
}

// Set registers cb; nil unregisters.
func (s *Slot) Set(cb Callback) {
	if cb == nil {
		s.cb.Store(nil)
		return
	}
	s.cb.Store(&cb)
}

// Get returns the registered callback or nil.
func (s *Slot) Get() Callback {
	if p := s.cb.Load(); p != nil {
		return *p
	}
	return nil
}

type item struct {
	ev    Event
	owner any
	cb    Callback
}

// DefaultQueueSize is the number of undelivered events held before posts
// start dropping.
const DefaultQueueSize = 256

// Dispatcher queues events for delivery.
type Dispatcher struct {
	ch      chan item
	dropped atomic.Uint64
}

func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{ch: make(chan item, size)}
}

// Post queues ev for the callback in slot. It never blocks and does nothing
// when no callback is registered.
func (d *Dispatcher) Post(slot *Slot, ev Event, owner any) {
	cb := slot.Get()
	if cb == nil {
		return
	}
	select {
	case d.ch <- item{ev: ev, owner: owner, cb: cb}:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was
// full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int { return len(d.ch) }

// Run delivers events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case it := <-d.ch:
			it.cb(it.ev, it.owner)
		}
	}
}

// Drain delivers every queued event on the calling goroutine and returns
// how many were delivered.
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		select {
		case it := <-d.ch:
			it.cb(it.ev, it.owner)
			n++
		default:
			return n
		}
	}
}
