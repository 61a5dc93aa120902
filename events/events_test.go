// SPDX-License-Identifier: EPL-2.0

package events

import (
	"context"
	"testing"
	"time"
)

func TestDispatcher_DrainDeliversInOrder(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(8)
	var slot Slot
	var got []Event
	owner := "file-1"
	slot.Set(func(ev Event, o any) {
		if o != owner {
			t.Errorf("owner = %v, want %v", o, owner)
		}
		got = append(got, ev)
	})

	d.Post(&slot, DecoderInit, owner)
	d.Post(&slot, Looped, owner)
	d.Post(&slot, EndOfStream, owner)

	if n := d.Drain(); n != 3 {
		t.Fatalf("Drain() = %d, want 3", n)
	}
	want := []Event{DecoderInit, Looped, EndOfStream}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDispatcher_NoCallbackNoPost(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(1)
	var slot Slot
	d.Post(&slot, EndOfStream, nil)

	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}

	slot.Set(func(Event, any) {})
	slot.Set(nil)
	d.Post(&slot, EndOfStream, nil)
	if d.Pending() != 0 {
		t.Errorf("Pending() after unregister = %d, want 0", d.Pending())
	}
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(2)
	var slot Slot
	slot.Set(func(Event, any) {})

	for range 5 {
		d.Post(&slot, ErrorQueueStarvation, nil)
	}
	if d.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", d.Dropped())
	}
}

func TestDispatcher_Run(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	got := make(chan Event, 1)
	var slot Slot
	slot.Set(func(ev Event, _ any) { got <- ev })
	d.Post(&slot, Looped, nil)

	select {
	case ev := <-got:
		if ev != Looped {
			t.Errorf("event = %v, want LOOPED", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestEvent_String(t *testing.T) {
	t.Parallel()

	if EndOfStream.String() != "END_OF_STREAM" || Event(42).String() != "INVALID" {
		t.Error("unexpected Event names")
	}
}
