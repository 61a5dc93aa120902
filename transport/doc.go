// SPDX-License-Identifier: EPL-2.0

// Package transport implements the control surface shared by every source:
// the play/pause/stop state machine, volume ramps, focus and pose.
//
// Each type is split between a client side, which may be called from any
// goroutine but not concurrently on the same object, and a Tick method
// owned by the mix goroutine. The two sides communicate through atomics
// only, so Tick never blocks.
//
// # Scheduling
//
// Play, pause and stop each come in three variants: immediate, scheduled
// after a delay, and faded over a duration. Every family holds at most one
// pending action; a later call of the same family replaces it. Scheduled
// actions fire on the first tick whose start has reached the target DSP
// time, so their resolution is one buffer.
package transport
