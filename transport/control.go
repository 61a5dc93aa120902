// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/utils"
)

// PlayState is the transport state of a source.
type PlayState int32

const (
	Playing PlayState = iota
	Paused
	Stopped
	Invalid
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	case Stopped:
		return "STOPPED"
	default:
		return "INVALID"
	}
}

type family int

const (
	famPlay family = iota
	famPause
	famStop
	numFamilies
)

type action struct {
	at   uint64 // DSP time the action fires at
	fade int64  // fade length in frames, 0 for a hard switch
}

// Step is what a source should do for one tick.
type Step struct {
	// Active is set when the source should consume and render audio.
	Active bool
	// From and To bound the transport fade gain across the tick.
	From, To float32
	// Stopped is set when a scheduled or faded stop completed this tick.
	Stopped bool
}

// Control is the transport state machine of one source.
type Control struct {
	clock func() uint64
	rate  int

	state     atomic.Int32
	pending   [numFamilies]atomic.Pointer[action]
	interrupt atomic.Uint64

	// owned by the mix goroutine
	gain          float32
	fading        bool
	fadeTo        float32
	fadeStep      float32
	fadeRemain    int64
	fadeFamily    family
	seenInterrupt uint64
}

// NewControl returns a stopped transport. clock reports the engine DSP time
// in frames at rate.
func NewControl(clock func() uint64, rate int) *Control {
	c := &Control{clock: clock, rate: rate, gain: 1}
	c.state.Store(int32(Stopped))
	return c
}

// Reset stops the transport and drops pending actions. The mix goroutine
// must not be ticking c during the call.
func (c *Control) Reset() {
	for i := range c.pending {
		c.pending[i].Store(nil)
	}
	c.state.Store(int32(Stopped))
	c.gain = 1
	c.fading = false
	c.seenInterrupt = c.interrupt.Load()
}

// State returns the current transport state.
func (c *Control) State() PlayState { return PlayState(c.state.Load()) }

func (c *Control) Play() {
	c.pending[famPlay].Store(nil)
	c.state.Store(int32(Playing))
	c.interrupt.Add(1)
}

func (c *Control) Pause() {
	c.pending[famPause].Store(nil)
	c.state.CompareAndSwap(int32(Playing), int32(Paused))
	c.interrupt.Add(1)
}

func (c *Control) Stop() {
	c.pending[famStop].Store(nil)
	c.state.Store(int32(Stopped))
	c.interrupt.Add(1)
}

func (c *Control) PlayScheduled(ms float64) error  { return c.schedule(famPlay, ms, false) }
func (c *Control) PlayWithFade(ms float64) error   { return c.schedule(famPlay, ms, true) }
func (c *Control) PauseScheduled(ms float64) error { return c.schedule(famPause, ms, false) }
func (c *Control) PauseWithFade(ms float64) error  { return c.schedule(famPause, ms, true) }
func (c *Control) StopScheduled(ms float64) error  { return c.schedule(famStop, ms, false) }
func (c *Control) StopWithFade(ms float64) error   { return c.schedule(famStop, ms, true) }

func (c *Control) schedule(f family, ms float64, fade bool) error {
	if ms < 0 {
		return audio.ErrFail
	}

	frames := utils.MsToFrames(ms, c.rate)
	if frames == 0 {
		switch f {
		case famPlay:
			c.Play()
		case famPause:
			c.Pause()
		default:
			c.Stop()
		}
		return nil
	}

	a := &action{at: c.clock()}
	if fade {
		a.fade = frames
	} else {
		a.at += uint64(frames)
	}
	c.pending[f].Store(a)
	return nil
}

// Tick fires due actions and advances fades for a tick of frames starting
// at DSP time now. Mix goroutine only.
func (c *Control) Tick(now uint64, frames int) Step {
	if it := c.interrupt.Load(); it != c.seenInterrupt {
		c.seenInterrupt = it
		c.fading = false
		c.gain = 1
	}

	var stopped bool
	for f := range numFamilies {
		a := c.pending[f].Load()
		if a == nil || now < a.at {
			continue
		}
		if !c.pending[f].CompareAndSwap(a, nil) {
			continue
		}
		if c.fire(f, a) {
			stopped = true
		}
	}

	if c.State() != Playing {
		return Step{Stopped: stopped}
	}

	from := c.gain
	if c.fading {
		n := min(int64(frames), c.fadeRemain)
		c.gain += c.fadeStep * float32(n)
		c.fadeRemain -= n
		if c.fadeRemain == 0 {
			c.gain = c.fadeTo
			c.fading = false
			if c.fadeTo == 0 {
				// the tick still renders the tail of the fade
				step := Step{Active: true, From: from, To: 0}
				if c.fadeFamily == famStop {
					c.state.Store(int32(Stopped))
					step.Stopped = true
				} else {
					c.state.CompareAndSwap(int32(Playing), int32(Paused))
				}
				c.gain = 1
				return step
			}
		}
	}

	return Step{Active: true, From: from, To: c.gain, Stopped: stopped}
}

// fire applies a due action and reports whether it stopped the transport.
func (c *Control) fire(f family, a *action) bool {
	state := c.State()

	switch f {
	case famPlay:
		if a.fade == 0 {
			c.state.Store(int32(Playing))
			c.gain, c.fading = 1, false
			return false
		}
		if state != Playing {
			c.state.Store(int32(Playing))
			c.gain = 0
		}
		c.startFade(1, a.fade, famPlay)

	case famPause:
		if state != Playing {
			return false
		}
		if a.fade == 0 {
			c.state.CompareAndSwap(int32(Playing), int32(Paused))
			return false
		}
		c.startFade(0, a.fade, famPause)

	case famStop:
		if a.fade == 0 || state != Playing {
			c.state.Store(int32(Stopped))
			c.fading = false
			c.gain = 1
			return state != Stopped
		}
		c.startFade(0, a.fade, famStop)
	}
	return false
}

func (c *Control) startFade(to float32, frames int64, f family) {
	if c.gain == to {
		c.fading = false
		return
	}
	c.fading = true
	c.fadeTo = to
	c.fadeFamily = f
	c.fadeStep = (to - c.gain) / float32(frames)
	c.fadeRemain = frames
}
