// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"time"

	"github.com/ik5/spat360/loudness"
)

// decodeLoop keeps the file rings topped up and feeds the loudness meter
// until ctx is done.
func (e *Engine) decodeLoop(ctx context.Context) error {
	interval := max(e.bufferDuration(e.frames)/2, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Debug("decoder goroutine started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("decoder goroutine stopped")
			return nil
		case <-ticker.C:
		case <-e.wake:
		}

		for _, f := range e.files.Live() {
			f.player.fill()
		}
		for _, o := range e.objects.Live() {
			o.player.fill()
		}
		if e.loudOn.Load() {
			e.meterMu.Lock()
			e.drainLoudnessLocked()
			e.meterMu.Unlock()
		}
	}
}

// feedLoudness queues one mixed block for the meter. The mix drains the
// ring itself when no decoder goroutine runs or the ring is about to
// overflow.
func (e *Engine) feedLoudness(out []float32) {
	if e.loudRing.Free() < len(out) {
		e.tryDrainLoudness()
	}
	e.loudRing.Write(out)
	if !e.cfg.Threads.UseDecoderThread {
		e.tryDrainLoudness()
	}
}

// tryDrainLoudness skips the drain when a reader holds the meter; that
// reader drains the ring before it reads.
func (e *Engine) tryDrainLoudness() {
	if !e.meterMu.TryLock() {
		return
	}
	e.drainLoudnessLocked()
	e.meterMu.Unlock()
}

func (e *Engine) drainLoudnessLocked() {
	for {
		n := e.loudRing.Read(e.loudScratch)
		if n == 0 {
			return
		}
		e.meter.Process(e.loudScratch[:n])
	}
}

// EnableLoudness starts or stops measuring the rendered mix.
func (e *Engine) EnableLoudness(enable bool) {
	e.loudOn.Store(enable)
}

func (e *Engine) LoudnessEnabled() bool { return e.loudOn.Load() }

// RenderedLoudness returns the loudness of what was mixed since the meter
// was last reset.
func (e *Engine) RenderedLoudness() loudness.Statistics {
	e.meterMu.Lock()
	defer e.meterMu.Unlock()

	e.drainLoudnessLocked()
	return e.meter.Statistics()
}

// ResetLoudness drops the measurement so far.
func (e *Engine) ResetLoudness() {
	e.meterMu.Lock()
	defer e.meterMu.Unlock()

	e.drainLoudnessLocked()
	e.meter.Reset()
}
