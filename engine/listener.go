// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/geom"
)

type trackingState struct {
	initial geom.Vector
}

func (e *Engine) SetListenerPosition(v geom.Vector) { e.listener.SetPosition(v) }

func (e *Engine) SetListenerRotation(q geom.Quat) { e.listener.SetRotation(q) }

// SetListenerRotationVectors orients the listener from a forward and an up
// vector.
func (e *Engine) SetListenerRotationVectors(forward, up geom.Vector) {
	e.listener.SetRotation(geom.FromVectors(forward, up))
}

// SetListenerRotationEuler orients the listener from yaw, pitch and roll in
// degrees.
func (e *Engine) SetListenerRotationEuler(yaw, pitch, roll float32) {
	e.listener.SetRotation(geom.FromEuler(yaw, pitch, roll))
}

func (e *Engine) ListenerPosition() geom.Vector { return e.listener.Load().Position }
func (e *Engine) ListenerRotation() geom.Quat   { return e.listener.Load().Rotation }

// ListenerForward is the direction the listener looks at.
func (e *Engine) ListenerForward() geom.Vector { return e.listener.Load().Rotation.Forward() }
func (e *Engine) ListenerUp() geom.Vector      { return e.listener.Load().Rotation.Up() }

// EnablePositionalTracking makes sound fields react to the listener moving
// away from initial, up to one unit per axis. Only the ambisonic renderer
// supports it.
func (e *Engine) EnablePositionalTracking(enable bool, initial geom.Vector) error {
	if !e.renderer.SupportsPositionalTracking() {
		return audio.ErrNotSupported
	}
	if !enable {
		e.tracking.Store(nil)
		return nil
	}
	e.tracking.Store(&trackingState{initial: initial})
	return nil
}

func (e *Engine) PositionalTrackingEnabled() bool { return e.tracking.Load() != nil }
