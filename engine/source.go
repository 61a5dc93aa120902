// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/transport"
	"github.com/ik5/spat360/utils"
)

// source is the state every pooled source shares: transport, volume, focus,
// pose and the event slot.
type source struct {
	e       *Engine
	owner   any
	control *transport.Control
	volume  *transport.Volume
	focus   *transport.Focus
	pose    *transport.AtomicPose
	events  events.Slot

	// onStop runs after an immediate Stop from a client goroutine.
	onStop func()
	// detached is set on the stand-ins of released handles.
	detached bool
}

func newSource(e *Engine) source {
	return source{
		e:       e,
		control: transport.NewControl(e.dsp.Load, e.rate),
		volume:  transport.NewVolume(),
		focus:   transport.NewFocus(),
		pose:    transport.NewAtomicPose(),
	}
}

func (s *source) resetSource() {
	s.control.Reset()
	s.volume.Reset()
	s.focus.Reset()
	s.pose.Reset()
	s.events.Set(nil)
	s.owner = nil
}

func (s *source) post(ev events.Event) {
	s.e.dispatch.Post(&s.events, ev, s.owner)
}

// step advances transport and volume for t and returns the combined gain
// ramp.
func (s *source) step(t *tick) (transport.Step, float32, float32) {
	st := s.control.Tick(t.now, t.frames)
	vFrom, vTo := s.volume.Tick(t.frames)
	return st, st.From * vFrom, st.To * vTo
}

// usable fails with audio.ErrFail once the handle was destroyed.
func (s *source) usable() error {
	if s.detached {
		return audio.ErrFail
	}
	return nil
}

func (s *source) Play() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.control.Play()
	return nil
}

func (s *source) Pause() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.control.Pause()
	return nil
}

func (s *source) Stop() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.control.Stop()
	if s.onStop != nil {
		s.onStop()
	}
	return nil
}

func (s *source) PlayScheduled(ms float64) error {
	return s.schedule(ms, s.control.PlayScheduled)
}

func (s *source) PlayWithFade(ms float64) error {
	return s.schedule(ms, s.control.PlayWithFade)
}

func (s *source) PauseScheduled(ms float64) error {
	return s.schedule(ms, s.control.PauseScheduled)
}

func (s *source) PauseWithFade(ms float64) error {
	return s.schedule(ms, s.control.PauseWithFade)
}

func (s *source) StopScheduled(ms float64) error {
	return s.schedule(ms, s.control.StopScheduled)
}

func (s *source) StopWithFade(ms float64) error {
	return s.schedule(ms, s.control.StopWithFade)
}

func (s *source) schedule(ms float64, fn func(float64) error) error {
	if err := s.usable(); err != nil {
		return err
	}
	return fn(ms)
}

func (s *source) PlayState() transport.PlayState { return s.control.State() }

// SetVolume ramps the linear gain to gain over rampMs. With force set it
// also replaces the gain a ramp in flight starts from.
func (s *source) SetVolume(gain, rampMs float32, force bool) {
	s.volume.Set(gain, utils.MsToFrames(float64(rampMs), s.e.rate), force)
}

func (s *source) SetVolumeDecibels(db, rampMs float32, force bool) {
	s.volume.SetDecibels(db, utils.MsToFrames(float64(rampMs), s.e.rate), force)
}

func (s *source) Volume() float32         { return s.volume.Target() }
func (s *source) VolumeDecibels() float32 { return s.volume.TargetDecibels() }

func (s *source) EnableFocus(enable, followListener bool) { s.focus.Enable(enable, followListener) }
func (s *source) SetOffFocusLevelDB(db float32)           { s.focus.SetOffFocusLevelDB(db) }
func (s *source) SetFocusWidthDegrees(deg float32)        { s.focus.SetWidthDegrees(deg) }
func (s *source) SetFocusOrientation(q geom.Quat)         { s.focus.SetOrientation(q) }

// SetFocusProperties sets the off-focus level and the width together.
//
// Deprecated: use SetOffFocusLevelDB and SetFocusWidthDegrees.
func (s *source) SetFocusProperties(offFocusDB, widthDeg float32) {
	s.focus.SetProperties(offFocusDB, widthDeg)
}

func (s *source) FocusParams() transport.FocusParams { return s.focus.Params() }

func (s *source) SetRotation(q geom.Quat) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.pose.SetRotation(q)
	return nil
}

func (s *source) SetRotationVectors(forward, up geom.Vector) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.pose.SetRotation(geom.FromVectors(forward, up))
	return nil
}

func (s *source) SetRotationEuler(yaw, pitch, roll float32) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.pose.SetRotation(geom.FromEuler(yaw, pitch, roll))
	return nil
}

func (s *source) Rotation() geom.Quat   { return s.pose.Load().Rotation }
func (s *source) Position() geom.Vector { return s.pose.Load().Position }

func (s *source) SetEventCallback(cb events.Callback) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.events.Set(cb)
	return nil
}

// fieldParams is what a sound field in s is rendered with during t.
func (s *source) fieldParams(t *tick) render.FieldParams {
	return render.FieldParams{
		Listener: t.listener.Rotation,
		Field:    s.pose.Load().Rotation,
		Focus:    s.focus.Params(),
		Tracking: t.tracking,
	}
}
