// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/transport"
)

// Transport is implemented by everything that can be played.
type Transport interface {
	Play() error
	PlayScheduled(ms float64) error
	PlayWithFade(ms float64) error
	Pause() error
	PauseScheduled(ms float64) error
	PauseWithFade(ms float64) error
	Stop() error
	StopScheduled(ms float64) error
	StopWithFade(ms float64) error
	PlayState() transport.PlayState
}

// Positionable is implemented by sources with a pose in the world. Sound
// fields only rotate and refuse SetPosition.
type Positionable interface {
	SetPosition(v geom.Vector) error
	Position() geom.Vector
	SetRotation(q geom.Quat) error
	SetRotationVectors(forward, up geom.Vector) error
	Rotation() geom.Quat
}

// EventEmitter is implemented by sources that raise events.
type EventEmitter interface {
	SetEventCallback(cb events.Callback) error
}

// Queueable is implemented by sources fed by the client.
type Queueable interface {
	FlushQueue()
	SetEndOfStream(eos bool)
	EndOfStreamStatus() bool
	NumSamplesDequeuedPerChannel() uint64
}

var (
	_ Transport    = (*SpatDecoderQueue)(nil)
	_ Transport    = (*SpatDecoderFile)(nil)
	_ Transport    = (*AudioObject)(nil)
	_ Transport    = (*SpeakersVirtualizer)(nil)
	_ Positionable = (*SpatDecoderQueue)(nil)
	_ Positionable = (*SpatDecoderFile)(nil)
	_ Positionable = (*AudioObject)(nil)
	_ EventEmitter = (*SpatDecoderQueue)(nil)
	_ EventEmitter = (*SpatDecoderFile)(nil)
	_ EventEmitter = (*AudioObject)(nil)
	_ EventEmitter = (*SpeakersVirtualizer)(nil)
	_ Queueable    = (*SpatDecoderQueue)(nil)
	_ Queueable    = (*SpeakersVirtualizer)(nil)
)
