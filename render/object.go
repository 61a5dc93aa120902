// SPDX-License-Identifier: EPL-2.0

package render

import (
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/utils"
)

// AttenuationMode is the distance roll-off model of a point source.
type AttenuationMode int

const (
	Logarithmic AttenuationMode = iota
	Linear
	Disable
)

func (m AttenuationMode) String() string {
	switch m {
	case Logarithmic:
		return "LOGARITHMIC"
	case Linear:
		return "LINEAR"
	case Disable:
		return "DISABLE"
	default:
		return "INVALID"
	}
}

// AttenuationProps shapes the roll-off curve.
type AttenuationProps struct {
	// MinimumDistance is where attenuation starts.
	MinimumDistance float32
	// MaximumDistance is where attenuation stops.
	MaximumDistance float32
	// Factor is the steepness of the curve. 1 drops 6dB per doubling of
	// distance in the logarithmic model.
	Factor float32
	// MaxDistanceMute silences the source at and past MaximumDistance.
	MaxDistanceMute bool
}

// DefaultAttenuation is the roll-off new objects start with.
var DefaultAttenuation = AttenuationProps{MinimumDistance: 1, MaximumDistance: 1000, Factor: 1}

// Attenuation returns the distance gain at d.
func Attenuation(mode AttenuationMode, p AttenuationProps, d float32) float32 {
	if mode == Disable {
		return 1
	}

	lo := max(p.MinimumDistance, 1e-3)
	hi := max(p.MaximumDistance, lo)
	if d >= hi {
		if p.MaxDistanceMute {
			return 0
		}
		d = hi
	}
	if d <= lo {
		return 1
	}

	factor := max(p.Factor, 0)
	if mode == Linear {
		if hi == lo {
			return 1
		}
		return utils.Clamp(1-factor*(d-lo)/(hi-lo), 0, 1)
	}
	return lo / (lo + factor*(d-lo))
}

// ObjectParams is the state a point source is rendered with.
type ObjectParams struct {
	ListenerPosition geom.Vector
	Listener         geom.Quat
	Position         geom.Vector
	Spatialise       bool
	Mode             AttenuationMode
	Attenuation      AttenuationProps
}

// ObjectMatrix writes the ear gains of a mono or stereo point source into
// out. Stereo sources are folded to their centre and panned as one. A
// source that is not spatialised passes through unchanged.
func ObjectMatrix(channels int, p ObjectParams, out *Matrix) {
	*out = Matrix{}

	if !p.Spatialise {
		switch channels {
		case 1:
			out[0] = [2]float32{1, 1}
		case 2:
			out[0] = [2]float32{1, 0}
			out[1] = [2]float32{0, 1}
		}
		return
	}

	rel := p.Position.Sub(p.ListenerPosition)
	dist := rel.Length()
	gain := Attenuation(p.Mode, p.Attenuation, dist)

	// a source on the listener has no direction and sits in the centre
	var x float32
	if dist > 1e-6 {
		x = p.Listener.Conjugate().Rotate(rel).Scale(1 / dist).X
	}
	ears := equalPower(x)
	ears[0] *= gain
	ears[1] *= gain

	switch channels {
	case 1:
		out[0] = ears
	case 2:
		out[0] = [2]float32{ears[0] * 0.5, ears[1] * 0.5}
		out[1] = out[0]
	}
}
