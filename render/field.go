// SPDX-License-Identifier: EPL-2.0

package render

import (
	"math"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/transport"
	"github.com/ik5/spat360/utils"
)

// Kind selects the virtual speaker layout of a Renderer.
type Kind int

const (
	// VirtualSpeaker decodes to a horizontal ring only. Deprecated.
	VirtualSpeaker Kind = iota
	// Ambisonic decodes to a ring plus upper and lower layers.
	Ambisonic
)

func (k Kind) String() string {
	if k == VirtualSpeaker {
		return "VIRTUAL_SPEAKER"
	}
	return "AMBISONIC"
}

const (
	maxOrder    = 2
	numACN      = (maxOrder + 1) * (maxOrder + 1)
	maxSpeakers = 16

	// trackingBias is the gain change per unit of listener displacement
	// towards or away from a speaker.
	trackingBias = 0.5
)

var sqrt3 = float32(math.Sqrt(3))

// order of each ACN
var acnOrder = [numACN]int{0, 1, 1, 1, 2, 2, 2, 2, 2}

// FieldParams is the state a sound field is rendered with.
type FieldParams struct {
	Listener geom.Quat
	// Field is the orientation of the sound field in the world.
	Field geom.Quat
	Focus transport.FocusParams
	// Tracking is the clamped listener displacement from the positional
	// tracking reference, zero when tracking is off.
	Tracking geom.Vector
}

// Renderer decodes sound fields for one listener. It is immutable after
// NewRenderer and safe for concurrent use.
type Renderer struct {
	kind  Kind
	n     int
	dirs  [maxSpeakers]geom.Vector // head frame
	ears  [maxSpeakers][2]float32
	scale float32
}

// NewRenderer builds the virtual speaker layout for kind.
func NewRenderer(kind Kind) *Renderer {
	r := &Renderer{kind: kind}

	add := func(azDeg, elDeg float64) {
		az := azDeg * math.Pi / 180
		el := elDeg * math.Pi / 180
		r.dirs[r.n] = geom.Vector{
			X: float32(math.Sin(az) * math.Cos(el)),
			Y: float32(math.Sin(el)),
			Z: float32(math.Cos(az) * math.Cos(el)),
		}
		r.n++
	}

	for az := 0.0; az < 360; az += 45 {
		add(az, 0)
	}
	if kind == Ambisonic {
		for az := 45.0; az < 360; az += 90 {
			add(az, 45)
		}
		for az := 0.0; az < 360; az += 90 {
			add(az, -45)
		}
	}

	var left float32
	for k := range r.n {
		r.ears[k] = equalPower(r.dirs[k].X)
		left += r.ears[k][0]
	}
	// an omnidirectional field reaches each ear at unity
	r.scale = 1 / left

	return r
}

// Kind returns the layout the renderer was built with.
func (r *Renderer) Kind() Kind { return r.kind }

// SupportsPositionalTracking reports whether listener displacement is
// rendered.
func (r *Renderer) SupportsPositionalTracking() bool { return r.kind == Ambisonic }

// equalPower pans by x in [-1, 1], left to right.
func equalPower(x float32) [2]float32 {
	p := float64(utils.Clamp(x, -1, 1)+1) * math.Pi / 4
	return [2]float32{float32(math.Cos(p)), float32(math.Sin(p))}
}

// harmonics evaluates the real SN3D spherical harmonics up to second order
// in ACN order. d uses the engine axes: +X right, +Y up, +Z forward.
func harmonics(d geom.Vector) [numACN]float32 {
	// ambisonic axes: x forward, y left, z up
	x, y, z := d.Z, -d.X, d.Y
	return [numACN]float32{
		1,
		y,
		z,
		x,
		sqrt3 * x * y,
		sqrt3 * y * z,
		0.5 * (3*z*z - 1),
		sqrt3 * x * z,
		sqrt3 / 2 * (x*x - y*y),
	}
}

// focusGain is the cosine bump centred on the focus direction.
func focusGain(dir, focus geom.Vector, widthRad, offGain float32) float32 {
	cos := utils.Clamp(dir.Dot(focus), -1, 1)
	angle := float32(math.Acos(float64(cos)))
	if angle >= widthRad {
		return offGain
	}
	bump := 0.5 * (1 + float32(math.Cos(math.Pi*float64(angle/widthRad))))
	return offGain + (1-offGain)*bump
}

// FieldMatrix writes the ear gains of every channel of m into out. Channels
// past NumChannels are zeroed.
func (r *Renderer) FieldMatrix(m audio.ChannelMap, p FieldParams, out *Matrix) {
	*out = Matrix{}

	routes := Routes(m)
	if len(routes) == 0 {
		return
	}

	var focusDir geom.Vector
	var width, off float32
	if p.Focus.Enabled {
		focusDir = geom.Forward
		if !p.Focus.FollowListener {
			// focus orientation is fixed in the world, bring it into the head frame
			focusDir = p.Listener.Conjugate().Rotate(p.Focus.Orientation.Forward())
		}
		width = p.Focus.WidthDegrees * math.Pi / 180
		off = utils.DecibelsToGain(p.Focus.OffFocusDB)
	}

	toField := p.Field.Conjugate().Mul(p.Listener)
	tracking := r.kind == Ambisonic && p.Tracking != (geom.Vector{})

	// per speaker decode weights, summed into the ACN ear gains
	var acnGain [numACN][2]float32
	for k := range r.n {
		w := r.scale
		if p.Focus.Enabled {
			w *= focusGain(r.dirs[k], focusDir, width, off)
		}
		if tracking {
			world := p.Listener.Rotate(r.dirs[k])
			w *= utils.Clamp(1+trackingBias*world.Dot(p.Tracking), 0.25, 2)
		}

		y := harmonics(toField.Rotate(r.dirs[k]))
		for a := range numACN {
			g := w * float32(2*acnOrder[a]+1) * y[a]
			acnGain[a][0] += g * r.ears[k][0]
			acnGain[a][1] += g * r.ears[k][1]
		}
	}

	for c, route := range routes {
		switch {
		case route == HeadLeft:
			out[c] = [2]float32{1, 0}
		case route == HeadRight:
			out[c] = [2]float32{0, 1}
		case int(route) < numACN:
			out[c] = acnGain[route]
		}
	}
}
