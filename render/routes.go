// SPDX-License-Identifier: EPL-2.0

package render

import "github.com/ik5/spat360/audio"

const (
	// Head-locked channel routes.
	HeadLeft  = -1
	HeadRight = -2
)

// Route is the destination of one input channel: an ambisonic channel
// number (ACN, 0..8) or one of the head-locked routes.
type Route int

// HeadLocked reports whether the channel bypasses the field decoder.
func (r Route) HeadLocked() bool { return r < 0 }

// Routes returns the route of every channel of m. The returned slice is
// shared; do not modify it.
func Routes(m audio.ChannelMap) []Route {
	if !m.Valid() {
		return nil
	}
	return routeTable[m]
}

var routeTable = func() [audio.NumChannelMaps][]Route {
	var t [audio.NumChannelMaps][]Route

	acn := func(n int, headLocked bool) []Route {
		r := make([]Route, 0, n+2)
		for i := range n {
			r = append(r, Route(i))
		}
		if headLocked {
			r = append(r, HeadLeft, HeadRight)
		}
		return r
	}

	t[audio.TBE_8_2] = acn(8, true)
	t[audio.TBE_8] = acn(8, false)
	t[audio.TBE_6_2] = acn(6, true)
	t[audio.TBE_6] = acn(6, false)
	t[audio.TBE_4_2] = acn(4, true)
	t[audio.TBE_4] = acn(4, false)
	for k := range 4 {
		t[audio.TBE_8_PAIR0+audio.ChannelMap(k)] = []Route{Route(2 * k), Route(2*k + 1)}
	}
	for k := range 8 {
		t[audio.TBE_CHANNEL0+audio.ChannelMap(k)] = []Route{Route(k)}
	}
	t[audio.HEADLOCKED_STEREO] = []Route{HeadLeft, HeadRight}
	t[audio.HEADLOCKED_CHANNEL0] = []Route{HeadLeft}
	t[audio.HEADLOCKED_CHANNEL1] = []Route{HeadRight}
	t[audio.AMBIX_4] = acn(4, false)
	t[audio.AMBIX_9] = acn(9, false)
	t[audio.AMBIX_9_2] = acn(9, true)
	t[audio.STEREO] = []Route{HeadLeft, HeadRight}

	return t
}()
