// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/utils"
)

const (
	MinOffFocusDB     = -24
	MaxOffFocusDB     = 0
	MinFocusWidthDeg  = 40
	MaxFocusWidthDeg  = 120
	defaultOffFocusDB = -12
	defaultFocusWidth = 90
)

// FocusParams shapes the spatial loudness of a sound field: directions
// inside the focus cone keep their level, the rest is attenuated by
// OffFocusDB.
type FocusParams struct {
	Enabled bool
	// FollowListener points the focus where the listener looks instead of
	// at Orientation.
	FollowListener bool
	OffFocusDB     float32
	WidthDegrees   float32
	Orientation    geom.Quat
}

// Focus publishes FocusParams to the mix goroutine.
type Focus struct {
	mu sync.Mutex
	p  atomic.Pointer[FocusParams]
}

func NewFocus() *Focus {
	f := &Focus{}
	f.Reset()
	return f
}

func (f *Focus) Reset() {
	f.p.Store(&FocusParams{
		OffFocusDB:   defaultOffFocusDB,
		WidthDegrees: defaultFocusWidth,
		Orientation:  geom.Identity,
	})
}

// Params returns the current settings. Safe from any goroutine.
func (f *Focus) Params() FocusParams { return *f.p.Load() }

func (f *Focus) update(fn func(p *FocusParams)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := *f.p.Load()
	fn(&next)
	f.p.Store(&next)
}

func (f *Focus) Enable(enable, followListener bool) {
	f.update(func(p *FocusParams) {
		p.Enabled = enable
		p.FollowListener = followListener
	})
}

// SetOffFocusLevelDB clamps db to [-24, 0].
func (f *Focus) SetOffFocusLevelDB(db float32) {
	f.update(func(p *FocusParams) {
		p.OffFocusDB = utils.Clamp(db, MinOffFocusDB, MaxOffFocusDB)
	})
}

// SetWidthDegrees clamps deg to [40, 120].
func (f *Focus) SetWidthDegrees(deg float32) {
	f.update(func(p *FocusParams) {
		p.WidthDegrees = utils.Clamp(deg, MinFocusWidthDeg, MaxFocusWidthDeg)
	})
}

func (f *Focus) SetOrientation(q geom.Quat) {
	q = q.Normalize()
	f.update(func(p *FocusParams) { p.Orientation = q })
}

// SetProperties is the older form of the focus setters. level runs from 0
// (no attenuation) to 1 (-24 dB).
//
// Deprecated: use SetOffFocusLevelDB and SetWidthDegrees.
func (f *Focus) SetProperties(level, widthDeg float32) {
	level = utils.Clamp(level, 0, 1)
	f.update(func(p *FocusParams) {
		p.OffFocusDB = MinOffFocusDB * level
		p.WidthDegrees = utils.Clamp(widthDeg, MinFocusWidthDeg, MaxFocusWidthDeg)
	})
}
