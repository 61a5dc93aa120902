// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/spat360/geom"
)

// Pose is a position and orientation.
type Pose struct {
	Position geom.Vector
	Rotation geom.Quat
}

// AtomicPose publishes a Pose to the mix goroutine.
type AtomicPose struct {
	mu sync.Mutex
	p  atomic.Pointer[Pose]
}

func NewAtomicPose() *AtomicPose {
	a := &AtomicPose{}
	a.Reset()
	return a
}

func (a *AtomicPose) Reset() {
	a.p.Store(&Pose{Rotation: geom.Identity})
}

// Load returns the current pose. Safe from any goroutine.
func (a *AtomicPose) Load() Pose { return *a.p.Load() }

func (a *AtomicPose) SetPosition(v geom.Vector) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := *a.p.Load()
	next.Position = v
	a.p.Store(&next)
}

// SetRotation stores q normalized.
func (a *AtomicPose) SetRotation(q geom.Quat) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := *a.p.Load()
	next.Rotation = q.Normalize()
	a.p.Store(&next)
}
