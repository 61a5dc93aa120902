// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/spat360/queue"

// staleItems holds one detached item per pooled type. A client handle is
// pointed at them when its slot is released, so calls made through it
// fail instead of reaching the next occupant of the slot. They are never
// in a pool and never mixed.
type staleItems struct {
	queue  *spatQueue
	file   *spatFile
	object *audioObject
	virt   *virtualizer
}

func newStaleItems(e *Engine) staleItems {
	q := newSpatQueue(e, 0)
	q.detached = true

	f := &spatFile{source: newSource(e)}
	f.detached = true
	f.player = newFilePlayer(e, &f.source, 1, 0)
	f.resetSync()

	o := &audioObject{source: newSource(e)}
	o.detached = true
	o.player = newFilePlayer(e, &o.source, 1, 0)
	o.shape.Store(defaultShape())

	return staleItems{
		queue:  q,
		file:   f,
		object: o,
		virt:   &virtualizer{e: e, ring: queue.New[float32](0), detached: true},
	}
}

func (e *Engine) releaseQueue(q *spatQueue) {
	if w, ok := q.owner.(*SpatDecoderQueue); ok {
		w.spatQueue = e.stale.queue
	}
	e.waitMixIdle()
	q.reset()
}

func (e *Engine) releaseFile(f *spatFile) {
	if w, ok := f.owner.(*SpatDecoderFile); ok {
		w.spatFile = e.stale.file
	}
	f.reset()
}

func (e *Engine) releaseObject(o *audioObject) {
	if w, ok := o.owner.(*AudioObject); ok {
		w.audioObject = e.stale.object
	}
	o.reset()
}

func (e *Engine) releaseVirtualizer(v *virtualizer) {
	if w, ok := v.owner.(*SpeakersVirtualizer); ok {
		w.virtualizer = e.stale.virt
	}
	v.teardown()
}
