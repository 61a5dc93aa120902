// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/pool"
	"github.com/ik5/spat360/queue"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/utils"
)

// SpatDecoderQueue is a sound field fed by the client, one ring per
// channel map. Each map has a single producer; the mix is the consumer.
type SpatDecoderQueue struct {
	*spatQueue
	h pool.Handle
}

type spatQueue struct {
	source

	rings [audio.NumChannelMaps]*queue.Ring[float32]
	// used has bit m set once map m received data.
	used       atomic.Uint32
	eos        atomic.Bool
	eosPosted  atomic.Bool
	dequeued   atomic.Uint64
	prev       [audio.NumChannelMaps]render.Matrix
	primed     uint32
	conv       [audio.NumChannelMaps][]float32
	next       render.Matrix
	starvation bool
}

func newSpatQueue(e *Engine, framesPerChannel int) *spatQueue {
	q := &spatQueue{source: newSource(e)}
	for m := range audio.NumChannelMaps {
		ch := audio.ChannelMap(m).NumChannels()
		q.rings[m] = queue.New[float32](framesPerChannel * ch)
	}
	return q
}

// CreateSpatDecoderQueue takes a queue source from the pool.
func (e *Engine) CreateSpatDecoderQueue() (*SpatDecoderQueue, error) {
	q := &SpatDecoderQueue{}
	h, item, err := e.queues.Acquire(func(_ pool.Handle, item *spatQueue) {
		item.owner = q
	})
	if err != nil {
		return nil, err
	}
	q.spatQueue, q.h = item, h
	return q, nil
}

// DestroySpatDecoderQueue returns q to the pool. Destroying it twice does
// nothing.
func (e *Engine) DestroySpatDecoderQueue(q *SpatDecoderQueue) {
	if q == nil {
		return
	}
	e.queues.Release(q.h, e.releaseQueue)
}

func (q *spatQueue) reset() {
	q.resetSource()
	q.FlushQueue()
	q.dequeued.Store(0)
	q.primed = 0
}

// SetPosition is not supported by sound fields.
func (q *spatQueue) SetPosition(geom.Vector) error { return audio.ErrNotSupported }

// EnqueueData copies as many whole frames of data as fit into the ring of
// m and returns the number of samples accepted.
func (q *spatQueue) EnqueueData(data []float32, m audio.ChannelMap) int {
	if !m.Valid() {
		return 0
	}
	ch := m.NumChannels()
	r := q.rings[m]
	n := min(len(data), r.Free())
	n -= n % ch
	if n == 0 {
		return 0
	}
	q.used.Or(1 << uint(m))
	return r.Write(data[:n])
}

// EnqueueDataInt16 is EnqueueData for 16-bit samples.
func (q *spatQueue) EnqueueDataInt16(data []int16, m audio.ChannelMap) int {
	if !m.Valid() {
		return 0
	}
	ch := m.NumChannels()
	if q.conv[m] == nil {
		q.conv[m] = make([]float32, 1024*ch)
	}
	conv := q.conv[m]

	total := 0
	for total < len(data) {
		chunk := min(len(data)-total, len(conv))
		n := utils.Int16sToFloat32s(conv[:chunk], data[total:total+chunk])
		w := q.EnqueueData(conv[:n], m)
		total += w
		if w < n {
			break
		}
	}
	return total
}

// EnqueueSilence queues n samples of silence, in whole frames.
func (q *spatQueue) EnqueueSilence(n int, m audio.ChannelMap) int {
	if !m.Valid() {
		return 0
	}
	ch := m.NumChannels()
	r := q.rings[m]
	n = min(n, r.Free())
	n -= n % ch
	if n <= 0 {
		return 0
	}
	q.used.Or(1 << uint(m))
	return r.WriteZero(n)
}

// FreeSpaceInQueue is the number of samples the ring of m can accept.
func (q *spatQueue) FreeSpaceInQueue(m audio.ChannelMap) int {
	if !m.Valid() {
		return 0
	}
	return q.rings[m].Free()
}

// QueueSize is the number of samples waiting in the ring of m.
func (q *spatQueue) QueueSize(m audio.ChannelMap) int {
	if !m.Valid() {
		return 0
	}
	return q.rings[m].Len()
}

// FlushQueue drops everything queued and clears the end of stream flag.
// Call it while the source is stopped.
func (q *spatQueue) FlushQueue() {
	for _, r := range q.rings {
		r.Reset()
	}
	q.used.Store(0)
	q.eos.Store(false)
	q.eosPosted.Store(false)
}

// SetEndOfStream marks that no more data follows. The queue then drains
// what it holds and raises EndOfStream.
func (q *spatQueue) SetEndOfStream(eos bool) {
	q.eos.Store(eos)
	if !eos {
		q.eosPosted.Store(false)
	}
}

func (q *spatQueue) EndOfStreamStatus() bool { return q.eos.Load() }

func (q *spatQueue) NumSamplesDequeuedPerChannel() uint64 { return q.dequeued.Load() }

func (q *spatQueue) render(t *tick) {
	step, gFrom, gTo := q.step(t)
	if !step.Active {
		return
	}

	used := q.used.Load()
	if used == 0 {
		return
	}

	eos := q.eos.Load()
	params := q.fieldParams(t)
	var consumed, pending int
	starved := false

	for m := range audio.NumChannelMaps {
		if used&(1<<uint(m)) == 0 {
			continue
		}
		cm := audio.ChannelMap(m)
		ch := cm.NumChannels()
		r := q.rings[m]
		want := t.frames * ch

		if r.Len() < want && !eos {
			// keep the data, it plays once enough arrived
			starved = true
			continue
		}

		in := t.in[:want]
		n := r.Read(in)
		clear(in[n:])
		consumed = max(consumed, n/ch)
		pending += r.Len()

		e := q.e
		e.renderer.FieldMatrix(cm, params, &q.next)
		if q.primed&(1<<uint(m)) == 0 {
			q.prev[m] = q.next
			q.primed |= 1 << uint(m)
		}
		render.MixInto(t.out, in, ch, t.frames, &q.prev[m], &q.next, gFrom, gTo)
		q.prev[m] = q.next
	}

	q.dequeued.Add(uint64(consumed))

	// one event per starvation episode
	if starved {
		if !q.starvation {
			q.post(events.ErrorQueueStarvation)
		}
		q.starvation = true
	} else {
		q.starvation = false
	}

	if eos && pending == 0 && !starved && q.eosPosted.CompareAndSwap(false, true) {
		q.post(events.EndOfStream)
	}
}
