// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"testing"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/transport"
)

func constant(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestSpatDecoderQueue_Enqueue(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Memory.SpatQueueSizePerChannel = 100
	})
	q, err := e.CreateSpatDecoderQueue()
	if err != nil {
		t.Fatal(err)
	}

	if got := q.FreeSpaceInQueue(audio.TBE_8_2); got != 1000 {
		t.Errorf("FreeSpaceInQueue(TBE_8_2) = %d, want 1000", got)
	}
	if got := q.EnqueueData(make([]float32, 5), audio.STEREO); got != 4 {
		t.Errorf("EnqueueData(5 samples, STEREO) = %d, want 4", got)
	}
	if got := q.EnqueueData(make([]float32, 8), audio.INVALID); got != 0 {
		t.Errorf("EnqueueData(INVALID) = %d, want 0", got)
	}
	if got := q.EnqueueDataInt16(make([]int16, 6), audio.STEREO); got != 6 {
		t.Errorf("EnqueueDataInt16() = %d, want 6", got)
	}
	if got := q.EnqueueSilence(3, audio.STEREO); got != 2 {
		t.Errorf("EnqueueSilence(3) = %d, want 2", got)
	}
	if got := q.QueueSize(audio.STEREO); got != 12 {
		t.Errorf("QueueSize() = %d, want 12", got)
	}

	// only whole frames that fit are taken
	if got := q.EnqueueData(make([]float32, 400), audio.STEREO); got != 188 {
		t.Errorf("EnqueueData(overflow) = %d, want 188", got)
	}
	if got := q.FreeSpaceInQueue(audio.STEREO); got != 0 {
		t.Errorf("FreeSpaceInQueue() = %d, want 0", got)
	}

	q.SetEndOfStream(true)
	q.FlushQueue()
	if q.QueueSize(audio.STEREO) != 0 || q.EndOfStreamStatus() {
		t.Error("FlushQueue() kept data or end of stream")
	}

	if err := q.SetPosition(geom.Vector{X: 1}); !errors.Is(err, audio.ErrNotSupported) {
		t.Errorf("SetPosition() = %v, want ErrNotSupported", err)
	}
}

func TestSpatDecoderQueue_PlaysHeadLocked(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	q, err := e.CreateSpatDecoderQueue()
	if err != nil {
		t.Fatal(err)
	}

	data := make([]float32, 2*testBuffer)
	for i := range testBuffer {
		data[2*i], data[2*i+1] = 0.25, -0.5
	}
	q.EnqueueData(data, audio.HEADLOCKED_STEREO)

	// stopped sources stay silent and keep their data
	pull(t, e, testBuffer)
	if q.QueueSize(audio.HEADLOCKED_STEREO) != len(data) {
		t.Fatal("stopped queue consumed data")
	}

	_ = q.Play()
	if q.PlayState() != transport.Playing {
		t.Fatalf("PlayState() = %v", q.PlayState())
	}
	out := pull(t, e, testBuffer)
	for i := range testBuffer {
		if out[2*i] != 0.25 || out[2*i+1] != -0.5 {
			t.Fatalf("frame %d = %v, %v", i, out[2*i], out[2*i+1])
		}
	}
	if got := q.NumSamplesDequeuedPerChannel(); got != testBuffer {
		t.Errorf("NumSamplesDequeuedPerChannel() = %d, want %d", got, testBuffer)
	}
}

func TestSpatDecoderQueue_Starvation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	q, err := e.CreateSpatDecoderQueue()
	if err != nil {
		t.Fatal(err)
	}
	var log eventLog
	_ = q.SetEventCallback(log.record)

	q.EnqueueData(constant(100, 1), audio.STEREO)
	_ = q.Play()

	out := pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()

	if log.count(events.ErrorQueueStarvation) != 1 {
		t.Fatalf("events = %v, want one starvation", log.events)
	}
	if log.owners[0] != q {
		t.Errorf("owner = %v, want the queue", log.owners[0])
	}
	if q.QueueSize(audio.STEREO) != 100 {
		t.Errorf("QueueSize() = %d, starved queue must keep its data", q.QueueSize(audio.STEREO))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("starved queue produced sound")
		}
	}
}

func TestSpatDecoderQueue_EndOfStreamDrains(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	q, err := e.CreateSpatDecoderQueue()
	if err != nil {
		t.Fatal(err)
	}
	var log eventLog
	_ = q.SetEventCallback(log.record)

	frames := testBuffer + testBuffer/2
	q.EnqueueData(constant(2*frames, 0.5), audio.STEREO)
	q.SetEndOfStream(true)
	_ = q.Play()

	pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()
	if log.count(events.EndOfStream) != 0 {
		t.Fatal("EndOfStream before the queue drained")
	}

	out := pull(t, e, testBuffer)
	pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()

	if log.count(events.EndOfStream) != 1 {
		t.Errorf("events = %v, want one EndOfStream", log.events)
	}
	if got := q.NumSamplesDequeuedPerChannel(); got != uint64(frames) {
		t.Errorf("NumSamplesDequeuedPerChannel() = %d, want %d", got, frames)
	}
	// the partial block plays, then silence
	if out[2*(testBuffer/2)-2] == 0 || out[2*(testBuffer/2)] != 0 {
		t.Errorf("partial block not drained correctly")
	}
}
