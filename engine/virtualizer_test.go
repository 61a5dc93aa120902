// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/transport"
)

func TestSpeakerPosition_Direction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pos       SpeakerPosition
		wantLeft  bool
		wantRight bool
	}{
		{Left, true, false},
		{Right, false, true},
		{Center, false, false},
		{LeftSurround, true, false},
		{RightBackSurround, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			t.Parallel()

			d := tt.pos.Direction()
			if got := d.X < -1e-6; got != tt.wantLeft {
				t.Errorf("Direction() = %+v, left = %v", d, got)
			}
			if got := d.X > 1e-6; got != tt.wantRight {
				t.Errorf("Direction() = %+v, right = %v", d, got)
			}
		})
	}

	if LowFrequencyEffects.Direction().Length() != 0 {
		t.Error("LFE has a direction")
	}
	if EndEnum.String() != "END" {
		t.Errorf("EndEnum.String() = %q", EndEnum.String())
	}
}

func TestSpeakersVirtualizer_Create(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Memory.AudioObjectPoolSize = 3
	})

	sv, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{Left, Right, EndEnum, Center}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := sv.Speakers(); !slices.Equal(got, []SpeakerPosition{Left, Right}) {
		t.Errorf("Speakers() = %v", got)
	}
	if got := sv.FreeSpaceInQueue(); got != 2*defaultChannelBufferSize {
		t.Errorf("FreeSpaceInQueue() = %d, want %d", got, 2*defaultChannelBufferSize)
	}

	// two of three objects are taken
	if _, err := e.CreateAudioObject(OptionsDefault); err != nil {
		t.Fatalf("CreateAudioObject() error = %v", err)
	}
	if _, err := e.CreateAudioObject(OptionsDefault); !errors.Is(err, audio.ErrNoObjectsInPool) {
		t.Fatalf("CreateAudioObject() error = %v, want ErrNoObjectsInPool", err)
	}

	e.DestroySpeakersVirtualizer(sv)
	e.DestroySpeakersVirtualizer(sv)
	if _, err := e.CreateAudioObject(OptionsDefault); err != nil {
		t.Errorf("objects not returned by destroy: %v", err)
	}

	if _, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{SpeakerPosition(42)}, 0); !errors.Is(err, audio.ErrFail) {
		t.Errorf("bad layout error = %v, want ErrFail", err)
	}
}

func TestSpeakersVirtualizer_PoolRollback(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Memory.AudioObjectPoolSize = 1
		s.Memory.SpeakersVirtualizerPoolSize = 1
	})

	_, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{Left, Right}, 0)
	if !errors.Is(err, audio.ErrNoObjectsInPool) {
		t.Fatalf("CreateSpeakersVirtualizer() error = %v, want ErrNoObjectsInPool", err)
	}

	// neither the object nor the virtualizer slot leaked
	o, err := e.CreateAudioObject(OptionsDefault)
	if err != nil {
		t.Fatalf("CreateAudioObject() error = %v", err)
	}
	e.DestroyAudioObject(o)
	if _, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{Center}, 0); err != nil {
		t.Errorf("CreateSpeakersVirtualizer() error = %v", err)
	}
}

func TestSpeakersVirtualizer_Enqueue(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	sv, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{Left, Right}, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sv.EnqueueData(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidBufferSize) {
		t.Errorf("EnqueueData(odd) error = %v, want ErrInvalidBufferSize", err)
	}
	if _, err := sv.EnqueueDataInt16(make([]int16, 5)); !errors.Is(err, audio.ErrInvalidBufferSize) {
		t.Errorf("EnqueueDataInt16(odd) error = %v, want ErrInvalidBufferSize", err)
	}

	n, err := sv.EnqueueDataInt16(make([]int16, 12))
	if err != nil || n != 12 {
		t.Fatalf("EnqueueDataInt16() = %d, %v", n, err)
	}
	n, err = sv.EnqueueData(make([]float32, 12))
	if !errors.Is(err, audio.ErrQueueFull) || n != 8 {
		t.Errorf("EnqueueData(overflow) = %d, %v, want 8, ErrQueueFull", n, err)
	}
	if sv.QueueSize() != 20 || sv.FreeSpaceInQueue() != 0 {
		t.Errorf("QueueSize() = %d, FreeSpaceInQueue() = %d", sv.QueueSize(), sv.FreeSpaceInQueue())
	}

	sv.SetEndOfStream(true)
	sv.FlushQueue()
	if sv.QueueSize() != 0 || sv.EndOfStreamStatus() {
		t.Error("FlushQueue() kept data or end of stream")
	}
}

func TestSpeakersVirtualizer_Renders(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	sv, err := e.CreateSpeakersVirtualizer([]SpeakerPosition{Left, Right}, 4*testBuffer)
	if err != nil {
		t.Fatal(err)
	}
	var log eventLog
	_ = sv.SetEventCallback(log.record)

	// signal on the left speaker only
	data := make([]float32, 2*2*testBuffer)
	for i := 0; i < len(data); i += 2 {
		data[i] = 0.5
	}
	if _, err := sv.EnqueueData(data); err != nil {
		t.Fatal(err)
	}

	if err := sv.Play(); err != nil {
		t.Fatal(err)
	}
	if sv.PlayState() != transport.Playing {
		t.Fatalf("PlayState() = %v", sv.PlayState())
	}
	sv.SetVolume(0.5, 0, false)
	if sv.Volume() != 0.5 {
		t.Errorf("Volume() = %v, want 0.5", sv.Volume())
	}
	sv.SetVolume(1, 0, false)

	out := pull(t, e, testBuffer)
	left, right := out[2*testBuffer-2], out[2*testBuffer-1]
	if left <= right || right <= 0 {
		t.Errorf("left speaker: left %v, right %v", left, right)
	}
	if got := sv.NumSamplesDequeuedPerChannel(); got != testBuffer {
		t.Errorf("NumSamplesDequeuedPerChannel() = %d, want %d", got, testBuffer)
	}

	pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()
	if log.count(events.ErrorBufferUnderrun) != 0 {
		t.Fatalf("underrun with data queued: %v", log.events)
	}

	// the queue is dry now
	pull(t, e, testBuffer)
	pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()
	if log.count(events.ErrorBufferUnderrun) != 1 {
		t.Errorf("events = %v, want one underrun", log.events)
	}
	if len(log.owners) > 0 && log.owners[0] != sv {
		t.Errorf("owner = %v, want the virtualizer", log.owners[0])
	}

	// no underrun once the stream has ended
	sv.SetEndOfStream(true)
	_, _ = sv.EnqueueData(make([]float32, 2))
	pull(t, e, testBuffer)
	pull(t, e, testBuffer)
	_ = e.ProcessEventsOnThisThread()
	if log.count(events.ErrorBufferUnderrun) != 1 {
		t.Errorf("underrun after end of stream: %v", log.events)
	}

	if err := sv.Stop(); err != nil {
		t.Fatal(err)
	}
	if sv.PlayState() != transport.Stopped {
		t.Errorf("PlayState() = %v, want Stopped", sv.PlayState())
	}
}
