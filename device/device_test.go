// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"testing"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
)

func TestOpen_NoDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  config.AudioDeviceType
		want error
	}{
		{"disabled", config.DeviceDisabled, audio.ErrNoAudioDevice},
		{"unknown", config.AudioDeviceType(42), audio.ErrCannotCreateAudioDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default().Audio
			cfg.DeviceType = tt.typ
			d, err := Open(cfg, func([]float32) {}, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
			if d != nil {
				t.Errorf("Open() returned a device")
			}
		})
	}
}

func TestClampBuffers(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 4: 4, 12: 12, 40: 12} {
		if got := clampBuffers(in); got != want {
			t.Errorf("clampBuffers(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSpeakerStream_ConvertsInterleaved(t *testing.T) {
	t.Parallel()

	var asked int
	d := &speakerDevice{
		fill: func(out []float32) {
			asked = len(out)
			for i := range len(out) / 2 {
				out[2*i] = float32(i)
				out[2*i+1] = -float32(i)
			}
		},
		buf: make([]float32, 4),
	}

	// larger than the preallocated buffer
	samples := make([][2]float64, 5)
	n, ok := d.Stream(samples)
	if n != 5 || !ok {
		t.Fatalf("Stream() = %d, %v; want 5, true", n, ok)
	}
	if asked != 10 {
		t.Errorf("fill asked for %d samples, want 10", asked)
	}
	for i, s := range samples {
		if s[0] != float64(i) || s[1] != -float64(i) {
			t.Errorf("samples[%d] = %v", i, s)
		}
	}
	if d.Err() != nil {
		t.Errorf("Err() = %v", d.Err())
	}
}

func TestSpeakerStream_ClearsStaleData(t *testing.T) {
	t.Parallel()

	d := &speakerDevice{buf: []float32{9, 9, 9, 9}, fill: func([]float32) {}}
	samples := make([][2]float64, 2)
	d.Stream(samples)
	for i, s := range samples {
		if s != [2]float64{} {
			t.Errorf("samples[%d] = %v, want silence", i, s)
		}
	}
}

func TestAudioDeviceName_OutOfRange(t *testing.T) {
	if got := AudioDeviceName(-1); got != "" {
		t.Errorf("AudioDeviceName(-1) = %q, want empty", got)
	}
	if got := AudioDeviceName(NumAudioDevices()); got != "" {
		t.Errorf("AudioDeviceName(n) = %q, want empty", got)
	}
}
