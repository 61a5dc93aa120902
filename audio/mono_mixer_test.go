// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/spat360/internal/audiotest"
)

func TestMonoMixer_Downmix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		want     float32
	}{
		{"mono passthrough", 1, 0.0},
		{"stereo", 2, 0.5},
		{"quad", 4, 1.5},
		{"tbe 8+2", 10, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// channel c carries the value c
			src := audiotest.NewMockSource(8000, tt.channels, 100, func(_ int, c int) float32 {
				return float32(c)
			})
			mixer := NewMonoMixer(src)

			buf := make([]float32, 10)
			n, err := mixer.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 10 {
				t.Fatalf("ReadSamples() n = %d, want 10", n)
			}
			for i := range n {
				if math.Abs(float64(buf[i]-tt.want)) > 1e-6 {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], tt.want)
				}
			}
		})
	}
}

func TestMonoMixer_EOF(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(audiotest.NewConstantSource(8000, 2, 5, 0.25))
	buf := make([]float32, 16)

	n, err := mixer.ReadSamples(buf)
	if n != 5 || err != io.EOF {
		t.Fatalf("ReadSamples() = %d, %v; want 5, io.EOF", n, err)
	}

	n, err = mixer.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("second ReadSamples() = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestMonoMixer_SeekAndLength(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(1000, 2, 1000)
	mixer := NewMonoMixer(src)

	if got := mixer.NumFrames(); got != 1000 {
		t.Errorf("NumFrames() = %d, want 1000", got)
	}

	if err := mixer.SeekToFrame(500); err != nil {
		t.Fatalf("SeekToFrame() error = %v", err)
	}

	buf := make([]float32, 1)
	if _, err := mixer.ReadSamples(buf); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if math.Abs(float64(buf[0]-0.5)) > 1e-6 {
		t.Errorf("first frame after seek = %v, want 0.5", buf[0])
	}
}

func TestMonoMixer_Close(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 2, 10)
	if err := NewMonoMixer(src).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Error("Close() did not close the wrapped source")
	}
}

func BenchmarkMonoMixer_TBE82(b *testing.B) {
	buf := make([]float32, 1024)

	b.ReportAllocs()
	for range b.N {
		mixer := NewMonoMixer(audiotest.NewSilentSource(48000, 10, 1024))
		_, _ = mixer.ReadSamples(buf)
	}
}
