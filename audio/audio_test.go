// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/ik5/spat360/internal/audiotest"
)

type mockDecoder struct {
	src Source
}

func (d *mockDecoder) Decode(io.Reader) (Source, error) {
	return d.src, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	dec := &mockDecoder{src: audiotest.NewSilentSource(48000, 2, 10)}
	registry.Register("wav", dec)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Get(wav) ok = false, want true")
	}
	if got != dec {
		t.Error("Get(wav) returned a different decoder")
	}

	if _, ok := registry.Get("flac"); ok {
		t.Error("Get(flac) ok = true, want false")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("fmt%d", i)
			registry.Register(name, &mockDecoder{})
			if _, ok := registry.Get(name); !ok {
				t.Errorf("Get(%s) missing after Register", name)
			}
		}()
	}
	wg.Wait()

	if got := registry.Formats(); got != 16 {
		t.Errorf("Formats() = %d, want 16", got)
	}
}

type unsizedSource struct{ *audiotest.MockSource }

func (unsizedSource) NumFrames() {}

func TestFramesOf(t *testing.T) {
	t.Parallel()

	if got := FramesOf(audiotest.NewSilentSource(8000, 1, 1234)); got != 1234 {
		t.Errorf("FramesOf(sized) = %d, want 1234", got)
	}

	// the shadowing method has the wrong signature, so Sized is not satisfied
	if got := FramesOf(unsizedSource{audiotest.NewSilentSource(8000, 1, 10)}); got != -1 {
		t.Errorf("FramesOf(unsized) = %d, want -1", got)
	}
}
