// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Source is a pull-based PCM stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo, 10=TBE_8_2).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Seekable is implemented by sources that can reposition to a frame.
// A frame holds one sample per channel.
type Seekable interface {
	SeekToFrame(frame int64) error
}

// Sized is implemented by sources that know their length in frames.
// NumFrames returns -1 when the length is unknown.
type Sized interface {
	NumFrames() int64
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "vorbis", "opus").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the number of registered decoders.
func (r *Registry) Formats() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.codecs)
}

// FramesOf returns the length of src in frames, or -1 when src does not
// report one.
func FramesOf(src Source) int64 {
	if s, ok := src.(Sized); ok {
		return s.NumFrames()
	}
	return -1
}
