// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/spat360/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

// ErrCorrupt is returned when oggvorbis gives up on a malformed stream.
var ErrCorrupt = errors.New("vorbis: corrupt stream")

// recoverCorrupt turns a panic inside oggvorbis into *err. Some malformed
// pages make it index past the end of a page.
func recoverCorrupt(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrCorrupt, r)
	}
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	bufSize    int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return s.bufSize }

// NumFrames is -1 when the input was not seekable, since oggvorbis finds
// the length from the granule position of the last page.
func (s *source) NumFrames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n
	}
	return -1
}

func (s *source) SeekToFrame(frame int64) (err error) {
	defer recoverCorrupt(&err)

	if s.dec.Length() <= 0 {
		return audio.ErrNotSeekable
	}
	if frame < 0 || frame > s.dec.Length() {
		return fmt.Errorf("frame %d of %d: %w", frame, s.dec.Length(), audio.ErrNotSeekable)
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (n int, err error) {
	defer recoverCorrupt(&err)

	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	// oggvorbis returns interleaved values, always whole frames
	n, err = s.dec.Read(dst)
	if n == 0 {
		if err == nil {
			return 0, nil
		}
		return 0, err
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Decoder reads Ogg Vorbis streams of any channel count. Seeking and
// NumFrames need an io.ReadSeeker input.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (src audio.Source, err error) {
	defer recoverCorrupt(&err)

	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		bufSize:    4096,
	}, nil
}
