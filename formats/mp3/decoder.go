// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/spat360/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	outChannels   = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // samples, not bytes

// NumFrames is -1 when the input could not be scanned ahead of time.
func (s *source) NumFrames() int64 {
	n := s.dec.Length()
	if n < 0 {
		return -1
	}
	return n / bytesPerFrame
}

func (s *source) SeekToFrame(frame int64) error {
	if s.dec.Length() < 0 {
		return audio.ErrNotSeekable
	}
	if frame < 0 || frame > s.NumFrames() {
		return fmt.Errorf("frame %d of %d: %w", frame, s.NumFrames(), audio.ErrNotSeekable)
	}
	if _, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%outChannels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	// keep frame alignment if the reader hands back a partial frame
	n -= n % bytesPerFrame
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768
	}

	if err == io.EOF {
		err = nil
	}
	return samples, err
}

// Decoder reads MPEG-1/2 layer III streams. Output is always stereo; mono
// files are duplicated to both channels by go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
