// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/spat360/audio"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// opener positions a fresh reader at the first sample frame.
type opener func() (aiffReader, error)

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec        aiffReader
	open       opener
	sampleRate int
	channels   int
	bitDepth   int
	numFrames  int64
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int  { return s.sampleRate }
func (s *source) Channels() int    { return s.channels }
func (s *source) BitDepth() int    { return s.bitDepth }
func (s *source) Close() error     { return nil }
func (s *source) NumFrames() int64 { return s.numFrames }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) scale() float32 {
	return float32(int64(1) << (s.bitDepth - 1))
}

func (s *source) fill(n int) (int, error) {
	if s.intBuf == nil || cap(s.intBuf.Data) < n {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, n),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:n]
	}
	return s.dec.PCMBuffer(s.intBuf)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.fill(len(dst))
	n -= n % s.channels
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	scale := s.scale()
	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) / scale
	}

	if err == io.EOF {
		err = nil
	}
	return n, err
}

// SeekToFrame reopens the file and decodes forward, go-audio/aiff has no
// random access into the sound data chunk.
func (s *source) SeekToFrame(frame int64) error {
	if frame < 0 || (s.numFrames >= 0 && frame > s.numFrames) {
		return fmt.Errorf("frame %d of %d: %w", frame, s.numFrames, audio.ErrNotSeekable)
	}

	dec, err := s.open()
	if err != nil {
		return err
	}
	s.dec = dec
	s.intBuf = nil

	remaining := frame * int64(s.channels)
	for remaining > 0 {
		chunk := int(min(remaining, int64(4096*s.channels)))
		n, err := s.fill(chunk)
		remaining -= int64(n)
		if err != nil || n == 0 {
			break
		}
	}
	return nil
}

// Decoder reads AIFF files with 8, 16, 24 or 32-bit integer samples.
// AIFF-C compressed variants are not supported.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%d bits: %w", dec.BitDepth, ErrUnsupportedBitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &source{
		dec: dec,
		open: func() (aiffReader, error) {
			if _, err := rs.Seek(start, io.SeekStart); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			d := aiff.NewDecoder(rs)
			d.ReadInfo()
			return d, nil
		},
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   int(dec.BitDepth),
		numFrames:  int64(dec.NumSampleFrames),
	}, nil
}
