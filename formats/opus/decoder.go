// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hraban/opus"
	"github.com/ik5/spat360/audio"
)

// oggStream is an interface for opus.Stream to allow testing
type oggStream interface {
	ReadFloat32(pcm []float32) (int, error)
	Close() error
}

// source decodes an Ogg Opus file through libopusfile. Pre-skip is trimmed
// by libopusfile, so frame 0 is the first audible sample.
type source struct {
	rs        io.ReadSeeker
	start     int64
	stream    oggStream
	newStream func(io.Reader) (oggStream, error)

	header    Header
	numFrames int64
	bufSize   int
}

func (s *source) SampleRate() int  { return SampleRate }
func (s *source) Channels() int    { return s.header.Channels }
func (s *source) BufSize() int     { return s.bufSize }
func (s *source) NumFrames() int64 { return s.numFrames }
func (s *source) Header() Header   { return s.header }

func (s *source) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.header.Channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}
	if s.stream == nil {
		return 0, io.EOF
	}

	n, err := s.stream.ReadFloat32(dst)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if err == io.EOF {
		err = nil
	}
	return n * s.header.Channels, err
}

// SeekToFrame restarts the stream and decodes forward. The bindings do not
// expose op_pcm_seek.
func (s *source) SeekToFrame(frame int64) error {
	if frame < 0 || (s.numFrames >= 0 && frame > s.numFrames) {
		return fmt.Errorf("frame %d of %d: %w", frame, s.numFrames, audio.ErrNotSeekable)
	}

	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
	if _, err := s.rs.Seek(s.start, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	stream, err := s.newStream(s.rs)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	s.stream = stream

	scratch := make([]float32, 2880*s.header.Channels)
	for remaining := frame; remaining > 0; {
		want := int(min(remaining, 2880)) * s.header.Channels
		n, err := s.stream.ReadFloat32(scratch[:want])
		remaining -= int64(n)
		if err != nil || n == 0 {
			break
		}
	}
	return nil
}

func openStream(r io.Reader) (oggStream, error) {
	return opus.NewStream(r)
}

// Decoder reads Ogg Opus files. Output is always 48kHz; the engine
// resamples when it runs at another rate.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading opus data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	packet, err := firstPacket(rs)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotOpusFile, err)
	}

	numFrames := int64(-1)
	if granule, err := lastGranule(rs); err == nil {
		numFrames = max(0, granule-int64(header.PreSkip))
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	stream, err := openStream(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotOpusFile, err)
	}

	return &source{
		rs:        rs,
		start:     start,
		stream:    stream,
		newStream: openStream,
		header:    header,
		numFrames: numFrames,
		bufSize:   5760 * header.Channels,
	}, nil
}
