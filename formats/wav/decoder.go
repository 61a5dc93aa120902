// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/spat360/audio"
)

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

type wavSource struct {
	rs         io.ReadSeeker
	sampleRate int
	channels   int
	bitDepth   int
	float      bool

	dataStart  int64
	dataFrames int64
	frameBytes int
	frame      int64 // next frame to read

	buf []byte
}

func (s *wavSource) SampleRate() int  { return s.sampleRate }
func (s *wavSource) Channels() int    { return s.channels }
func (s *wavSource) BitDepth() int    { return s.bitDepth }
func (s *wavSource) NumFrames() int64 { return s.dataFrames }
func (s *wavSource) BufSize() int     { return len(s.buf) / (s.bitDepth / 8) }
func (s *wavSource) Close() error     { return nil }

func (s *wavSource) SeekToFrame(frame int64) error {
	if frame < 0 || frame > s.dataFrames {
		return fmt.Errorf("frame %d of %d: %w", frame, s.dataFrames, audio.ErrNotSeekable)
	}
	if _, err := s.rs.Seek(s.dataStart+frame*int64(s.frameBytes), io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.frame = frame
	return nil
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	frames := min(int64(len(dst)/s.channels), s.dataFrames-s.frame)
	if frames <= 0 {
		return 0, io.EOF
	}

	size := int(frames) * s.frameBytes
	if len(s.buf) < size {
		s.buf = make([]byte, size)
	}

	n, err := io.ReadFull(s.rs, s.buf[:size])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// truncated data chunk
		s.dataFrames = s.frame + int64(n/s.frameBytes)
		err = nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	got := n / s.frameBytes
	s.frame += int64(got)
	samples := got * s.channels
	s.convert(dst[:samples], s.buf[:got*s.frameBytes])

	if samples == 0 {
		return 0, io.EOF
	}
	return samples, nil
}

func (s *wavSource) convert(dst []float32, b []byte) {
	switch {
	case s.float:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case s.bitDepth == 8:
		// 8-bit WAV is unsigned
		for i := range dst {
			dst[i] = (float32(b[i]) - 128) / 128
		}
	case s.bitDepth == 16:
		for i := range dst {
			dst[i] = float32(int16(binary.LittleEndian.Uint16(b[2*i:]))) / 32768
		}
	case s.bitDepth == 24:
		for i := range dst {
			p := b[3*i:]
			v := int32(p[0]) | int32(p[1])<<8 | int32(int8(p[2]))<<16
			dst[i] = float32(v) / 8388608
		}
	case s.bitDepth == 32:
		for i := range dst {
			dst[i] = float32(int32(binary.LittleEndian.Uint32(b[4*i:]))) / 2147483648
		}
	}
}

// Decoder reads RIFF/WAVE files with integer PCM of 8, 16, 24 or 32 bits
// or 32-bit float samples. Broadcast WAV chunks ahead of the format chunk
// are skipped.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrNoDataChunk
	}

	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src := &wavSource{
		rs:         rs,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
		dataStart:  dataStart,
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
		if src.bitDepth != 8 && src.bitDepth != 16 && src.bitDepth != 24 && src.bitDepth != 32 {
			return nil, fmt.Errorf("%d-bit PCM: %w", src.bitDepth, ErrUnsupportedEncoding)
		}
	case formatFloat:
		if src.bitDepth != 32 {
			return nil, fmt.Errorf("%d-bit float: %w", src.bitDepth, ErrUnsupportedEncoding)
		}
		src.float = true
	default:
		return nil, fmt.Errorf("format tag %#x: %w", dec.WavAudioFormat, ErrUnsupportedEncoding)
	}
	if src.channels < 1 || src.sampleRate <= 0 {
		return nil, ErrUnsupportedWavLayout
	}
	src.frameBytes = src.channels * src.bitDepth / 8

	// streamed files often carry a placeholder data size
	dataBytes := dec.PCMLen()
	if end, err := rs.Seek(0, io.SeekEnd); err == nil {
		dataBytes = min(dataBytes, end-dataStart)
		if dataBytes <= 0 {
			dataBytes = end - dataStart
		}
	}
	src.dataFrames = dataBytes / int64(src.frameBytes)
	if _, err := rs.Seek(dataStart, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src.buf = make([]byte, 4096*src.frameBytes/src.channels)

	return src, nil
}
