// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/formats/opus"
	"github.com/ik5/spat360/iostream"
)

// Info selects a codec property for FormatDecoder.Info.
type Info int

const (
	// PreSkip is the codec's decoding latency in frames. Decode already
	// drops it; it is reported for callers sizing their own buffers.
	PreSkip Info = iota
)

// bitDepther is implemented by sources that know their stored sample size.
type bitDepther interface {
	BitDepth() int
}

// FormatDecoder decodes one asset, or a stream of raw packets, into
// interleaved float32 PCM. It is not safe for concurrent use.
type FormatDecoder struct {
	name       string
	channels   int
	sampleRate int
	outRate    int
	bits       int
	maxBuf     int
	preSkip    int

	src    audio.Source // nil for packet decoders
	packet *opus.PacketDecoder
	owned  io.Closer

	frames   int64 // at the output rate, -1 when unknown
	position int64
	eos      bool
	err      error
}

// NewFromHeader builds a packet decoder from an OpusHead packet.
func NewFromHeader(header []byte) (*FormatDecoder, error) {
	h, err := opus.ParseHeader(header)
	if err != nil {
		return nil, audio.Wrap(audio.ErrInvalidHeader, err)
	}

	pd, err := opus.NewPacketDecoder(h)
	if errors.Is(err, opus.ErrUnsupportedChannels) {
		return nil, audio.Wrap(audio.ErrInvalidChannelCount, err)
	}
	if err != nil {
		return nil, audio.Wrap(audio.ErrCannotInitDecoder, err)
	}

	return &FormatDecoder{
		name:       FormatOpus,
		channels:   h.Channels,
		sampleRate: opus.SampleRate,
		outRate:    opus.SampleRate,
		bits:       16,
		maxBuf:     opus.MaxPacketFrames,
		preSkip:    h.PreSkip,
		packet:     pd,
		frames:     -1,
	}, nil
}

// NewFromFile opens path and decodes it. maxBufferSizePerChannel caps the
// frames returned by one Decode call. outputSampleRate 0 keeps the asset's
// own rate; any other rate resamples.
func NewFromFile(path string, maxBufferSizePerChannel, outputSampleRate int) (*FormatDecoder, error) {
	if strings.EqualFold(filepath.Ext(path), ".tbe") {
		return nil, fmt.Errorf("%s: %w", path, audio.ErrInvalidHeader)
	}

	f, err := iostream.OpenFile(path)
	if err != nil {
		return nil, audio.Wrap(audio.ErrOpeningFile, err)
	}

	d, err := NewFromStream(f, maxBufferSizePerChannel, outputSampleRate)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	d.owned = f
	return d, nil
}

// NewFromStream decodes from s, which stays owned by the caller.
func NewFromStream(s iostream.Stream, maxBufferSizePerChannel, outputSampleRate int) (*FormatDecoder, error) {
	if maxBufferSizePerChannel <= 0 {
		return nil, audio.ErrInvalidBufferSize
	}
	if outputSampleRate < 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	if !s.Ready() {
		return nil, audio.Wrap(audio.ErrOpeningFile, iostream.ErrNotReady)
	}

	head, err := peek(s, sniffSize)
	if err != nil {
		return nil, audio.Wrap(audio.ErrOpeningFile, err)
	}
	name := Sniff(head)
	if name == "" {
		return nil, audio.ErrInvalidHeader
	}

	codec, _ := Formats.Get(name)
	src, err := codec.Decode(s)
	if err != nil {
		return nil, audio.Wrap(audio.ErrInvalidHeader, err)
	}
	if src.Channels() < 1 || src.Channels() > audio.MaxChannels {
		_ = src.Close()
		return nil, fmt.Errorf("%d channels: %w", src.Channels(), audio.ErrInvalidChannelCount)
	}

	d := &FormatDecoder{
		name:       name,
		channels:   src.Channels(),
		sampleRate: src.SampleRate(),
		outRate:    src.SampleRate(),
		bits:       16,
		maxBuf:     maxBufferSizePerChannel,
	}
	if b, ok := src.(bitDepther); ok {
		d.bits = b.BitDepth()
	}
	if hs, ok := src.(interface{ Header() opus.Header }); ok {
		d.preSkip = hs.Header().PreSkip
	}

	if outputSampleRate != 0 && outputSampleRate != src.SampleRate() {
		d.outRate = outputSampleRate
		src = audio.NewResampler(src, outputSampleRate)
	}
	d.src = src
	d.frames = audio.FramesOf(src)

	return d, nil
}

func (d *FormatDecoder) Name() string                 { return d.name }
func (d *FormatDecoder) NumChannels() int             { return d.channels }
func (d *FormatDecoder) SampleRate() int              { return d.sampleRate }
func (d *FormatDecoder) OutputSampleRate() int        { return d.outRate }
func (d *FormatDecoder) NumBits() int                 { return d.bits }
func (d *FormatDecoder) MaxBufferSizePerChannel() int { return d.maxBuf }
func (d *FormatDecoder) EndOfStream() bool            { return d.eos }
func (d *FormatDecoder) DecoderError() bool           { return d.err != nil }

// Err is the failure behind DecoderError.
func (d *FormatDecoder) Err() error { return d.err }

// Source exposes the decoded stream at the output rate. It is nil for
// packet decoders.
func (d *FormatDecoder) Source() audio.Source { return d.src }

// NumSamplesPerChannel is the length in frames at the output rate, 0 when
// the length is unknown.
func (d *FormatDecoder) NumSamplesPerChannel() int64 { return max(d.frames, 0) }

func (d *FormatDecoder) NumTotalSamples() int64 {
	return d.NumSamplesPerChannel() * int64(d.channels)
}

func (d *FormatDecoder) MsPerChannel() float64 {
	return float64(d.NumSamplesPerChannel()) * 1000 / float64(d.outRate)
}

// SamplePosition is the next frame Decode will return. Packet decoders
// carry no timing and always report 0.
func (d *FormatDecoder) SamplePosition() int64 { return d.position }

func (d *FormatDecoder) SeekToSample(frame int64) error {
	if d.src == nil {
		return audio.ErrNotSupported
	}
	s, ok := d.src.(audio.Seekable)
	if !ok {
		return audio.ErrNotSupported
	}
	if frame < 0 || (d.frames >= 0 && frame > d.frames) {
		return audio.ErrFail
	}
	if err := s.SeekToFrame(frame); err != nil {
		return audio.Wrap(audio.ErrFail, err)
	}
	d.position = frame
	d.eos = false
	d.err = nil
	return nil
}

// DecodePacket decodes one raw packet into out and returns the number of
// samples written across all channels.
func (d *FormatDecoder) DecodePacket(data []byte, out []float32) int {
	if d.packet == nil {
		d.err = audio.ErrNotSupported
		return 0
	}
	if len(out) < opus.MaxPacketFrames*d.channels {
		d.err = audio.ErrInvalidBufferSize
		return 0
	}

	n, err := d.packet.Decode(data, out)
	if err != nil {
		d.err = err
		return 0
	}
	return n * d.channels
}

// Decode fills out with up to MaxBufferSizePerChannel frames and returns
// the number of samples written across all channels. A short count means
// the end of the stream or an error, told apart by EndOfStream and
// DecoderError.
func (d *FormatDecoder) Decode(out []float32) int {
	if d.src == nil {
		d.err = audio.ErrNotSupported
		return 0
	}

	want := min(len(out), d.maxBuf*d.channels)
	want -= want % d.channels

	total := 0
	for total < want && !d.eos {
		n, err := d.src.ReadSamples(out[total:want])
		total += n
		if err == io.EOF {
			d.eos = true
			break
		}
		if err != nil {
			d.err = err
			break
		}
		if n == 0 {
			break
		}
	}

	d.position += int64(total / d.channels)
	return total
}

// DownmixToMono folds every later Decode to one channel by averaging.
// NumChannels reports 1 afterwards; seeking and length are unchanged.
func (d *FormatDecoder) DownmixToMono() {
	if d.src == nil || d.channels == 1 {
		return
	}
	d.src = audio.NewMonoMixer(d.src)
	d.channels = 1
}

// Flush resets decoding state. resetToZero also rewinds to the first frame,
// for callers that rewound the underlying stream themselves.
func (d *FormatDecoder) Flush(resetToZero bool) {
	d.eos = false
	d.err = nil

	if d.packet != nil {
		if err := d.packet.Reset(); err != nil {
			d.err = err
		}
		return
	}
	if resetToZero {
		if err := d.SeekToSample(0); err != nil {
			d.err = err
		}
	}
}

func (d *FormatDecoder) Info(i Info) int {
	switch i {
	case PreSkip:
		return d.preSkip
	default:
		return 0
	}
}

// Close releases the decoder and, for NewFromFile, the file.
func (d *FormatDecoder) Close() error {
	var err error
	if d.src != nil {
		err = d.src.Close()
		d.src = nil
	}
	if d.owned != nil {
		err = errors.Join(err, d.owned.Close())
		d.owned = nil
	}
	return err
}
