// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"github.com/hraban/opus"
)

// MaxPacketFrames is the longest packet Opus allows, 120ms at 48kHz.
const MaxPacketFrames = 5760

// PacketDecoder decodes raw Opus packets, as delivered by a network
// transport, after the stream's OpusHead has been seen.
type PacketDecoder struct {
	dec     *opus.Decoder
	header  Header
	skipped int
}

// NewPacketDecoder builds a decoder for the stream described by h. Only
// mapping family 0 (mono or stereo) is supported by the single-stream
// libopus decoder.
func NewPacketDecoder(h Header) (*PacketDecoder, error) {
	if h.Channels < 1 || h.Channels > 2 {
		return nil, fmt.Errorf("%d channels: %w", h.Channels, ErrUnsupportedChannels)
	}

	dec, err := opus.NewDecoder(SampleRate, h.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return &PacketDecoder{dec: dec, header: h}, nil
}

func (d *PacketDecoder) Header() Header { return d.header }
func (d *PacketDecoder) Channels() int  { return d.header.Channels }

// Decode writes the packet's samples to out, interleaved, and returns the
// number of frames. The first PreSkip frames of the stream are dropped.
// out must hold at least MaxPacketFrames frames.
func (d *PacketDecoder) Decode(packet []byte, out []float32) (int, error) {
	n, err := d.dec.DecodeFloat32(packet, out)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	if skip := min(d.header.PreSkip-d.skipped, n); skip > 0 {
		ch := d.header.Channels
		copy(out, out[skip*ch:n*ch])
		d.skipped += skip
		n -= skip
	}
	return n, nil
}

// Reset starts a new stream: pre-skip applies again.
func (d *PacketDecoder) Reset() error {
	dec, err := opus.NewDecoder(SampleRate, d.header.Channels)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	d.dec = dec
	d.skipped = 0
	return nil
}
