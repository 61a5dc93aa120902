// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// SampleRate is the rate every Opus stream decodes at.
const SampleRate = 48000

const (
	oggCapture    = "OggS"
	oggHeaderSize = 27
	headMagic     = "OpusHead"
	headMinSize   = 19
)

// Header is the identification header carried in the first Ogg page of an
// Opus stream.
type Header struct {
	Version         uint8
	Channels        int
	PreSkip         int
	InputSampleRate int
	OutputGain      int16 // Q7.8 dB
	MappingFamily   uint8
}

// ParseHeader decodes an OpusHead packet.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headMinSize || string(b[:8]) != headMagic {
		return Header{}, ErrInvalidHeader
	}

	h := Header{
		Version:         b[8],
		Channels:        int(b[9]),
		PreSkip:         int(binary.LittleEndian.Uint16(b[10:])),
		InputSampleRate: int(binary.LittleEndian.Uint32(b[12:])),
		OutputGain:      int16(binary.LittleEndian.Uint16(b[16:])),
		MappingFamily:   b[18],
	}
	// only the major version nibble is fixed
	if h.Version>>4 != 0 || h.Channels == 0 {
		return Header{}, fmt.Errorf("version %d, %d channels: %w", h.Version, h.Channels, ErrInvalidHeader)
	}
	return h, nil
}

// firstPacket returns the payload of the first Ogg page, which for an Opus
// stream is the OpusHead packet.
func firstPacket(r io.Reader) ([]byte, error) {
	var hdr [oggHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, ErrNotOpusFile
	}
	if string(hdr[:4]) != oggCapture {
		return nil, ErrNotOpusFile
	}

	segs := make([]byte, hdr[26])
	if _, err := io.ReadFull(r, segs); err != nil {
		return nil, ErrNotOpusFile
	}
	size := 0
	for _, s := range segs {
		size += int(s)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrNotOpusFile
	}
	return payload, nil
}

// lastGranule scans backwards from the end of rs for the final Ogg page and
// returns its granule position. The read position of rs is not restored.
func lastGranule(rs io.ReadSeeker) (int64, error) {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return -1, fmt.Errorf("%w", err)
	}

	const chunk = 64 * 1024
	buf := make([]byte, chunk+oggHeaderSize)

	for pos := end; pos > 0; {
		start := max(0, pos-chunk)
		n := int(min(end-start, int64(len(buf))))
		if _, err := rs.Seek(start, io.SeekStart); err != nil {
			return -1, fmt.Errorf("%w", err)
		}
		if _, err := io.ReadFull(rs, buf[:n]); err != nil {
			return -1, fmt.Errorf("%w", err)
		}

		for i := bytes.LastIndex(buf[:n], []byte(oggCapture)); i >= 0; i = bytes.LastIndex(buf[:i], []byte(oggCapture)) {
			if i+oggHeaderSize > n {
				continue
			}
			granule := int64(binary.LittleEndian.Uint64(buf[i+6:]))
			if granule != -1 {
				return granule, nil
			}
		}
		pos = start
	}

	return -1, ErrNotOpusFile
}
