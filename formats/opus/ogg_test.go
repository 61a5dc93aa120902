// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/hraban/opus"
)

var oggCRC = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// oggPage renders a single-packet Ogg page.
func oggPage(flags byte, granule int64, seq uint32, packet []byte) []byte {
	var segs []byte
	for n := len(packet); ; n -= 255 {
		if n < 255 {
			segs = append(segs, byte(n))
			break
		}
		segs = append(segs, 255)
	}

	b := make([]byte, oggHeaderSize, oggHeaderSize+len(segs)+len(packet))
	copy(b, oggCapture)
	b[5] = flags
	binary.LittleEndian.PutUint64(b[6:], uint64(granule))
	binary.LittleEndian.PutUint32(b[14:], 0x5ba7) // serial
	binary.LittleEndian.PutUint32(b[18:], seq)
	b[26] = byte(len(segs))
	b = append(b, segs...)
	b = append(b, packet...)

	var crc uint32
	for _, c := range b {
		crc = crc<<8 ^ oggCRC[byte(crc>>24)^c]
	}
	binary.LittleEndian.PutUint32(b[22:], crc)
	return b
}

func opusHead(channels, preSkip int) []byte {
	b := make([]byte, headMinSize)
	copy(b, headMagic)
	b[8] = 1
	b[9] = byte(channels)
	binary.LittleEndian.PutUint16(b[10:], uint16(preSkip))
	binary.LittleEndian.PutUint32(b[12:], 44100)
	return b
}

func opusTags() []byte {
	vendor := "spat360"
	b := []byte("OpusTags")
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	return binary.LittleEndian.AppendUint32(b, 0)
}

// encodeOggOpus encodes frames of a sine wave as 20ms packets and wraps
// them in an Ogg Opus file.
func encodeOggOpus(t *testing.T, channels, frames int) []byte {
	t.Helper()

	const packetFrames = 960
	const preSkip = 312

	enc, err := opus.NewEncoder(SampleRate, channels, opus.AppAudio)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	out := new(bytes.Buffer)
	out.Write(oggPage(0x02, 0, 0, opusHead(channels, preSkip)))
	out.Write(oggPage(0, 0, 1, opusTags()))

	pcm := make([]float32, packetFrames*channels)
	data := make([]byte, 4000)
	total := frames + preSkip
	seq := uint32(2)

	for done := 0; done < total; done += packetFrames {
		for i := range packetFrames {
			v := float32(0.5 * math.Sin(2*math.Pi*440*float64(done+i)/SampleRate))
			for c := range channels {
				pcm[i*channels+c] = v
			}
		}
		n, err := enc.EncodeFloat32(pcm, data)
		if err != nil {
			t.Fatalf("EncodeFloat32() error = %v", err)
		}

		granule := int64(min(done+packetFrames, total))
		flags := byte(0)
		if done+packetFrames >= total {
			flags = 0x04
		}
		out.Write(oggPage(flags, granule, seq, data[:n]))
		seq++
	}

	return out.Bytes()
}
