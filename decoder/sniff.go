// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"bytes"
	"io"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/formats/aiff"
	"github.com/ik5/spat360/formats/mp3"
	"github.com/ik5/spat360/formats/opus"
	"github.com/ik5/spat360/formats/vorbis"
	"github.com/ik5/spat360/formats/wav"
	"github.com/ik5/spat360/iostream"
)

// Format names, also the keys of Formats.
const (
	FormatWAV    = "wav"
	FormatAIFF   = "aiff"
	FormatMP3    = "mp3"
	FormatVorbis = "vorbis"
	FormatOpus   = "opus"
)

// sniffSize covers an Ogg page header with a full segment table plus the
// start of the first packet.
const sniffSize = 27 + 255 + 8

// Formats holds every file decoder this package can pick from.
var Formats = func() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(FormatWAV, wav.Decoder{})
	r.Register(FormatAIFF, aiff.Decoder{})
	r.Register(FormatMP3, mp3.Decoder{})
	r.Register(FormatVorbis, vorbis.Decoder{})
	r.Register(FormatOpus, opus.Decoder{})
	return r
}()

// Sniff names the container format from the first bytes of a file, or
// returns "" if it is not recognised.
func Sniff(b []byte) string {
	switch {
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WAVE":
		return FormatWAV
	case len(b) >= 12 && string(b[:4]) == "FORM" && (string(b[8:12]) == "AIFF" || string(b[8:12]) == "AIFC"):
		return FormatAIFF
	case len(b) >= 27 && string(b[:4]) == "OggS":
		payload := b[min(len(b), 27+int(b[26])):]
		switch {
		case bytes.HasPrefix(payload, []byte("OpusHead")):
			return FormatOpus
		case bytes.HasPrefix(payload, []byte("\x01vorbis")):
			return FormatVorbis
		}
	case len(b) >= 3 && string(b[:3]) == "ID3":
		return FormatMP3
	case len(b) >= 2 && b[0] == 0xFF && b[1]&0xE6 == 0xE2:
		// frame sync with layer III
		return FormatMP3
	}
	return ""
}

// peek reads the head of s and puts it back, by seeking when s can seek and
// through PushBackByte otherwise.
func peek(s iostream.Stream, n int) ([]byte, error) {
	start := s.Position()

	buf := make([]byte, n)
	got, err := io.ReadFull(s, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:got]

	if s.CanSeek() {
		if err := s.SetPosition(start); err != nil {
			return nil, err
		}
		return buf, nil
	}

	for i := len(buf) - 1; i >= 0; i-- {
		if s.PushBackByte(buf[i]) == iostream.EOF {
			return nil, iostream.ErrNotSeekable
		}
	}
	return buf, nil
}
