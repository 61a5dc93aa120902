// SPDX-License-Identifier: EPL-2.0

// Package iostream provides the byte streams assets are decoded from.
//
// A Stream is an io.ReadWriteSeeker with a few extras: single byte
// pushback, a known size, and end-of-stream and readiness flags. File,
// Memory and Section cover local files, in-memory assets and byte ranges
// inside a larger container.
package iostream

import (
	"errors"
	"io"
)

// EOF is returned by PushBackByte when the byte could not be pushed back.
const EOF = -1

var (
	ErrNotSeekable   = errors.New("stream is not seekable")
	ErrInvalidOffset = errors.New("invalid offset")
	ErrNotReady      = errors.New("stream is not ready")
)

// Stream is a byte source or sink.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker

	// Position is the current offset in bytes.
	Position() int64
	// SetPosition moves to an absolute offset.
	SetPosition(pos int64) error
	// PushBackByte makes c the next byte read, like ungetc. It returns c
	// on success and EOF otherwise.
	PushBackByte(c byte) int
	// Size is the total length in bytes, or -1 if unknown.
	Size() int64
	CanSeek() bool
	Ready() bool
	EndOfStream() bool
}

// AssetDescriptor is a byte range inside a larger file. A zero Length
// extends to the end of the file.
type AssetDescriptor struct {
	Offset int64
	Length int64
}

// pushback holds bytes pushed back onto a stream. They are read in reverse
// push order.
type pushback struct {
	pending []byte
}

func (p *pushback) push(c byte) {
	p.pending = append(p.pending, c)
}

// drain copies pushed back bytes into dst and returns how many were used.
func (p *pushback) drain(dst []byte) int {
	n := 0
	for n < len(dst) && len(p.pending) > 0 {
		last := len(p.pending) - 1
		dst[n] = p.pending[last]
		p.pending = p.pending[:last]
		n++
	}
	return n
}

func (p *pushback) len() int64 { return int64(len(p.pending)) }

func (p *pushback) reset() { p.pending = p.pending[:0] }

// resolve turns a Seek request into an absolute offset.
func resolve(offset int64, whence int, cur, size int64) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = cur + offset
	case io.SeekEnd:
		if size < 0 {
			return 0, ErrNotSeekable
		}
		abs = size + offset
	default:
		return 0, ErrInvalidOffset
	}
	if abs < 0 {
		return 0, ErrInvalidOffset
	}
	return abs, nil
}
