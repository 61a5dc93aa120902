// SPDX-License-Identifier: EPL-2.0

package iostream

import (
	"fmt"
	"io"
)

// Section is a read-only window onto a byte range of another seekable
// Stream, the way an asset packed in a larger container is read.
type Section struct {
	s      Stream
	offset int64
	length int64
	pos    int64
	eos    bool
	pb     pushback
}

// NewSection returns a view of ad within s.
func NewSection(s Stream, ad AssetDescriptor) (*Section, error) {
	if !s.CanSeek() {
		return nil, ErrNotSeekable
	}
	if ad.Offset < 0 || ad.Length < 0 {
		return nil, ErrInvalidOffset
	}

	size := s.Size()
	if size < 0 {
		return nil, ErrNotSeekable
	}
	if ad.Offset > size {
		return nil, fmt.Errorf("offset %d past end %d: %w", ad.Offset, size, ErrInvalidOffset)
	}
	length := ad.Length
	if length == 0 || ad.Offset+length > size {
		length = size - ad.Offset
	}

	if err := s.SetPosition(ad.Offset); err != nil {
		return nil, err
	}
	return &Section{s: s, offset: ad.Offset, length: length}, nil
}

func (v *Section) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := v.pb.drain(p)
	if left := v.length - v.pos; left > 0 && n < len(p) {
		want := min(int64(len(p)-n), left)
		c, err := v.s.Read(p[n : n+int(want)])
		v.pos += int64(c)
		n += c
		if err != nil && err != io.EOF {
			return n, err
		}
	}
	if n == 0 {
		v.eos = true
		return 0, io.EOF
	}
	return n, nil
}

func (v *Section) Write([]byte) (int, error) { return 0, ErrNotSeekable }

func (v *Section) Seek(offset int64, whence int) (int64, error) {
	abs, err := resolve(offset, whence, v.Position(), v.length)
	if err != nil {
		return 0, err
	}
	abs = min(abs, v.length)
	if err := v.s.SetPosition(v.offset + abs); err != nil {
		return 0, err
	}
	v.pb.reset()
	v.pos = abs
	v.eos = false
	return abs, nil
}

func (v *Section) Position() int64 { return v.pos - v.pb.len() }

func (v *Section) SetPosition(pos int64) error {
	_, err := v.Seek(pos, io.SeekStart)
	return err
}

func (v *Section) PushBackByte(c byte) int {
	if v.Position() == 0 {
		return EOF
	}
	v.pb.push(c)
	v.eos = false
	return int(c)
}

func (v *Section) Size() int64       { return v.length }
func (v *Section) CanSeek() bool     { return true }
func (v *Section) Ready() bool       { return v.s.Ready() }
func (v *Section) EndOfStream() bool { return v.eos }

// Close closes the underlying stream if it is an io.Closer.
func (v *Section) Close() error {
	if c, ok := v.s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
