// SPDX-License-Identifier: EPL-2.0

package iostream

import (
	"fmt"
	"io"
	"os"
)

// File is a Stream over an operating system file.
type File struct {
	f    *os.File
	pos  int64
	size int64
	eos  bool
	pb   pushback
}

// OpenFile opens path for reading.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &File{f: f, size: st.Size()}, nil
}

// CreateFile creates or truncates path for writing and reading.
func CreateFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &File{f: f}, nil
}

func (f *File) Read(p []byte) (int, error) {
	if f.f == nil {
		return 0, ErrNotReady
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := f.pb.drain(p)
	if n == len(p) {
		return n, nil
	}
	c, err := f.f.Read(p[n:])
	f.pos += int64(c)
	n += c
	if err == io.EOF {
		f.eos = true
		if n > 0 {
			return n, nil
		}
	}
	return n, err
}

func (f *File) Write(p []byte) (int, error) {
	if f.f == nil {
		return 0, ErrNotReady
	}
	if f.pb.len() > 0 {
		if err := f.SetPosition(f.Position()); err != nil {
			return 0, err
		}
	}
	n, err := f.f.Write(p)
	f.pos += int64(n)
	f.size = max(f.size, f.pos)
	return n, err
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.f == nil {
		return 0, ErrNotReady
	}
	abs, err := resolve(offset, whence, f.Position(), f.size)
	if err != nil {
		return 0, err
	}
	if _, err := f.f.Seek(abs, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek: %w", err)
	}
	f.pb.reset()
	f.pos = abs
	f.eos = false
	return abs, nil
}

func (f *File) Position() int64 { return f.pos - f.pb.len() }

func (f *File) SetPosition(pos int64) error {
	_, err := f.Seek(pos, io.SeekStart)
	return err
}

func (f *File) PushBackByte(c byte) int {
	if f.f == nil || f.Position() == 0 {
		return EOF
	}
	f.pb.push(c)
	f.eos = false
	return int(c)
}

func (f *File) Size() int64       { return f.size }
func (f *File) CanSeek() bool     { return f.f != nil }
func (f *File) Ready() bool       { return f.f != nil }
func (f *File) EndOfStream() bool { return f.eos }

// Close closes the file. The stream is not ready afterwards.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}
