// SPDX-License-Identifier: EPL-2.0

package iostream

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestMemory_ReadSeek(t *testing.T) {
	t.Parallel()

	m := NewMemory([]byte("hello world"))

	buf := make([]byte, 5)
	if n, err := m.Read(buf); n != 5 || err != nil || string(buf) != "hello" {
		t.Fatalf("Read() = %d, %v, %q", n, err, buf)
	}
	if m.Position() != 5 {
		t.Errorf("Position() = %d, want 5", m.Position())
	}

	if pos, err := m.Seek(-5, io.SeekEnd); pos != 6 || err != nil {
		t.Fatalf("Seek(-5, end) = %d, %v", pos, err)
	}
	rest, _ := io.ReadAll(m)
	if string(rest) != "world" {
		t.Errorf("rest = %q", rest)
	}
	if !m.EndOfStream() {
		t.Error("EndOfStream() = false after reading everything")
	}

	if err := m.SetPosition(0); err != nil || m.EndOfStream() {
		t.Errorf("SetPosition(0) = %v, EndOfStream = %v", err, m.EndOfStream())
	}
	if _, err := m.Seek(-1, io.SeekStart); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("Seek(-1) error = %v, want ErrInvalidOffset", err)
	}
}

func TestMemory_Write(t *testing.T) {
	t.Parallel()

	m := NewMemory(nil)
	_, _ = m.Write([]byte("abc"))
	_ = m.SetPosition(1)
	_, _ = m.Write([]byte("XYZ"))

	if got := string(m.Bytes()); got != "aXYZ" {
		t.Errorf("Bytes() = %q, want aXYZ", got)
	}
	if m.Size() != 4 {
		t.Errorf("Size() = %d", m.Size())
	}
}

func TestPushBackByte(t *testing.T) {
	t.Parallel()

	m := NewMemory([]byte("abc"))
	if got := m.PushBackByte('z'); got != EOF {
		t.Errorf("PushBackByte at start = %d, want EOF", got)
	}

	one := make([]byte, 1)
	_, _ = m.Read(one)
	if got := m.PushBackByte('q'); got != 'q' {
		t.Fatalf("PushBackByte = %d, want 'q'", got)
	}
	if m.Position() != 0 {
		t.Errorf("Position() after pushback = %d, want 0", m.Position())
	}

	all, _ := io.ReadAll(m)
	if string(all) != "qbc" {
		t.Errorf("read after pushback = %q, want qbc", all)
	}
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asset.bin")

	w, err := CreateFile(path)
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	if f.Size() != 10 || !f.CanSeek() || !f.Ready() {
		t.Errorf("Size/CanSeek/Ready = %d/%v/%v", f.Size(), f.CanSeek(), f.Ready())
	}
	if err := f.SetPosition(7); err != nil {
		t.Fatal(err)
	}
	rest, _ := io.ReadAll(f)
	if string(rest) != "789" || !f.EndOfStream() {
		t.Errorf("rest = %q, eos = %v", rest, f.EndOfStream())
	}

	_ = f.Close()
	if f.Ready() {
		t.Error("Ready() after Close")
	}
	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, ErrNotReady) {
		t.Errorf("Read after Close error = %v", err)
	}
}

func TestOpenFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenFile() error = %v, want ErrNotExist", err)
	}
}

func TestSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ad   AssetDescriptor
		want string
	}{
		{"range", AssetDescriptor{Offset: 2, Length: 3}, "234"},
		{"to end", AssetDescriptor{Offset: 7}, "789"},
		{"length past end", AssetDescriptor{Offset: 8, Length: 100}, "89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := NewSection(NewMemory([]byte("0123456789")), tt.ad)
			if err != nil {
				t.Fatalf("NewSection() error = %v", err)
			}
			got, _ := io.ReadAll(s)
			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
			if s.Size() != int64(len(tt.want)) {
				t.Errorf("Size() = %d", s.Size())
			}

			// seeking stays inside the window
			if _, err := s.Seek(1, io.SeekStart); err != nil {
				t.Fatal(err)
			}
			b := make([]byte, 1)
			_, _ = s.Read(b)
			if b[0] != tt.want[1] {
				t.Errorf("byte at 1 = %q, want %q", b[0], tt.want[1])
			}
		})
	}

	if _, err := NewSection(NewMemory(make([]byte, 4)), AssetDescriptor{Offset: 5}); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("offset past end error = %v", err)
	}
}

func TestStreamsAreReadSeekers(t *testing.T) {
	t.Parallel()

	var rs io.ReadSeeker = NewMemory([]byte("abcdef"))
	if _, err := rs.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	_, _ = io.Copy(&out, rs)
	if out.String() != "def" {
		t.Errorf("copied %q", out.String())
	}
}
