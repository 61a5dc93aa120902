// SPDX-License-Identifier: EPL-2.0

package iostream

import "io"

// Memory is a growable in-memory Stream.
type Memory struct {
	data []byte
	pos  int64
	eos  bool
	pb   pushback
}

// NewMemory returns a stream over data. Writes past the end grow it.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// Bytes returns the stream contents.
func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := m.pb.drain(p)
	if m.pos < int64(len(m.data)) {
		c := copy(p[n:], m.data[m.pos:])
		m.pos += int64(c)
		n += c
	}
	if n == 0 {
		m.eos = true
		return 0, io.EOF
	}
	return n, nil
}

func (m *Memory) Write(p []byte) (int, error) {
	m.pb.reset()
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		if end > int64(cap(m.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.data))))
			copy(grown, m.data)
			m.data = grown
		}
		m.data = m.data[:end]
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	abs, err := resolve(offset, whence, m.Position(), m.Size())
	if err != nil {
		return 0, err
	}
	m.pb.reset()
	m.pos = abs
	m.eos = false
	return abs, nil
}

func (m *Memory) Position() int64 { return m.pos - m.pb.len() }

func (m *Memory) SetPosition(pos int64) error {
	_, err := m.Seek(pos, io.SeekStart)
	return err
}

func (m *Memory) PushBackByte(c byte) int {
	if m.Position() == 0 {
		return EOF
	}
	m.pb.push(c)
	m.eos = false
	return int(c)
}

func (m *Memory) Size() int64       { return int64(len(m.data)) }
func (m *Memory) CanSeek() bool     { return true }
func (m *Memory) Ready() bool       { return true }
func (m *Memory) EndOfStream() bool { return m.eos }
