// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/decoder"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/iostream"
	"github.com/ik5/spat360/queue"
	"github.com/ik5/spat360/utils"
)

type markKind uint8

const (
	markSeek markKind = iota
	markLoop
	markEnd
)

// mark tells the consumer what happens at sample pos of the ring: the
// playhead jumps to frame, or the asset ended.
type mark struct {
	pos   uint64
	frame int64
	kind  markKind
	gen   uint64
}

const maxMarks = 64

// filePlayer decodes an asset ahead into a ring that the mix drains. The
// producer is the engine decoder goroutine, or the mix itself when decoding
// in the audio callback; mu serialises producers with Close.
type filePlayer struct {
	e     *Engine
	src   *source
	inCB  bool
	mu    sync.Mutex
	dec   *decoder.FormatDecoder
	owned []io.Closer

	ring    *queue.Ring[float32]
	marks   *queue.Ring[mark]
	limit   int
	scratch []float32

	open     atomic.Bool
	channels int
	frames   int64
	seekable bool
	looping  atomic.Bool

	seekFrame atomic.Int64
	seekGen   atomic.Uint64
	flushTo   atomic.Uint64

	// producer, under mu
	doneGen  uint64
	eof      bool
	initSent bool

	// consumer, mix goroutine
	markBuf    [1]mark
	appliedGen uint64
	basePos    uint64
	baseFrame  int64
	elapsed    atomic.Int64
	pitch      atomic.Uint32
	frac       float64
	hist       [2]float32
	rewound    bool
}

func newFilePlayer(e *Engine, src *source, maxChannels, capFrames int) *filePlayer {
	p := &filePlayer{
		e:       e,
		src:     src,
		ring:    queue.New[float32](capFrames * maxChannels),
		marks:   queue.New[mark](maxMarks),
		scratch: make([]float32, e.frames*audio.MaxChannels),
	}
	p.pitch.Store(math.Float32bits(1))
	return p
}

// openStreams replaces whatever is open with the asset in s. probe, when
// set and distinct from s, is read first to learn the asset length. The
// closers are closed with the player. accept checks the channel count and
// returns the count the ring carries: the asset's own, or 1 to downmix it.
func (p *filePlayer) openStreams(s, probe iostream.Stream, closers []io.Closer, accept func(ch int) (int, error)) error {
	p.close()

	fail := func(err error) error {
		for _, c := range closers {
			_ = c.Close()
		}
		return err
	}
	if p.src.detached {
		return fail(audio.ErrFail)
	}

	var probed int64 = -1
	if probe != nil && probe != s {
		pd, err := decoder.NewFromStream(probe, p.e.frames, p.e.rate)
		if err != nil {
			return fail(err)
		}
		probed = pd.NumSamplesPerChannel()
		_ = pd.Close()
	}

	dec, err := decoder.NewFromStream(s, p.e.frames, p.e.rate)
	if err != nil {
		return fail(err)
	}
	out, err := accept(dec.NumChannels())
	if err != nil {
		_ = dec.Close()
		return fail(err)
	}
	_, canSeek := dec.Source().(audio.Seekable)
	if out != dec.NumChannels() {
		dec.DownmixToMono()
	}

	frames := dec.NumSamplesPerChannel()
	if frames == 0 && probed > 0 {
		frames = probed
	}

	p.mu.Lock()
	p.dec = dec
	p.owned = closers
	p.channels = out
	p.frames = frames
	p.seekable = canSeek && s.CanSeek() && frames > 0
	p.limit = p.ring.Cap() / out * out
	p.eof, p.initSent = false, false

	g := p.seekGen.Load()
	p.doneGen, p.appliedGen = g, g
	p.basePos, p.baseFrame = p.ring.Tail(), 0
	p.flushTo.Store(p.ring.Tail())
	p.elapsed.Store(0)
	p.frac, p.hist, p.rewound = 0, [2]float32{}, false
	p.mu.Unlock()

	p.open.Store(true)
	p.e.wakeDecoder()

	p.e.log.Debug("asset opened",
		"format", dec.Name(),
		"channels", dec.NumChannels(),
		"rate", dec.SampleRate(),
		"frames", frames,
		"seekable", p.seekable,
	)
	return nil
}

// close stops playback of the asset and releases it. Safe to call when
// nothing is open.
func (p *filePlayer) close() {
	p.open.Store(false)
	p.e.waitMixIdle()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dec == nil {
		return
	}
	var err error
	if cerr := p.dec.Close(); cerr != nil {
		err = cerr
	}
	for _, c := range p.owned {
		err = errors.Join(err, c.Close())
	}
	if err != nil {
		p.e.log.Warn("closing asset", "error", err)
	}
	p.dec, p.owned = nil, nil
	p.ring.Reset()
	p.marks.Reset()
	p.frames, p.seekable = 0, false
	p.elapsed.Store(0)
}

func (p *filePlayer) isOpen() bool { return p.open.Load() }

// seek asks the producer to continue from frame. It does not block.
func (p *filePlayer) seek(frame int64) error {
	if !p.open.Load() || !p.seekable || frame < 0 || frame > p.frames {
		return audio.ErrFail
	}
	p.requestSeek(frame)
	p.elapsed.Store(frame)
	p.e.wakeDecoder()
	return nil
}

func (p *filePlayer) requestSeek(frame int64) {
	p.seekFrame.Store(frame)
	p.seekGen.Add(1)
}

// rewind returns the playhead to the start, for Stop. Safe from any
// goroutine.
func (p *filePlayer) rewind() {
	if !p.open.Load() {
		return
	}
	if p.seekable {
		p.requestSeek(0)
	}
	p.elapsed.Store(0)
	if p.inCB {
		return
	}
	p.e.wakeDecoder()
}

func (p *filePlayer) setPitch(v float32) {
	p.pitch.Store(math.Float32bits(utils.Clamp(v, 0.001, maxPitch)))
}

func (p *filePlayer) getPitch() float32 { return math.Float32frombits(p.pitch.Load()) }

// fill tops the ring up from the decoder goroutine.
func (p *filePlayer) fill() {
	if p.inCB || !p.open.Load() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dec == nil || !p.open.Load() {
		return
	}
	p.produce(p.limit)
}

// fillInCallback decodes one tick ahead on the mix goroutine. It never
// waits for Close.
func (p *filePlayer) fillInCallback(t *tick) {
	if !p.inCB || !p.mu.TryLock() {
		return
	}
	defer p.mu.Unlock()
	if p.dec == nil {
		return
	}
	want := int(math.Ceil(float64(t.frames)*float64(p.getPitch()))) + 1
	p.produce(want * p.channels)
}

func (p *filePlayer) pushMark(m mark) bool {
	b := [1]mark{m}
	return p.marks.Write(b[:]) == 1
}

// produce decodes until want samples are buffered. Under mu.
func (p *filePlayer) produce(want int) {
	if g := p.seekGen.Load(); g != p.doneGen {
		if p.marks.Free() == 0 {
			return
		}
		frame := p.seekFrame.Load()
		p.doneGen = g
		if err := p.dec.SeekToSample(frame); err != nil {
			p.e.log.Warn("seek failed", "frame", frame, "error", err)
		}
		pos := p.ring.Tail()
		p.pushMark(mark{pos: pos, frame: frame, kind: markSeek, gen: g})
		p.flushTo.Store(pos)
		p.eof = false
	}

	want = min(want, p.limit)
	for !p.eof {
		space := min(want-p.buffered(), p.ring.Free())
		space -= space % p.channels
		if space <= 0 {
			break
		}

		n := p.decode(space)

		if p.dec.DecoderError() {
			p.e.log.Warn("decode failed", "error", p.dec.Err())
			p.finish()
			break
		}
		if n > 0 && !p.dec.EndOfStream() {
			continue
		}
		if !p.dec.EndOfStream() {
			break
		}

		if p.looping.Load() && p.seekable {
			if p.marks.Free() == 0 {
				break
			}
			if err := p.dec.SeekToSample(0); err != nil {
				p.e.log.Warn("loop rewind failed", "error", err)
				p.finish()
				break
			}
			p.pushMark(mark{pos: p.ring.Tail(), frame: 0, kind: markLoop, gen: p.doneGen})
			continue
		}
		p.finish()
	}

	if !p.initSent && (p.eof || p.buffered() >= p.e.frames*p.channels) {
		p.initSent = true
		p.src.post(events.DecoderInit)
	}
}

// buffered is the number of samples ahead of the read position that
// survive a pending flush.
func (p *filePlayer) buffered() int {
	from := max(p.ring.Head(), p.flushTo.Load())
	return int(p.ring.Tail() - from)
}

func (p *filePlayer) finish() {
	if p.pushMark(mark{pos: p.ring.Tail(), frame: -1, kind: markEnd, gen: p.doneGen}) {
		p.eof = true
	}
}

// decode moves up to space samples from the decoder into the ring and
// returns the number written.
func (p *filePlayer) decode(space int) int {
	n := min(space, len(p.scratch))
	n -= n % p.channels
	got := p.dec.Decode(p.scratch[:n])
	return p.ring.Write(p.scratch[:got])
}

// sync drops what a seek superseded and applies the marks the playhead
// passed. It reports whether a seek is still pending, in which case the
// player outputs silence.
func (p *filePlayer) sync(t *tick) bool {
	if f := p.flushTo.Load(); f > p.ring.Head() {
		p.ring.DiscardTo(f)
	}
	p.applyMarks(true)
	return p.seekGen.Load() != p.appliedGen
}

// applyMarks consumes the marks at or behind the read position. quiet
// suppresses Looped for boundaries that were skipped rather than played.
func (p *filePlayer) applyMarks(quiet bool) {
	head := p.ring.Head()
	for {
		if p.marks.Peek(p.markBuf[:]) == 0 {
			return
		}
		m := p.markBuf[0]
		if m.pos > head {
			return
		}

		switch {
		case m.kind == markSeek:
			p.appliedGen = m.gen
			p.basePos, p.baseFrame = m.pos, m.frame
			p.frac, p.hist = 0, [2]float32{}
			p.rewound = false
		case p.seekGen.Load() != p.appliedGen:
			// superseded by a seek still in flight
		case m.kind == markLoop:
			p.basePos, p.baseFrame = m.pos, 0
			if !quiet {
				p.src.post(events.Looped)
			}
		case m.kind == markEnd:
			if !p.rewound {
				p.rewound = true
				p.src.post(events.EndOfStream)
				p.src.control.Stop()
				p.rewind()
			}
		}
		p.marks.Discard(1)
	}
}

// read moves up to t.frames frames into dst and returns how many it wrote.
// Mix goroutine only.
func (p *filePlayer) read(t *tick, dst []float32) int {
	ch := p.channels
	pitch := p.getPitch()

	var n int
	if pitch == 1 {
		n = p.ring.Read(dst[:t.frames*ch]) / ch
		if n > 0 && ch <= len(p.hist) {
			copy(p.hist[:ch], dst[(n-1)*ch:n*ch])
		}
	} else {
		n = p.readVarispeed(t, dst, float64(pitch))
	}

	p.applyMarks(false)
	if p.seekGen.Load() == p.appliedGen && !p.rewound {
		p.elapsed.Store(p.baseFrame + int64(p.ring.Head()-p.basePos)/int64(ch))
	}
	return n
}

// readVarispeed resamples the ring by pitch with linear interpolation.
// Index 0 of the peek buffer holds the last frame consumed.
func (p *filePlayer) readVarispeed(t *tick, dst []float32, pitch float64) int {
	ch := p.channels
	need := int(math.Floor(p.frac + float64(t.frames)*pitch))
	avail := p.ring.Len() / ch
	peeked := p.ring.Peek(t.peek[ch:min((need+1)*ch, avail*ch)+ch]) / ch

	buf := t.peek
	copy(buf[:ch], p.hist[:ch])

	n := 0
	for i := range t.frames {
		pos := p.frac + float64(i)*pitch
		k := int(pos)
		if k+1 > peeked {
			break
		}
		w := float32(pos - float64(k))
		for c := range ch {
			a, b := buf[k*ch+c], buf[(k+1)*ch+c]
			dst[i*ch+c] = a + (b-a)*w
		}
		n++
	}

	consume := min(need, peeked)
	p.ring.Discard(consume * ch)
	if consume > 0 {
		copy(p.hist[:ch], buf[consume*ch:(consume+1)*ch])
	}
	if consume == need {
		p.frac += float64(t.frames)*pitch - float64(need)
	} else {
		p.frac = 0
	}
	return n
}

// durationMs is the asset length in ms at the engine rate.
func (p *filePlayer) durationMs() float64 {
	return utils.FramesToMs(p.frames, p.e.rate)
}
