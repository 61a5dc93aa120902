// SPDX-License-Identifier: EPL-2.0

// Package loudness measures rendered audio the EBU R128 way: momentary,
// short-term and gated integrated loudness in LUFS plus true peak in dBTP.
//
// A Meter is not safe for concurrent use.
package loudness

import (
	"math"
)

const (
	subBlockMs = 100
	momentary  = 4  // sub-blocks in the 400ms momentary window
	shortTerm  = 30 // sub-blocks in the 3s short-term window

	absoluteGate = -70.0
	relativeGate = -10.0

	histMin  = -70.0
	histMax  = 30.0
	histStep = 0.1
	histBins = int((histMax - histMin) / histStep)
)

// Statistics are the measured values. Anything not measured yet is -Inf.
type Statistics struct {
	Integrated float32 // LUFS
	ShortTerm  float32 // LUFS
	Momentary  float32 // LUFS
	TruePeak   float32 // dBTP
}

func blockLoudness(energy float64) float64 {
	if energy <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10*math.Log10(energy)
}

func loudnessEnergy(l float64) float64 {
	return math.Pow(10, (l+0.691)/10)
}

// Meter accumulates loudness of interleaved audio.
type Meter struct {
	channels int
	blockLen int

	filters []kWeighting
	peaks   []*truePeak
	sample  float64

	acc    float64 // sum of squares in the current sub-block
	accLen int

	subBlocks [shortTerm]float64 // mean square energy of recent sub-blocks
	count     int                // sub-blocks seen, saturating at shortTerm
	next      int

	hist      [histBins]uint64
	histTotal uint64
}

// NewMeter returns a meter for audio at rate with channels interleaved
// channels.
func NewMeter(rate, channels int) *Meter {
	m := &Meter{
		channels: channels,
		blockLen: max(rate*subBlockMs/1000, 1),
		filters:  make([]kWeighting, channels),
		peaks:    make([]*truePeak, channels),
	}
	for c := range channels {
		m.filters[c] = newKWeighting(rate)
		m.peaks[c] = newTruePeak()
	}
	return m
}

// Reset discards everything measured so far.
func (m *Meter) Reset() {
	for c := range m.channels {
		m.filters[c].reset()
		m.peaks[c].reset()
	}
	m.sample = 0
	m.acc, m.accLen = 0, 0
	m.subBlocks = [shortTerm]float64{}
	m.count, m.next = 0, 0
	m.hist = [histBins]uint64{}
	m.histTotal = 0
}

// Process measures interleaved samples. A trailing partial frame is
// ignored.
func (m *Meter) Process(samples []float32) {
	frames := len(samples) / m.channels
	for i := range frames {
		frame := samples[i*m.channels : (i+1)*m.channels]
		for c, v := range frame {
			x := float64(v)
			m.sample = max(m.sample, math.Abs(x))
			m.peaks[c].push(x)

			y := m.filters[c].process(x)
			m.acc += y * y
		}

		m.accLen++
		if m.accLen == m.blockLen {
			m.endSubBlock()
		}
	}
}

func (m *Meter) endSubBlock() {
	m.subBlocks[m.next] = m.acc / float64(m.blockLen)
	m.next = (m.next + 1) % shortTerm
	m.count = min(m.count+1, shortTerm)
	m.acc, m.accLen = 0, 0

	// every sub-block closes a 400ms gating block overlapping the last by 75%
	if m.count >= momentary {
		m.addGatingBlock(m.window(momentary))
	}
}

// window returns the mean energy of the last n sub-blocks.
func (m *Meter) window(n int) float64 {
	var sum float64
	for i := 1; i <= n; i++ {
		sum += m.subBlocks[(m.next-i+shortTerm)%shortTerm]
	}
	return sum / float64(n)
}

func (m *Meter) addGatingBlock(energy float64) {
	l := blockLoudness(energy)
	if l < absoluteGate {
		return
	}
	bin := int((l - histMin) / histStep)
	bin = min(max(bin, 0), histBins-1)
	m.hist[bin]++
	m.histTotal++
}

func binEnergy(bin int) float64 {
	return loudnessEnergy(histMin + (float64(bin)+0.5)*histStep)
}

func (m *Meter) integrated() float64 {
	if m.histTotal == 0 {
		return math.Inf(-1)
	}

	var sum float64
	for b, n := range m.hist {
		sum += float64(n) * binEnergy(b)
	}
	gate := blockLoudness(sum/float64(m.histTotal)) + relativeGate

	var gated float64
	var count uint64
	for b, n := range m.hist {
		if n == 0 || histMin+(float64(b)+0.5)*histStep < gate {
			continue
		}
		gated += float64(n) * binEnergy(b)
		count += n
	}
	if count == 0 {
		return math.Inf(-1)
	}
	return blockLoudness(gated / float64(count))
}

// Statistics returns the current measurements.
func (m *Meter) Statistics() Statistics {
	s := Statistics{
		Integrated: float32(m.integrated()),
		ShortTerm:  float32(math.Inf(-1)),
		Momentary:  float32(math.Inf(-1)),
		TruePeak:   float32(math.Inf(-1)),
	}
	if m.count >= momentary {
		s.Momentary = float32(blockLoudness(m.window(momentary)))
	}
	if m.count >= shortTerm {
		s.ShortTerm = float32(blockLoudness(m.window(shortTerm)))
	}

	peak := m.sample
	for _, p := range m.peaks {
		peak = max(peak, p.peak)
	}
	if peak > 0 {
		s.TruePeak = float32(20 * math.Log10(peak))
	}
	return s
}
