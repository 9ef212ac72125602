// Package dsp holds the real-time building blocks shared by the voice and the
// engine: stereo frames, the mirrored ring buffer, the variable-ratio
// sample-rate converter, shaping math and a few allocation-free filters.
package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process).
// Coefficients can be recomputed in place once per block.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewLowpass creates a lowpass biquad.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	b := &Biquad{}
	b.SetLowpass(cutoff, sampleRate, q)
	return b
}

// SetLowpass recomputes RBJ lowpass coefficients without touching state.
func (b *Biquad) SetLowpass(cutoff, sampleRate, q float32) {
	alpha, cosw0 := rbj(cutoff, sampleRate, q)
	a0 := 1.0 + alpha
	b.b0 = float32((1.0 - cosw0) / 2.0 / a0)
	b.b1 = float32((1.0 - cosw0) / a0)
	b.b2 = b.b0
	b.a1 = float32(-2.0 * cosw0 / a0)
	b.a2 = float32((1.0 - alpha) / a0)
}

// SetBandpass recomputes constant 0 dB peak gain bandpass coefficients.
func (b *Biquad) SetBandpass(center, sampleRate, q float32) {
	alpha, cosw0 := rbj(center, sampleRate, q)
	a0 := 1.0 + alpha
	b.b0 = float32(alpha / a0)
	b.b1 = 0
	b.b2 = float32(-alpha / a0)
	b.a1 = float32(-2.0 * cosw0 / a0)
	b.a2 = float32((1.0 - alpha) / a0)
}

func rbj(freq, sampleRate, q float32) (alpha, cosw0 float64) {
	nyq := 0.49 * float64(sampleRate)
	f := float64(freq)
	if f < 1 {
		f = 1
	}
	if f > nyq {
		f = nyq
	}
	if q < 0.05 {
		q = 0.05
	}
	w0 := 2.0 * math.Pi * f / float64(sampleRate)
	return math.Sin(w0) / (2.0 * float64(q)), math.Cos(w0)
}

// Process runs one sample through the filter (direct form I).
func (b *Biquad) Process(input float32) float32 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// OnePole is a one-pole lowpass smoother.
type OnePole struct {
	coeff float32
	state float32
}

// SetCutoff sets the -3 dB point. Cutoffs at or above Nyquist open the filter fully.
func (o *OnePole) SetCutoff(cutoff, sampleRate float32) {
	if cutoff <= 0 {
		o.coeff = 0
		return
	}
	if cutoff >= 0.5*sampleRate {
		o.coeff = 1
		return
	}
	o.coeff = float32(1.0 - math.Exp(-2.0*math.Pi*float64(cutoff)/float64(sampleRate)))
}

// SetCoefficient sets the smoothing coefficient directly, in [0, 1].
func (o *OnePole) SetCoefficient(c float32) {
	o.coeff = Clamp(c, 0, 1)
}

// Process filters one sample.
func (o *OnePole) Process(x float32) float32 {
	o.state += o.coeff * (x - o.state)
	o.state = float32(dspcore.FlushDenormals(float64(o.state)))
	return o.state
}

// Value returns the current filter state.
func (o *OnePole) Value() float32 { return o.state }

// Reset clears the filter state.
func (o *OnePole) Reset() { o.state = 0 }

// DelayLine is a power-of-two circular delay with fractional reads.
type DelayLine struct {
	buffer   []float32
	mask     int
	writePos int
}

// NewDelayLine allocates a delay able to hold at least maxDelay samples plus
// interpolation headroom.
func NewDelayLine(maxDelay int) *DelayLine {
	n := nextPow2(maxDelay + 4)
	return &DelayLine{
		buffer: make([]float32, n),
		mask:   n - 1,
	}
}

// MaxDelay is the longest delay that still leaves room for cubic interpolation.
func (d *DelayLine) MaxDelay() float32 { return float32(len(d.buffer) - 4) }

// Write pushes a sample.
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// Read returns the sample written delay samples ago (delay 1 is the latest).
func (d *DelayLine) Read(delay int) float32 {
	return d.buffer[(d.writePos-delay)&d.mask]
}

// ReadFractional reads with linear interpolation.
func (d *DelayLine) ReadFractional(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)
	s1 := d.Read(intDelay)
	s2 := d.Read(intDelay + 1)
	return s1 + frac*(s2-s1)
}

// ReadCubic reads with third-order Lagrange interpolation. delay must be >= 2.
func (d *DelayLine) ReadCubic(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)
	y0 := d.Read(intDelay - 1)
	y1 := d.Read(intDelay)
	y2 := d.Read(intDelay + 1)
	y3 := d.Read(intDelay + 2)

	c0 := y1
	c1 := y2 - y0/3.0 - y1/2.0 - y3/6.0
	c2 := y0/2.0 - y1 + y2/2.0
	c3 := y1/2.0 - y2/2.0 + (y3-y0)/6.0
	return c0 + frac*(c1+frac*(c2+frac*c3))
}

// Reset clears the delay line.
func (d *DelayLine) Reset() {
	clear(d.buffer)
	d.writePos = 0
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
