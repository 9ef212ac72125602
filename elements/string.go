package elements

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-elements/dsp"
)

const (
	minStringFreq = 20.0
	maxStringLen  = SampleRate / minStringFreq
)

// waveguide is a single-delay string loop with dispersion, a loss filter and
// an optional saturating nonlinearity in the loop.
type waveguide struct {
	delay  *dsp.DelayLine
	length float32
	pickup float32

	reflection   float32
	lowpassCoeff float32
	loopState    float32
	nonlinearity float32

	dispersionCoeff float32
	dispersionX1    float32
	dispersionY1    float32
	dispersionX2    float32
	dispersionY2    float32
}

func newWaveguide() waveguide {
	return waveguide{delay: dsp.NewDelayLine(int(maxStringLen) + 8)}
}

// tune sets the loop for one block. decaySeconds is the fundamental T60,
// darkness in [0, 1) the loop lowpass, dispersion in [0, 1] the allpass
// stiffness and position in [0, 1] the pickup point.
func (w *waveguide) tune(f0, decaySeconds, darkness, dispersion, nonlinearity, position float32) {
	f0 = dsp.Clamp(f0, minStringFreq, 0.45*SampleRate)
	w.length = dsp.Clamp(SampleRate/f0, 2, w.delay.MaxDelay()-2)

	// Per round-trip loss so the fundamental reaches -60 dB after decaySeconds.
	w.reflection = dsp.Clamp(t60Coefficient(decaySeconds, f0), 0, 0.99995)
	w.lowpassCoeff = dsp.Clamp(darkness, 0, 0.99)
	w.dispersionCoeff = -0.85 * dsp.Clamp(dispersion, 0, 1)
	w.nonlinearity = dsp.Clamp(nonlinearity, 0, 1)
	w.pickup = dsp.Clamp(w.length*(0.05+0.45*position), 1, w.length)

	w.loopState = float32(dspcore.FlushDenormals(float64(w.loopState)))
}

// process injects x into the loop and returns the bridge and pickup taps.
func (w *waveguide) process(x float32) (bridge, pickup float32) {
	y := w.delay.ReadCubic(w.length)
	tap := w.delay.ReadFractional(w.pickup)

	loop := w.processDispersion(y)
	loop = (1.0-w.lowpassCoeff)*loop + w.lowpassCoeff*w.loopState
	w.loopState = loop
	loop *= w.reflection
	if w.nonlinearity > 0 {
		loop = dsp.Crossfade(loop, softLimit(loop), w.nonlinearity)
	}

	w.delay.Write(float32(dspcore.FlushDenormals(float64(loop + x))))
	return y, y - tap
}

func (w *waveguide) processDispersion(input float32) float32 {
	a := w.dispersionCoeff
	if a == 0.0 {
		return input
	}
	y := -a*input + w.dispersionX1 + a*w.dispersionY1
	w.dispersionX1 = input
	w.dispersionY1 = y

	z := -a*y + w.dispersionX2 + a*w.dispersionY2
	w.dispersionX2 = y
	w.dispersionY2 = z
	return z
}

func (w *waveguide) reset() {
	w.delay.Reset()
	w.loopState = 0
	w.dispersionX1, w.dispersionY1 = 0, 0
	w.dispersionX2, w.dispersionY2 = 0, 0
}

// stringDecay maps damping to the fundamental T60 shared by the string models.
func stringDecay(damping float32) float32 {
	return 6.0 * float32(math.Exp(-5.0*float64(dsp.Clamp(damping, 0, 1))))
}

// stringResonator is the non-linear string model. Geometry drives both the
// loop stiffness and the amount of saturation.
type stringResonator struct {
	wg waveguide
}

func newStringResonator() stringResonator {
	return stringResonator{wg: newWaveguide()}
}

func (s *stringResonator) configure(p *Patch, f0 float32) {
	g := dsp.Clamp(p.ResonatorGeometry, 0, 1)
	s.wg.tune(
		f0,
		stringDecay(p.ResonatorDamping),
		0.9*(1-dsp.Clamp(p.ResonatorBrightness, 0, 1)),
		g*g,
		0.2+0.8*g,
		p.ResonatorPosition,
	)
}

func (s *stringResonator) process(x float32) (main, aux float32) {
	bridge, pickup := s.wg.process(x)
	return pickup, bridge
}

func (s *stringResonator) reset() { s.wg.reset() }
