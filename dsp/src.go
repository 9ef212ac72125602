package dsp

import (
	"math"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	// MaxRatio bounds the conversion ratio in both directions.
	MaxRatio = 16.0

	kernelPhases = 128

	// Positions are rebased by this many frames to keep float64 phase exact.
	// It must be a multiple of every history length.
	rebaseFrames = 1 << 24
)

// SampleRateConverter is a streaming stereo converter with a ratio that may
// change between calls. It evaluates a Kaiser-windowed sinc kernel from a
// finely sampled table, stretching the kernel when downsampling so it also
// acts as the anti-aliasing filter. Process never allocates.
//
// Output frame m sits at input position m/ratio, so the converter has no
// group delay beyond the lookahead it waits for before emitting.
type SampleRateConverter struct {
	zeroCrossings int
	cutoff        float64
	table         []float64

	ratio float64
	step  float64
	scale float64
	reach float64

	history  []Frame
	histMask int
	ingested int
	pos      float64
}

type converterConfig struct {
	zeroCrossings int
	beta          float64
	cutoff        float64
}

// ConverterOption configures a SampleRateConverter.
type ConverterOption func(*converterConfig)

// WithQuality selects kernel length, window beta and cutoff from the
// algo-dsp resampler profile of the same name.
func WithQuality(q dspresample.Quality) ConverterOption {
	return func(c *converterConfig) {
		p := dspresample.QualityProfile(q)
		c.zeroCrossings = max(p.TapsPerPhase/4, 2)
		c.beta = p.KaiserBeta
		c.cutoff = p.CutoffScale
	}
}

// WithZeroCrossings sets the one-sided kernel length in zero crossings.
func WithZeroCrossings(n int) ConverterOption {
	return func(c *converterConfig) {
		if n >= 2 {
			c.zeroCrossings = n
		}
	}
}

// WithKaiserBeta overrides the window shape.
func WithKaiserBeta(beta float64) ConverterOption {
	return func(c *converterConfig) {
		if beta > 0 {
			c.beta = beta
		}
	}
}

// WithCutoffScale sets the passband edge as a fraction of the lower Nyquist
// frequency. Values outside (0, 1] are ignored.
func WithCutoffScale(s float64) ConverterOption {
	return func(c *converterConfig) {
		if s > 0 && s <= 1 {
			c.cutoff = s
		}
	}
}

// NewSampleRateConverter returns a converter at ratio 1.
func NewSampleRateConverter(opts ...ConverterOption) *SampleRateConverter {
	cfg := converterConfig{}
	WithQuality(dspresample.QualityBalanced)(&cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &SampleRateConverter{
		zeroCrossings: cfg.zeroCrossings,
		cutoff:        cfg.cutoff,
		table:         kernelTable(cfg.zeroCrossings, cfg.beta),
	}

	// Widest kernel support happens at the smallest ratio.
	maxReach := float64(c.zeroCrossings) * MaxRatio / c.cutoff
	n := nextPow2(2*int(math.Ceil(maxReach)) + 4)
	c.history = make([]Frame, n)
	c.histMask = n - 1

	c.SetRatio(1)
	return c
}

// kernelTable samples the right half of sinc(x)*kaiser(x) at kernelPhases
// points per zero crossing, normalized to unit area. Two trailing zeros make
// interpolation at the edge branch-free.
func kernelTable(zeroCrossings int, beta float64) []float64 {
	half := zeroCrossings * kernelPhases
	w, err := window.Kaiser(2*half+1, beta)
	if err != nil || len(w) != 2*half+1 {
		w = make([]float64, 2*half+1)
		for i := range w {
			w[i] = 1
		}
	}

	table := make([]float64, half+2)
	for i := 0; i <= half; i++ {
		x := float64(i) / kernelPhases
		table[i] = sinc(x) * w[half+i]
	}

	area := table[0]
	for i := 1; i <= half; i++ {
		area += 2 * table[i]
	}
	area /= kernelPhases
	if area > 0 {
		for i := range table {
			table[i] /= area
		}
	}
	return table
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// SetRatio sets the output/input rate ratio. Non-finite or non-positive
// values are ignored and the rest is clamped to [1/MaxRatio, MaxRatio].
// History is kept so a ratio change does not click.
func (c *SampleRateConverter) SetRatio(ratio float64) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return
	}
	ratio = Clamp(ratio, 1/MaxRatio, MaxRatio)
	c.ratio = ratio
	c.step = 1 / ratio
	c.scale = math.Min(1, ratio) * c.cutoff
	c.reach = float64(c.zeroCrossings) / c.scale
}

// SetRates is SetRatio(outRate/inRate).
func (c *SampleRateConverter) SetRates(inRate, outRate float64) {
	c.SetRatio(outRate / inRate)
}

// Ratio returns the current output/input ratio.
func (c *SampleRateConverter) Ratio() float64 { return c.ratio }

// Latency returns how many input frames the converter must see beyond an
// output position before it can emit that output.
func (c *SampleRateConverter) Latency() int { return int(math.Ceil(c.reach)) }

// Reset drops all history and restarts the phase.
func (c *SampleRateConverter) Reset() {
	clear(c.history)
	c.ingested = 0
	c.pos = 0
}

// Process converts frames from in into out. Input frames are consumed only
// as far as the produced outputs need them, so leftovers remain for the next
// call. It returns how many frames of each slice were used.
func (c *SampleRateConverter) Process(in, out []Frame) (consumed, produced int) {
	for produced < len(out) {
		need := int(math.Floor(c.pos + c.reach))
		for need >= c.ingested {
			if consumed >= len(in) {
				return consumed, produced
			}
			c.history[c.ingested&c.histMask] = in[consumed]
			c.ingested++
			consumed++
		}

		out[produced] = c.evaluate()
		produced++
		c.pos += c.step

		if c.ingested >= rebaseFrames {
			c.ingested -= rebaseFrames
			c.pos -= rebaseFrames
		}
	}
	return consumed, produced
}

func (c *SampleRateConverter) evaluate() Frame {
	lo := int(math.Ceil(c.pos - c.reach))
	hi := int(math.Floor(c.pos + c.reach))
	tableScale := c.scale * kernelPhases
	limit := len(c.table) - 2

	var l, r float64
	for k := lo; k <= hi; k++ {
		t := math.Abs(c.pos-float64(k)) * tableScale
		i := int(t)
		if i >= limit {
			continue
		}
		frac := t - float64(i)
		h := c.table[i] + frac*(c.table[i+1]-c.table[i])
		f := c.history[k&c.histMask]
		l += h * float64(f[0])
		r += h * float64(f[1])
	}
	return Frame{float32(l * c.scale), float32(r * c.scale)}
}
