// Package voice bridges a host running at any sample rate, one sample per
// tick, and the block-based engine running at its own fixed rate. Two ring
// buffers decouple the cadences and two sample-rate converters bridge the
// rates. Nothing on the per-tick path allocates or blocks.
package voice

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-elements/dsp"
	"github.com/cwbudde/algo-elements/elements"
)

var (
	// ErrInvalidSampleRate is returned for host rates outside [MinSampleRate, MaxSampleRate].
	ErrInvalidSampleRate = errors.New("voice: invalid sample rate")
	// ErrInvalidModel is returned for an unknown resonator model.
	ErrInvalidModel = errors.New("voice: invalid model")
)

const (
	// RingFrames is the capacity of each ring buffer.
	RingFrames = 256

	// MinSampleRate and MaxSampleRate bound the host rate to what the
	// converters can bridge without clamping their ratio.
	MinSampleRate = elements.SampleRate / dsp.MaxRatio
	MaxSampleRate = elements.SampleRate * dsp.MaxRatio

	// Volts of a full-scale audio signal.
	audioVolts = 5.0
)

// Voice is one module instance. It is driven from a single audio thread;
// nothing here is safe for concurrent use.
type Voice struct {
	hostRate float64

	knobs   Knobs
	inputs  Voltages
	outputs [NumOutputs]float32
	lights  [2]float32

	in     *dsp.DoubleRingBuffer[dsp.Frame]
	out    *dsp.DoubleRingBuffer[dsp.Frame]
	inSRC  *dsp.SampleRateConverter
	outSRC *dsp.SampleRateConverter
	part   *elements.Part

	inBlock  [elements.BlockSize]dsp.Frame
	outBlock [elements.BlockSize]dsp.Frame
	blow     [elements.BlockSize]float32
	strike   [elements.BlockSize]float32
	main     [elements.BlockSize]float32
	aux      [elements.BlockSize]float32
}

type config struct {
	converter []dsp.ConverterOption
	seed      []uint32
}

// Option configures a Voice.
type Option func(*config)

// WithConverterOptions applies opts to both sample-rate converters.
func WithConverterOptions(opts ...dsp.ConverterOption) Option {
	return func(c *config) {
		c.converter = append(c.converter, opts...)
	}
}

// WithSeed seeds the engine's noise sources.
func WithSeed(seed ...uint32) Option {
	return func(c *config) {
		c.seed = append([]uint32(nil), seed...)
	}
}

// New creates a voice for a host running at hostRate Hz.
func New(hostRate float64, opts ...Option) (*Voice, error) {
	if !validRate(hostRate) {
		return nil, ErrInvalidSampleRate
	}
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	v := &Voice{
		hostRate: hostRate,
		knobs:    DefaultKnobs(),
		in:       dsp.NewDoubleRingBuffer[dsp.Frame](RingFrames),
		out:      dsp.NewDoubleRingBuffer[dsp.Frame](RingFrames),
		inSRC:    dsp.NewSampleRateConverter(cfg.converter...),
		outSRC:   dsp.NewSampleRateConverter(cfg.converter...),
		part:     elements.NewPart(),
	}
	if len(cfg.seed) > 0 {
		v.part.Seed(cfg.seed)
	}
	v.updateRatios()
	return v, nil
}

func validRate(r float64) bool {
	return r >= MinSampleRate && r <= MaxSampleRate
}

// SampleRate returns the host rate.
func (v *Voice) SampleRate() float64 { return v.hostRate }

// SetSampleRate follows a host rate change. Buffered audio is kept; the
// converters pick up the new ratio on the next render.
func (v *Voice) SetSampleRate(rate float64) error {
	if !validRate(rate) {
		return ErrInvalidSampleRate
	}
	v.hostRate = rate
	v.updateRatios()
	return nil
}

func (v *Voice) updateRatios() {
	v.inSRC.SetRatio(elements.SampleRate / v.hostRate)
	v.outSRC.SetRatio(v.hostRate / elements.SampleRate)
}

// Step advances the voice by one host sample.
func (v *Voice) Step() {
	if !v.in.Full() {
		v.in.Push(dsp.Frame{
			v.inputs[BlowInput] / audioVolts,
			v.inputs[StrikeInput] / audioVolts,
		})
	}

	if v.out.Empty() {
		v.render()
	}

	if f, ok := v.out.Shift(); ok {
		v.outputs[MainOutput] = audioVolts * f[0]
		v.outputs[AuxOutput] = audioVolts * f[1]
	}
}

// render runs one engine block and queues its converted output.
func (v *Voice) render() {
	v.updateRatios()
	v.inBlock = [elements.BlockSize]dsp.Frame{}
	consumed, _ := v.inSRC.Process(v.in.StartData(), v.inBlock[:])
	v.in.StartIncr(consumed)

	for i, f := range v.inBlock {
		v.blow[i] = f[0]
		v.strike[i] = f[1]
	}

	patch := BuildPatch(&v.knobs, &v.inputs)
	v.part.SetPatch(patch)
	ps := BuildPerformance(&v.knobs, &v.inputs)
	exc, res := v.part.Process(ps, v.blow[:], v.strike[:], v.main[:], v.aux[:])

	for i := range v.outBlock {
		v.outBlock[i] = dsp.Frame{v.main[i], v.aux[i]}
	}
	_, produced := v.outSRC.Process(v.outBlock[:], v.out.EndData())
	v.out.EndIncr(produced)

	v.lights[0] = exc
	v.lights[1] = res
}

// SetParam sets a control, clamped into its panel range. Unknown ids are
// ignored.
func (v *Voice) SetParam(id ParamID, value float32) {
	if !id.Valid() {
		return
	}
	info := paramInfos[id]
	v.knobs[id] = dsp.Clamp(value, info.Min, info.Max)
}

// Param returns a control value.
func (v *Voice) Param(id ParamID) float32 {
	if !id.Valid() {
		return 0
	}
	return v.knobs[id]
}

// SetInput sets the voltage on an input jack.
func (v *Voice) SetInput(id InputID, volts float32) {
	if id.Valid() {
		v.inputs[id] = volts
	}
}

// Input returns the voltage on an input jack.
func (v *Voice) Input(id InputID) float32 {
	if !id.Valid() {
		return 0
	}
	return v.inputs[id]
}

// Output returns the voltage on an output jack.
func (v *Voice) Output(id OutputID) float32 {
	if !id.Valid() {
		return 0
	}
	return v.outputs[id]
}

// Lights returns the exciter and resonator meter values.
func (v *Voice) Lights() (exciter, resonator float32) {
	return v.lights[0], v.lights[1]
}

// Model returns the active resonator model.
func (v *Voice) Model() elements.ResonatorModel { return v.part.Model() }

// SetModel selects a resonator model.
func (v *Voice) SetModel(m elements.ResonatorModel) error {
	if !v.part.SetModel(m) {
		return ErrInvalidModel
	}
	return nil
}

// Reset drops all buffered audio, converter history and engine state. The
// model, controls and inputs are kept.
func (v *Voice) Reset() {
	v.in.Clear()
	v.out.Clear()
	v.inSRC.Reset()
	v.outSRC.Reset()
	v.part.Reset()
	v.outputs = [NumOutputs]float32{}
	v.lights = [2]float32{}
}

// Latency estimates the delay from input jack to output jack in host frames:
// one engine block plus both converters' look-ahead.
func (v *Voice) Latency() int {
	ratio := v.hostRate / elements.SampleRate
	engine := float64(elements.BlockSize) + float64(v.outSRC.Latency())
	host := float64(v.inSRC.Latency())
	return int(math.Ceil(engine*ratio + host))
}

// Ports describes the module surface.
func (v *Voice) Ports() Ports { return DescribePorts() }
