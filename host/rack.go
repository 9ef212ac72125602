// Package host runs a voice against real audio devices or offline. The voice
// itself lives on the audio goroutine; other goroutines reach it through a
// Rack, which hands control changes over with atomics.
package host

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-elements/elements"
	"github.com/cwbudde/algo-elements/voice"
)

const (
	// gateVolts is what the rack puts on the gate jack while held.
	gateVolts = 5.0

	// triggerSeconds is the length of a Trigger pulse.
	triggerSeconds = 0.01

	noModel = -1
)

// Stepper produces one stereo frame per call from one frame of audio input.
// It is called from the audio goroutine only.
type Stepper interface {
	Tick(blow, strike float32) (main, aux float32)
}

// Rack adapts a voice to Stepper and buffers control changes from other
// goroutines until the next Tick.
type Rack struct {
	v *voice.Voice

	pitch   atomic.Uint32 // float32 bits, volts
	gate    atomic.Bool
	trigger atomic.Bool
	model   atomic.Int32

	params [voice.NumParams]atomic.Uint32
	dirty  atomic.Bool

	lightExc atomic.Uint32
	lightRes atomic.Uint32

	// Audio goroutine only.
	pulse int
}

var _ Stepper = (*Rack)(nil)

// NewRack wraps v. v must not be touched directly once the rack is in use.
func NewRack(v *voice.Voice) *Rack {
	r := &Rack{v: v}
	r.model.Store(noModel)
	for id := voice.ParamID(0); id < voice.NumParams; id++ {
		r.params[id].Store(math.Float32bits(v.Param(id)))
	}
	r.pitch.Store(math.Float32bits(v.Input(voice.NoteInput)))
	return r
}

// SampleRate returns the host rate of the wrapped voice.
func (r *Rack) SampleRate() float64 { return r.v.SampleRate() }

// SetPitch sets the 1 V/octave pitch CV, 0 V being A4.
func (r *Rack) SetPitch(volts float32) { r.pitch.Store(math.Float32bits(volts)) }

// SetGate holds or releases the gate.
func (r *Rack) SetGate(on bool) { r.gate.Store(on) }

// Trigger sends a short gate pulse, as a percussive key press does.
func (r *Rack) Trigger() { r.trigger.Store(true) }

// SetParam queues a control change. The voice clamps it on arrival.
func (r *Rack) SetParam(id voice.ParamID, value float32) {
	if !id.Valid() {
		return
	}
	r.params[id].Store(math.Float32bits(value))
	r.dirty.Store(true)
}

// SelectModel queues a model change.
func (r *Rack) SelectModel(m elements.ResonatorModel) error {
	if !m.Valid() {
		return voice.ErrInvalidModel
	}
	r.model.Store(int32(m))
	return nil
}

// Lights returns the meter values published by the last Tick.
func (r *Rack) Lights() (exciter, resonator float32) {
	return math.Float32frombits(r.lightExc.Load()), math.Float32frombits(r.lightRes.Load())
}

// Tick applies pending control changes and steps the voice once. Inputs and
// outputs are audio in [-1, 1].
func (r *Rack) Tick(blow, strike float32) (main, aux float32) {
	v := r.v
	if m := r.model.Swap(noModel); m != noModel {
		_ = v.SetModel(elements.ResonatorModel(m))
	}
	if r.dirty.Swap(false) {
		for id := voice.ParamID(0); id < voice.NumParams; id++ {
			v.SetParam(id, math.Float32frombits(r.params[id].Load()))
		}
	}
	if r.trigger.Swap(false) {
		r.pulse = max(int(triggerSeconds*v.SampleRate()), 1)
	}

	gate := r.gate.Load() || r.pulse > 0
	if r.pulse > 0 {
		r.pulse--
	}
	if gate {
		v.SetInput(voice.GateInput, gateVolts)
	} else {
		v.SetInput(voice.GateInput, 0)
	}
	v.SetInput(voice.NoteInput, math.Float32frombits(r.pitch.Load()))
	v.SetInput(voice.BlowInput, blow*gateVolts)
	v.SetInput(voice.StrikeInput, strike*gateVolts)

	v.Step()

	exc, res := v.Lights()
	r.lightExc.Store(math.Float32bits(exc))
	r.lightRes.Store(math.Float32bits(res))
	return v.Output(voice.MainOutput) / gateVolts, v.Output(voice.AuxOutput) / gateVolts
}
