package elements

import "github.com/cwbudde/algo-elements/dsp"

type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageRelease
)

// envelope shapes the bow and blow exciters. The contour control morphs it
// from a short percussive blip to a slow swell that holds while gated.
type envelope struct {
	stage envelopeStage
	value float32

	attackInc   float32
	decayCoef   float32
	sustain     float32
	releaseCoef float32
}

func (e *envelope) configure(shape float32) {
	shape = dsp.Clamp(shape, 0, 1)
	attack := 0.001 + 1.2*shape*shape*shape
	decay := 0.03 + 3.0*shape*shape
	release := 0.02 + 1.5*shape*shape

	e.attackInc = 1.0 / (attack * SampleRate)
	e.decayCoef = 1.0 - t60Coefficient(decay, SampleRate)
	e.releaseCoef = 1.0 - t60Coefficient(release, SampleRate)
	e.sustain = dsp.Clamp((shape-0.3)*2.0, 0, 1)
}

// gate reacts to gate edges only.
func (e *envelope) gate(on, wasOn bool) {
	switch {
	case on && !wasOn:
		e.stage = stageAttack
	case !on && wasOn:
		e.stage = stageRelease
	}
}

func (e *envelope) process() float32 {
	switch e.stage {
	case stageAttack:
		e.value += e.attackInc
		if e.value >= 1 {
			e.value = 1
			e.stage = stageDecay
		}
	case stageDecay:
		e.value += (e.sustain - e.value) * e.decayCoef
	case stageRelease:
		e.value -= e.value * e.releaseCoef
		if e.value < 1e-5 {
			e.value = 0
			e.stage = stageIdle
		}
	}
	return e.value
}

func (e *envelope) reset() {
	e.stage = stageIdle
	e.value = 0
}
