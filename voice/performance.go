package voice

import (
	"math"

	"github.com/cwbudde/algo-elements/dsp"
	"github.com/cwbudde/algo-elements/elements"
)

const (
	// gateThreshold is inclusive, in volts.
	gateThreshold = 1.0

	// fmRange is the modulation in semitones at full FM knob and 5 V.
	fmRange = 49.5
)

// BuildPerformance derives the playing gesture for one block.
func BuildPerformance(knobs *Knobs, cv *Voltages) elements.PerformanceState {
	coarse := float32(math.Round(float64(knobs[CoarseParam])))
	note := 12*cv[NoteInput] + coarse + knobs[FineParam] + 69

	fm := cvGain * dsp.QuarticBipolar(knobs[FMParam]) * fmRange * cv[FMInput] / fullScale

	return elements.PerformanceState{
		Note:       note,
		Modulation: fm,
		Gate:       knobs[PlayParam] >= gateThreshold || cv[GateInput] >= gateThreshold,
		Strength:   dsp.Clamp(1-cv[StrengthInput]/fullScale, 0, 1),
	}
}
