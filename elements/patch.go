package elements

import "fmt"

const (
	// SampleRate is the fixed internal rate of the engine.
	SampleRate = 32000
	// BlockSize is the number of frames rendered per Process call.
	BlockSize = 16
)

// Patch is the full set of timbral controls, all in normalized units.
// Space runs to 2; everything else lives in [0, 1).
type Patch struct {
	ExciterEnvelopeShape float32

	ExciterBowLevel  float32
	ExciterBowTimbre float32

	ExciterBlowLevel  float32
	ExciterBlowMeta   float32
	ExciterBlowTimbre float32

	ExciterStrikeLevel  float32
	ExciterStrikeMeta   float32
	ExciterStrikeTimbre float32

	ResonatorGeometry   float32
	ResonatorBrightness float32
	ResonatorDamping    float32
	ResonatorPosition   float32

	Space float32
}

// DefaultPatch matches the panel at rest.
func DefaultPatch() Patch {
	return Patch{
		ExciterEnvelopeShape: 1.0,
		ExciterBowTimbre:     0.5,
		ExciterBlowMeta:      0.5,
		ExciterBlowTimbre:    0.5,
		ExciterStrikeLevel:   0.5,
		ExciterStrikeMeta:    0.5,
		ExciterStrikeTimbre:  0.5,
		ResonatorGeometry:    0.5,
		ResonatorBrightness:  0.5,
		ResonatorDamping:     0.5,
		ResonatorPosition:    0.5,
	}
}

// PerformanceState is the per-block playing gesture. Note is a fractional
// MIDI note number and Modulation is added to it in semitones. Strength
// scales excitation intensity in [0, 1].
type PerformanceState struct {
	Note       float32
	Modulation float32
	Gate       bool
	Strength   float32
}

// ResonatorModel selects the resonator topology.
type ResonatorModel int

const (
	ModelModal ResonatorModel = iota
	ModelString
	ModelChords

	numModels
)

// NumModels is the count of valid resonator models.
const NumModels = int(numModels)

// Valid reports whether m names a known model.
func (m ResonatorModel) Valid() bool {
	return m >= 0 && m < numModels
}

// String returns the display label of the model.
func (m ResonatorModel) String() string {
	switch m {
	case ModelModal:
		return "Original"
	case ModelString:
		return "Non-Linear String"
	case ModelChords:
		return "Chords"
	default:
		return fmt.Sprintf("ResonatorModel(%d)", int(m))
	}
}

// Models lists every valid model in menu order.
func Models() []ResonatorModel {
	out := make([]ResonatorModel, 0, NumModels)
	for m := ResonatorModel(0); m < numModels; m++ {
		out = append(out, m)
	}
	return out
}
