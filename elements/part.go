// Package elements is the modal voice engine: an exciter section (bow, blow
// and strike) driving one of several resonators, followed by a stereo space.
// It runs at a fixed SampleRate and renders BlockSize frames per call.
package elements

import "github.com/cwbudde/algo-elements/dsp"

type resonator interface {
	configure(p *Patch, f0 float32)
	process(x float32) (main, aux float32)
	reset()
}

const (
	minNote = 0.0
	maxNote = 132.0

	// levelRelease is the per-block decay of the level meters.
	levelRelease = 0.95
)

// Part is one voice of the engine. It is not safe for concurrent use.
type Part struct {
	patch    Patch
	model    ResonatorModel
	prevGate bool

	env    envelope
	exc    exciter
	modal  modalResonator
	str    stringResonator
	chords chordResonator
	space  *space

	feedback       float32
	exciterLevel   float32
	resonatorLevel float32
}

// NewPart returns a fully initialized part with the default patch and the
// modal model selected. If the space IR cannot be built the part runs dry.
func NewPart() *Part {
	p := &Part{
		patch:  DefaultPatch(),
		model:  ModelModal,
		exc:    newExciter(),
		str:    newStringResonator(),
		chords: newChordResonator(),
	}
	if s, err := newSpace(); err == nil {
		p.space = s
	}
	return p
}

// Seed reseeds the noise sources from a short identifier.
func (p *Part) Seed(seed []uint32) {
	var s int64 = 1
	for _, v := range seed {
		s = s*1000003 ^ int64(v)
	}
	p.exc.rng.Seed(s)
}

// Patch returns a copy of the current patch.
func (p *Part) Patch() Patch { return p.patch }

// MutablePatch exposes the patch for in-place edits between blocks.
func (p *Part) MutablePatch() *Patch { return &p.patch }

// SetPatch replaces the whole patch.
func (p *Part) SetPatch(patch Patch) { p.patch = patch }

// Model returns the active resonator model.
func (p *Part) Model() ResonatorModel { return p.model }

// SetModel switches the resonator. Unknown models are ignored and reported
// as false. The newly selected resonator starts from silence.
func (p *Part) SetModel(m ResonatorModel) bool {
	if !m.Valid() {
		return false
	}
	if m != p.model {
		p.model = m
		p.resonator().reset()
	}
	return true
}

// Reset silences every stage without touching patch or model.
func (p *Part) Reset() {
	p.env.reset()
	p.exc.reset()
	p.modal.reset()
	p.str.reset()
	p.chords.reset()
	if p.space != nil {
		p.space.reset()
	}
	p.prevGate = false
	p.feedback = 0
	p.exciterLevel = 0
	p.resonatorLevel = 0
}

func (p *Part) resonator() resonator {
	switch p.model {
	case ModelString:
		return &p.str
	case ModelChords:
		return &p.chords
	default:
		return &p.modal
	}
}

// Process renders len(main) frames. blow and strike are external exciter
// signals and may be shorter than main, in which case the rest reads as
// silence. It returns the exciter and resonator meter levels in [0, 1].
func (p *Part) Process(ps PerformanceState, blow, strike, main, aux []float32) (exciterLevel, resonatorLevel float32) {
	n := min(len(main), len(aux))
	for off := 0; off < n; off += BlockSize {
		end := min(off+BlockSize, n)
		p.processBlock(ps, blow, strike, off, main[off:end], aux[off:end])
	}
	return p.exciterLevel, p.resonatorLevel
}

func (p *Part) processBlock(ps PerformanceState, blow, strike []float32, off int, main, aux []float32) {
	patch := &p.patch
	res := p.resonator()

	note := dsp.Clamp(ps.Note+ps.Modulation, minNote, maxNote)
	res.configure(patch, noteToFreq(note))
	p.env.configure(patch.ExciterEnvelopeShape)
	p.exc.configure(patch, ps.Strength)

	p.env.gate(ps.Gate, p.prevGate)
	if ps.Gate && !p.prevGate {
		p.exc.trigger(patch.ExciterStrikeMeta)
	}
	p.prevGate = ps.Gate

	var excPeak, resPeak float32
	for i := range main {
		var b, s float32
		if j := off + i; j < len(blow) {
			b = blow[j]
		}
		if j := off + i; j < len(strike) {
			s = strike[j]
		}

		e := p.env.process()
		x := p.exc.process(b, s, e, p.feedback)
		m, a := res.process(x)
		if !isFinite(m) || !isFinite(a) {
			res.reset()
			m, a = 0, 0
		}
		p.feedback = m
		main[i] = m
		aux[i] = a
		excPeak = max(excPeak, absf(x))
	}

	if p.space != nil {
		p.space.process(patch.Space, main, aux)
	}
	for i := range main {
		main[i] = softLimit(main[i])
		aux[i] = softLimit(aux[i])
		resPeak = max(resPeak, absf(main[i]), absf(aux[i]))
	}

	p.exciterLevel = max(min(excPeak, 1), p.exciterLevel*levelRelease)
	p.resonatorLevel = max(resPeak, p.resonatorLevel*levelRelease)
}
