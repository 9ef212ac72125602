package elements

import (
	"math"
	"testing"
)

func TestModelLabels(t *testing.T) {
	want := []string{"Original", "Non-Linear String", "Chords"}
	if NumModels != len(want) {
		t.Fatalf("NumModels = %d, want %d", NumModels, len(want))
	}
	for i, label := range want {
		m := ResonatorModel(i)
		if !m.Valid() || m.String() != label {
			t.Fatalf("model %d: valid=%v label=%q want %q", i, m.Valid(), m.String(), label)
		}
	}
	if ResonatorModel(3).Valid() || ResonatorModel(-1).Valid() {
		t.Fatalf("out-of-range models must be invalid")
	}
}

func TestNewPartDefaults(t *testing.T) {
	p := NewPart()
	if p.Model() != ModelModal {
		t.Fatalf("default model = %v", p.Model())
	}
	if p.Patch() != DefaultPatch() {
		t.Fatalf("default patch mismatch: %+v", p.Patch())
	}
	if p.space == nil {
		t.Fatalf("space stage failed to initialize")
	}
}

func TestSetModel(t *testing.T) {
	p := NewPart()
	if !p.SetModel(ModelChords) || p.Model() != ModelChords {
		t.Fatalf("SetModel(ModelChords) failed")
	}
	if p.SetModel(ResonatorModel(7)) {
		t.Fatalf("SetModel accepted an invalid model")
	}
	if p.Model() != ModelChords {
		t.Fatalf("invalid SetModel changed the model to %v", p.Model())
	}
}

func TestSilentWithoutExcitation(t *testing.T) {
	p := NewPart()
	main, aux := render(p, PerformanceState{Note: 60, Strength: 1}, 4000)
	for i := range main {
		if main[i] != 0 || aux[i] != 0 {
			t.Fatalf("expected silence, got %v/%v at %d", main[i], aux[i], i)
		}
	}
}

func TestStrikeRingsAndDecays(t *testing.T) {
	p := NewPart()
	patch := p.MutablePatch()
	patch.ResonatorDamping = 0.4

	main, aux := render(p, PerformanceState{Note: 69, Gate: true, Strength: 1}, SampleRate)
	requireFinite(t, "main", main)
	requireFinite(t, "aux", aux)

	early := rms(main[1000:8000])
	late := rms(main[24000:31000])
	if early < 1e-3 {
		t.Fatalf("strike too quiet: rms=%g", early)
	}
	if late >= early {
		t.Fatalf("expected decay: early=%g late=%g", early, late)
	}
	if rms(aux[1000:8000]) < 1e-4 {
		t.Fatalf("aux output silent")
	}
}

func TestPitchFollowsNote(t *testing.T) {
	for _, tc := range []struct {
		note float32
		want float64
	}{
		{69, 440},
		{57, 220},
	} {
		p := NewPart()
		p.MutablePatch().ResonatorDamping = 0.2
		main, _ := render(p, PerformanceState{Note: tc.note, Gate: true, Strength: 1}, 16000)
		got := peakFrequency(main[4000:12000], tc.want*0.8, tc.want*1.2)
		if math.Abs(got-tc.want) > 0.02*tc.want {
			t.Fatalf("note %.0f: peak at %.1f Hz, want %.1f", tc.note, got, tc.want)
		}
	}
}

func TestModulationShiftsPitch(t *testing.T) {
	p := NewPart()
	p.MutablePatch().ResonatorDamping = 0.2
	main, _ := render(p, PerformanceState{Note: 57, Modulation: 12, Gate: true, Strength: 1}, 16000)
	if got := peakFrequency(main[4000:12000], 350, 530); math.Abs(got-440) > 9 {
		t.Fatalf("note+modulation peak at %.1f Hz, want 440", got)
	}
}

func TestAllModelsStayFiniteAtExtremes(t *testing.T) {
	for m := 0; m < NumModels; m++ {
		p := NewPart()
		p.SetModel(ResonatorModel(m))
		p.SetPatch(Patch{
			ExciterEnvelopeShape: 0.6,
			ExciterBowLevel:      0.9995,
			ExciterBowTimbre:     0.9995,
			ExciterBlowLevel:     0.9995,
			ExciterBlowMeta:      0.9995,
			ExciterBlowTimbre:    0.9995,
			ExciterStrikeLevel:   0.9995,
			ExciterStrikeMeta:    0.9995,
			ExciterStrikeTimbre:  0.9995,
			ResonatorGeometry:    0.9995,
			ResonatorBrightness:  0.9995,
			ResonatorPosition:    0.9995,
			Space:                2,
		})
		main, aux := render(p, PerformanceState{Note: 30, Gate: true, Strength: 1}, SampleRate)
		requireFinite(t, ResonatorModel(m).String()+" main", main)
		requireFinite(t, ResonatorModel(m).String()+" aux", aux)
		for i := range main {
			if math.Abs(float64(main[i])) > 1 || math.Abs(float64(aux[i])) > 1 {
				t.Fatalf("%v: sample %d exceeds unit range: %v/%v", ResonatorModel(m), i, main[i], aux[i])
			}
		}
		if rms(main) == 0 {
			t.Fatalf("%v produced silence", ResonatorModel(m))
		}
	}
}

func TestExternalStrikeInputExcites(t *testing.T) {
	p := NewPart()
	strike := make([]float32, BlockSize)
	strike[0] = 1
	main := make([]float32, BlockSize)
	aux := make([]float32, BlockSize)
	ps := PerformanceState{Note: 60, Strength: 1}
	p.Process(ps, nil, strike, main, aux)

	m, _ := render(p, ps, 4000)
	if rms(m) < 1e-5 {
		t.Fatalf("strike input did not excite the resonator")
	}
}

func TestSeedMakesNoiseReproducible(t *testing.T) {
	renderBlown := func(seed []uint32) []float32 {
		p := NewPart()
		p.Seed(seed)
		patch := p.MutablePatch()
		patch.ExciterStrikeLevel = 0
		patch.ExciterBlowLevel = 1
		patch.ExciterEnvelopeShape = 0.5
		main, _ := render(p, PerformanceState{Note: 60, Gate: true, Strength: 1}, 4000)
		return main
	}
	a := renderBlown([]uint32{1, 2, 3})
	b := renderBlown([]uint32{1, 2, 3})
	c := renderBlown([]uint32{9, 9, 9})
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced identical noise")
	}
}

func TestLevelsTrackActivity(t *testing.T) {
	p := NewPart()
	main := make([]float32, BlockSize)
	aux := make([]float32, BlockSize)
	exc, res := p.Process(PerformanceState{Note: 60, Gate: true, Strength: 1}, nil, nil, main, aux)
	if exc <= 0 {
		t.Fatalf("exciter level %v after strike", exc)
	}
	for i := 0; i < 10; i++ {
		exc, res = p.Process(PerformanceState{Note: 60, Gate: true, Strength: 1}, nil, nil, main, aux)
	}
	if res <= 0 || res > 1 || exc > 1 {
		t.Fatalf("levels out of range: exciter=%v resonator=%v", exc, res)
	}

	p.Reset()
	exc, res = p.Process(PerformanceState{Note: 60}, nil, nil, main, aux)
	if exc != 0 || res != 0 {
		t.Fatalf("levels after Reset: exciter=%v resonator=%v", exc, res)
	}
}

func TestChordIndexCoversTable(t *testing.T) {
	if chordIndex(0) != 0 {
		t.Fatalf("chordIndex(0) = %d", chordIndex(0))
	}
	if got := chordIndex(1); got != len(chordTable)-1 {
		t.Fatalf("chordIndex(1) = %d", got)
	}
	if got := chordIndex(float32(math.NaN())); got != 0 {
		t.Fatalf("chordIndex(NaN) = %d", got)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	for _, amount := range []float32{0, 1.5} {
		p := NewPart()
		p.MutablePatch().Space = amount
		main := make([]float32, BlockSize)
		aux := make([]float32, BlockSize)
		ps := PerformanceState{Note: 60, Gate: true, Strength: 1}
		allocs := testing.AllocsPerRun(100, func() {
			p.Process(ps, nil, nil, main, aux)
		})
		if allocs != 0 {
			t.Fatalf("space %.1f: Process allocated %.1f times per call", amount, allocs)
		}
	}
}
