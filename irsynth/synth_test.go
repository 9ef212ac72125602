package irsynth

import (
	"math"
	"testing"
)

func TestGenerateStereoBasic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationS = 0.25
	cfg.Modes = 48
	cfg.Seed = 42

	l, r, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("GenerateStereo: %v", err)
	}
	if len(l) != int(0.25*32000) || len(r) != len(l) {
		t.Fatalf("unexpected output lengths: L=%d R=%d", len(l), len(r))
	}

	energy := 0.0
	for i := range l {
		if math.IsNaN(float64(l[i])) || math.IsInf(float64(l[i]), 0) || math.IsNaN(float64(r[i])) || math.IsInf(float64(r[i]), 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
		energy += float64(l[i]*l[i] + r[i]*r[i])
	}
	if energy <= 1e-8 {
		t.Fatalf("expected non-zero energy")
	}
}

func TestGenerateStereoSpectralPeakIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationS = 0.1
	cfg.SpectralPeak = 0.8

	l, r, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("GenerateStereo: %v", err)
	}
	peak, err := SpectralPeak(toFloat64(l), toFloat64(r))
	if err != nil {
		t.Fatalf("SpectralPeak: %v", err)
	}
	if math.Abs(peak-0.8) > 1e-3 {
		t.Fatalf("spectral peak = %.6f, want 0.8", peak)
	}
}

func TestGenerateStereoDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationS = 0.1
	cfg.Modes = 24
	cfg.Seed = 99

	l1, r1, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("first GenerateStereo: %v", err)
	}
	l2, r2, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("second GenerateStereo: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] || r1[i] != r2[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}
}

func TestSpectralPeakOfImpulse(t *testing.T) {
	peak, err := SpectralPeak([]float64{0.5, 0, 0, 0})
	if err != nil {
		t.Fatalf("SpectralPeak: %v", err)
	}
	if math.Abs(peak-0.5) > 1e-9 {
		t.Fatalf("impulse spectral peak = %v, want 0.5", peak)
	}
	if _, err := SpectralPeak(); err != ErrEmptyIR {
		t.Fatalf("expected ErrEmptyIR, got %v", err)
	}
}

func TestPlateEigenfreqsSortedAndBounded(t *testing.T) {
	freqs := plateEigenfreqs(60, 8000, 40, 1.4, 1.0)
	if len(freqs) != 40 {
		t.Fatalf("got %d modes, want 40", len(freqs))
	}
	if math.Abs(freqs[0]-60) > 1e-9 {
		t.Fatalf("lowest mode %.3f, want f11", freqs[0])
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] < freqs[i-1] || freqs[i] > 8000 {
			t.Fatalf("mode %d out of order or range: %.3f", i, freqs[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.SpectralPeak = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero spectral peak")
	}
	cfg = DefaultConfig()
	cfg.PlateRatio = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative plate ratio")
	}
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
