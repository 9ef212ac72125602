// Package irsynth synthesizes the stereo impulse response behind the space
// control: a bank of decaying plate modes, a cluster of early reflections
// and a diffuse noise tail.
package irsynth

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrEmptyIR is returned when spectral normalization gets nothing to work on.
var ErrEmptyIR = errors.New("irsynth: empty impulse response")

// Config controls synthetic IR generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Modes      int
	Seed       int64

	Brightness     float64
	PlateRatio     float64 // Lx/Ly of the virtual plate
	StiffnessRatio float64 // Dx/Dy orthotropic stiffness
	StereoWidth    float64
	EarlyCount     int
	LateLevel      float64

	LowDecayS  float64
	HighDecayS float64
	FadeOutS   float64

	// SpectralPeak is the largest magnitude any frequency bin of either
	// channel may reach after normalization.
	SpectralPeak float64
}

// DefaultConfig returns the space IR used by the engine at 32 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate:     32000,
		DurationS:      0.3,
		Modes:          160,
		Seed:           1,
		Brightness:     0.8,
		PlateRatio:     1.4,
		StiffnessRatio: 1.0,
		StereoWidth:    0.7,
		EarlyCount:     24,
		LateLevel:      0.05,
		LowDecayS:      0.9,
		HighDecayS:     0.25,
		FadeOutS:       0.03,
		SpectralPeak:   1.0,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.PlateRatio <= 0 || c.StiffnessRatio <= 0 {
		return fmt.Errorf("plate ratio and stiffness ratio must be > 0")
	}
	if c.StereoWidth < 0 {
		return fmt.Errorf("stereo width must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.FadeOutS < 0 {
		return fmt.Errorf("fade-out must be >= 0")
	}
	if c.SpectralPeak <= 0 {
		return fmt.Errorf("spectral peak must be > 0")
	}
	return nil
}

// GenerateStereo synthesizes a stereo IR according to cfg and normalizes it
// so neither channel's magnitude response exceeds cfg.SpectralPeak.
func GenerateStereo(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := max(int(math.Round(cfg.DurationS*float64(cfg.SampleRate))), 1)
	left := make([]float64, n)
	right := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed))

	maxF := math.Max(0.45*float64(cfg.SampleRate), 500.0)
	minF := 60.0

	// Plate modes thicken toward the top like a real plate's density of
	// states. RNG only touches amplitude jitter, phase and pan.
	for _, f := range plateEigenfreqs(minF, maxF, cfg.Modes, cfg.PlateRatio, cfg.StiffnessRatio) {
		brightnessExp := 0.4 + 0.9*(1.0/cfg.Brightness)
		amp := 0.6 / math.Pow(1.0+f/400.0, brightnessExp)
		amp *= 0.6 + 0.8*rng.Float64()

		tau := lerp(cfg.LowDecayS, cfg.HighDecayS, math.Sqrt(f/maxF))
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))

		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		fSkew := 0.006 * pan
		phi := rng.Float64() * 2.0 * math.Pi
		addModeRec(left, amp*(1.0-0.45*pan), f*(1.0-fSkew), phi, decay, cfg.SampleRate)
		addModeRec(right, amp*(1.0+0.45*pan), f*(1.0+fSkew), phi+0.5*pan, decay, cfg.SampleRate)
	}

	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.002 + 0.045*rng.Float64()
		idx := int(t * float64(cfg.SampleRate))
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.15 + 0.35*rng.Float64()) * math.Exp(-t*20.0)
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		left[idx] += amp * (1.0 - 0.5*pan)
		right[idx] += amp * (1.0 + 0.5*pan)
	}

	if cfg.LateLevel > 0 {
		lpL, lpR := 0.0, 0.0
		for i := 0; i < n; i++ {
			t := float64(i) / float64(cfg.SampleRate)
			env := math.Exp(-t / (0.5 * cfg.LowDecayS))
			lpL = 0.9*lpL + 0.1*rng.NormFloat64()
			lpR = 0.9*lpR + 0.1*rng.NormFloat64()
			left[i] += cfg.LateLevel * env * lpL
			right[i] += cfg.LateLevel * env * lpR
		}
	}

	highpassDC(left, 0.995)
	highpassDC(right, 0.995)
	applyFadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	applyFadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak, err := SpectralPeak(left, right)
	if err != nil {
		return nil, nil, err
	}
	s := cfg.SpectralPeak / math.Max(peak, 1e-12)
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := 0; i < n; i++ {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

// SpectralPeak returns the largest bin magnitude of the zero-padded spectra
// of the given channels. Scaling an IR by 1/SpectralPeak bounds its gain at
// every frequency by one, which keeps recirculation through it stable.
func SpectralPeak(channels ...[]float64) (float64, error) {
	longest := 0
	for _, ch := range channels {
		longest = max(longest, len(ch))
	}
	if longest == 0 {
		return 0, ErrEmptyIR
	}

	// Pad well past the IR so the bins sample the response densely.
	size := 1
	for size < 4*longest {
		size <<= 1
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return 0, fmt.Errorf("irsynth: fft plan: %w", err)
	}

	buf := make([]float64, size)
	spec := make([]complex128, size/2+1)
	peak := 0.0
	for _, ch := range channels {
		clear(buf)
		copy(buf, ch)
		plan.Forward(spec, buf)
		for _, c := range spec {
			peak = math.Max(peak, cmplx.Abs(c))
		}
	}
	return peak, nil
}

// plateEigenfreqs computes eigenfrequencies for a simply-supported orthotropic
// rectangular plate and returns up to maxModes frequencies in [f11, maxF].
// R = Lx/Ly (plate ratio), S = Dx/Dy (stiffness ratio).
func plateEigenfreqs(f11, maxF float64, maxModes int, R, S float64) []float64 {
	sqrtS := math.Sqrt(S)
	R2 := R * R
	R4 := R2 * R2
	denom := math.Sqrt(S + 2*sqrtS*R2 + R4)

	mMax := int(math.Sqrt(maxF/f11*denom/sqrtS)) + 2
	nMax := int(math.Sqrt(maxF/f11*denom)) + 2

	freqs := make([]float64, 0, mMax*nMax)
	for m := 1; m <= mMax; m++ {
		m2 := float64(m * m)
		m4 := m2 * m2
		for n := 1; n <= nMax; n++ {
			n2 := float64(n * n)
			n4 := n2 * n2
			f := f11 * math.Sqrt(S*m4+2*sqrtS*m2*n2*R2+n4*R4) / denom
			if f > maxF {
				break
			}
			freqs = append(freqs, f)
		}
	}

	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		// Thin evenly so the whole band stays covered.
		thinned := make([]float64, maxModes)
		for i := range thinned {
			thinned[i] = freqs[i*len(freqs)/maxModes]
		}
		freqs = thinned
	}
	return freqs
}

func addModeRec(out []float64, amp float64, freq float64, phase float64, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env *= decay
	}
}

func highpassDC(x []float64, r float64) {
	prevIn := 0.0
	prevOut := 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

// applyFadeOut applies a cosine fade-out to the last fadeS seconds of buf.
func applyFadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := min(int(math.Round(fadeS*float64(sampleRate))), len(buf))
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}
