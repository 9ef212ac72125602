// Package analysis measures how far a processed signal is from a reference.
// It backs the converter tests and the kernel search in cmd/src-tune.
package analysis

import (
	"math"
)

// Score weights.
const (
	WeightRelative = 0.5
	WeightEnvelope = 0.2
	WeightSpectral = 0.3
)

// Metrics contains distance and similarity measurements between two signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	RelativeError  float64 `json:"relative_error"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	RelativeNorm float64 `json:"relative_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	Dominant     string  `json:"dominant"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Options tunes Compare.
type Options struct {
	// MaxLag bounds the alignment search in frames. Zero disables alignment.
	MaxLag int
	// Skip drops this many frames at both ends before measuring, to keep
	// filter start-up and tail transients out of the result.
	Skip int
}

// Compare returns distance metrics and a combined score in [0,1], where 0
// means identical. Levels are compared as-is; a gain error counts.
func Compare(reference []float64, candidate []float64, sampleRate int, opts Options) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1.0,
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return m
	}

	maxLag := min(opts.MaxLag, len(reference)-1, len(candidate)-1)
	lag := 0
	if maxLag > 0 {
		lag = estimateLag(reference, candidate, maxLag)
	}
	m.LagSamples = lag

	refA, candA := alignByLag(reference, candidate, lag)
	n := min(len(refA), len(candA))
	skip := max(opts.Skip, 0)
	if n-2*skip < 256 {
		return m
	}
	refA = refA[skip : n-skip]
	candA = candA[skip : n-skip]
	m.AlignedFrames = len(refA)

	m.TimeRMSE = RMSE(refA, candA)
	if r := RMS(refA); r > 1e-12 {
		m.RelativeError = m.TimeRMSE / r
	}

	refEnv := rmsEnvelope(refA, 256, 128)
	candEnv := rmsEnvelope(candA, 256, 128)
	envN := min(len(refEnv), len(candEnv))
	if envN > 0 {
		envDiff := make([]float64, envN)
		for i := 0; i < envN; i++ {
			envDiff[i] = linToDB(refEnv[i]) - linToDB(candEnv[i])
		}
		m.EnvelopeRMSEDB = RMS(envDiff)
	}

	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	m.RelativeNorm = clamp01(m.RelativeError / 0.1)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 6.0)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 20.0)
	rel := WeightRelative * m.RelativeNorm
	env := WeightEnvelope * m.EnvelopeNorm
	spec := WeightSpectral * m.SpectralNorm
	switch {
	case rel >= env && rel >= spec:
		m.Dominant = "relative"
	case env >= spec:
		m.Dominant = "envelope"
	default:
		m.Dominant = "spectral"
	}
	m.Score = clamp01(rel + env + spec)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// RMS returns the root-mean-square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// RMSE returns the root-mean-square difference over the common length.
func RMSE(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// estimateLag returns the shift of cand relative to ref maximizing their
// correlation: positive when ref[lag:] lines up with cand.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	step := 1
	if len(ref) > 200000 || len(cand) > 200000 {
		step = 4
	}
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		s := dotAtLag(ref, cand, lag, step)
		if s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a []float64, b []float64, lag int, step int) float64 {
	ai, bi := 0, 0
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := min(len(a)-ai, len(b)-bi)
	var sum float64
	for i := 0; i < n; i += step {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = RMS(x[start : start+frame])
	}
	return out
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
