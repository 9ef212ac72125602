package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrShortSignal is returned when a spectrum is requested for too few frames.
var ErrShortSignal = errors.New("analysis: signal too short")

// MagnitudeSpectrum returns |X[k]| of the Hann-windowed signal, zero padded
// to the next power of two, together with that FFT size.
func MagnitudeSpectrum(x []float64) ([]float64, int, error) {
	if len(x) < 16 {
		return nil, 0, ErrShortSignal
	}
	size := 1
	for size < len(x) {
		size <<= 1
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, 0, err
	}

	buf := make([]float64, size)
	denom := float64(len(x) - 1)
	for i, v := range x {
		buf[i] = v * (0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom))
	}
	spec := make([]complex128, size/2+1)
	plan.Forward(spec, buf)

	mag := make([]float64, len(spec))
	for k, c := range spec {
		mag[k] = cmplx.Abs(c)
	}
	return mag, size, nil
}

// PeakFrequency returns the strongest frequency in [loHz, hiHz], refined by
// parabolic interpolation around the peak bin.
func PeakFrequency(x []float64, sampleRate int, loHz, hiHz float64) (float64, error) {
	mag, size, err := MagnitudeSpectrum(x)
	if err != nil {
		return 0, err
	}
	binHz := float64(sampleRate) / float64(size)
	lo := max(int(math.Floor(loHz/binHz)), 1)
	hi := min(int(math.Ceil(hiHz/binHz)), len(mag)-2)
	if hi < lo {
		return 0, ErrShortSignal
	}

	best := lo
	for k := lo + 1; k <= hi; k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	a, b, c := linToDB(mag[best-1]), linToDB(mag[best]), linToDB(mag[best+1])
	offset := 0.0
	if den := a - 2*b + c; den != 0 {
		offset = 0.5 * (a - c) / den
	}
	return (float64(best) + offset) * binHz, nil
}

// spectralRMSEDB compares the log magnitude spectra of the first 4096 frames.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b), 4096)
	if n < 512 {
		return 0
	}
	ma, _, errA := MagnitudeSpectrum(a[:n])
	mb, _, errB := MagnitudeSpectrum(b[:n])
	if errA != nil || errB != nil {
		return 0
	}

	// Ignore bins more than 80 dB under the reference peak so numerical
	// noise floors do not dominate.
	peak := 0.0
	for _, v := range ma {
		peak = math.Max(peak, v)
	}
	floor := peak * 1e-4

	var sum float64
	count := 0
	for k := 1; k < len(ma)-1; k++ {
		if ma[k] < floor && mb[k] < floor {
			continue
		}
		d := linToDB(math.Max(ma[k], floor)) - linToDB(math.Max(mb[k], floor))
		sum += d * d
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
