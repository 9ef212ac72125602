package dsp

import (
	"math"
	"testing"
)

func TestBiquadLowpassPassesDCAndAttenuatesNyquist(t *testing.T) {
	b := NewLowpass(1000, 32000, 0.707)
	var y float32
	for i := 0; i < 4000; i++ {
		y = b.Process(1)
	}
	if math.Abs(float64(y-1)) > 1e-3 {
		t.Fatalf("DC gain = %v", y)
	}

	b.Reset()
	var peak float32
	for i := 0; i < 4000; i++ {
		x := float32(1)
		if i%2 == 1 {
			x = -1
		}
		y = b.Process(x)
		if i > 2000 && float32(math.Abs(float64(y))) > peak {
			peak = float32(math.Abs(float64(y)))
		}
	}
	if peak > 0.01 {
		t.Fatalf("Nyquist leaked through: %v", peak)
	}
}

func TestBiquadBandpassPeaksAtCenter(t *testing.T) {
	b := &Biquad{}
	b.SetBandpass(1000, 32000, 4)
	gain := func(freq float64) float64 {
		b.Reset()
		peak := 0.0
		for i := 0; i < 8000; i++ {
			y := b.Process(float32(math.Sin(2 * math.Pi * freq * float64(i) / 32000)))
			if i > 4000 {
				peak = math.Max(peak, math.Abs(float64(y)))
			}
		}
		return peak
	}
	center := gain(1000)
	if math.Abs(center-1) > 0.05 {
		t.Fatalf("center gain = %v", center)
	}
	if off := gain(4000); off > 0.3*center {
		t.Fatalf("off-center gain %v too close to %v", off, center)
	}
}

func TestOnePoleConverges(t *testing.T) {
	var o OnePole
	o.SetCutoff(100, 32000)
	for i := 0; i < 32000; i++ {
		o.Process(0.5)
	}
	if math.Abs(float64(o.Value()-0.5)) > 1e-4 {
		t.Fatalf("one-pole settled at %v", o.Value())
	}
	o.SetCutoff(20000, 32000)
	if o.Process(0.25) != 0.25 {
		t.Fatalf("cutoff above Nyquist should pass through")
	}
}

func TestDelayLineReads(t *testing.T) {
	d := NewDelayLine(10)
	for i := 1; i <= 12; i++ {
		d.Write(float32(i))
	}
	if got := d.Read(1); got != 12 {
		t.Fatalf("Read(1) = %v", got)
	}
	if got := d.Read(3); got != 10 {
		t.Fatalf("Read(3) = %v", got)
	}
	if got := d.ReadFractional(2.5); got != 10.5 {
		t.Fatalf("ReadFractional(2.5) = %v", got)
	}
	// A ramp is reproduced exactly by cubic interpolation.
	if got := d.ReadCubic(4.25); math.Abs(float64(got-8.75)) > 1e-5 {
		t.Fatalf("ReadCubic(4.25) = %v", got)
	}
	d.Reset()
	if d.Read(1) != 0 {
		t.Fatalf("Reset left data behind")
	}
}
