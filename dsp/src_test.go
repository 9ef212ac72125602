package dsp

import (
	"math"
	"testing"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

func sineFrames(n int, freq, sampleRate float64) []Frame {
	out := make([]Frame, n)
	for i := range out {
		ph := 2 * math.Pi * freq * float64(i) / sampleRate
		out[i] = Frame{float32(0.5 * math.Sin(ph)), float32(0.5 * math.Cos(ph))}
	}
	return out
}

// convertAll streams in through c in small uneven chunks.
func convertAll(c *SampleRateConverter, in []Frame) []Frame {
	var out []Frame
	buf := make([]Frame, 37)
	for {
		chunk := in[:min(len(in), 23)]
		consumed, produced := c.Process(chunk, buf)
		out = append(out, buf[:produced]...)
		in = in[consumed:]
		if consumed == 0 && produced == 0 {
			return out
		}
	}
}

func TestSampleRateConverterRoundTrip(t *testing.T) {
	const engineRate = 32000.0
	for _, host := range []float64{22050, 44100, 48000, 96000, 192000} {
		in := sineFrames(int(host/4), 1000, host)

		down := NewSampleRateConverter()
		down.SetRates(host, engineRate)
		up := NewSampleRateConverter()
		up.SetRates(engineRate, host)

		mid := convertAll(down, in)
		out := convertAll(up, mid)

		skip := int(host / 100)
		if len(out) < len(in)/2+skip {
			t.Fatalf("host %.0f: only %d frames out of %d", host, len(out), len(in))
		}
		var errSum, refSum float64
		n := 0
		for i := skip; i < len(out)-skip; i++ {
			for ch := 0; ch < Channels; ch++ {
				d := float64(out[i][ch] - in[i][ch])
				errSum += d * d
				refSum += float64(in[i][ch]) * float64(in[i][ch])
			}
			n++
		}
		rel := math.Sqrt(errSum / refSum)
		if rel > 0.01 {
			t.Fatalf("host %.0f: round-trip relative error %.5f over %d frames", host, rel, n)
		}
	}
}

func TestSampleRateConverterUnityRatioIsTransparent(t *testing.T) {
	c := NewSampleRateConverter()
	in := sineFrames(2000, 440, 32000)
	out := convertAll(c, in)
	for i := 100; i < len(out)-100; i++ {
		if d := math.Abs(float64(out[i][0] - in[i][0])); d > 2e-3 {
			t.Fatalf("frame %d differs by %g", i, d)
		}
	}
}

func TestSampleRateConverterConsumesOnlyWhatItNeeds(t *testing.T) {
	c := NewSampleRateConverter()
	c.SetRatio(0.5)
	in := make([]Frame, 1000)
	out := make([]Frame, 4)
	consumed, produced := c.Process(in, out)
	if produced != 4 {
		t.Fatalf("produced %d, want 4", produced)
	}
	// Four outputs at step 2 need positions up to 6 plus the kernel reach.
	if limit := 7 + c.Latency() + 1; consumed > limit {
		t.Fatalf("consumed %d frames, want at most %d", consumed, limit)
	}
	if consumed == len(in) {
		t.Fatalf("converter swallowed the whole input")
	}
}

func TestSampleRateConverterOutputRateMatchesRatio(t *testing.T) {
	c := NewSampleRateConverter()
	c.SetRates(48000, 32000)
	out := convertAll(c, make([]Frame, 48000))
	want := 32000 - c.Latency()
	if d := len(out) - want; d < -c.Latency() || d > c.Latency() {
		t.Fatalf("got %d frames, want about %d", len(out), want)
	}
}

func TestSampleRateConverterSetRatioGuards(t *testing.T) {
	c := NewSampleRateConverter()
	c.SetRatio(2)
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		c.SetRatio(bad)
		if c.Ratio() != 2 {
			t.Fatalf("SetRatio(%v) changed ratio to %v", bad, c.Ratio())
		}
	}
	c.SetRatio(1000)
	if c.Ratio() != MaxRatio {
		t.Fatalf("ratio not clamped: %v", c.Ratio())
	}
	c.SetRatio(1e-6)
	if c.Ratio() != 1/MaxRatio {
		t.Fatalf("ratio not clamped: %v", c.Ratio())
	}
}

func TestSampleRateConverterExtremeRatiosStayFinite(t *testing.T) {
	for _, ratio := range []float64{1 / MaxRatio, MaxRatio} {
		c := NewSampleRateConverter(WithQuality(dspresample.QualityFast))
		c.SetRatio(ratio)
		out := convertAll(c, sineFrames(4096, 100, 32000))
		if len(out) == 0 {
			t.Fatalf("ratio %v produced nothing", ratio)
		}
		for i, f := range out {
			if math.IsNaN(float64(f[0])) || math.Abs(float64(f[0])) > 1 {
				t.Fatalf("ratio %v: bad frame %d: %v", ratio, i, f)
			}
		}
	}
}

func TestSampleRateConverterReset(t *testing.T) {
	c := NewSampleRateConverter()
	convertAll(c, sineFrames(500, 440, 32000))
	c.Reset()
	out := make([]Frame, 8)
	_, produced := c.Process(make([]Frame, 64), out)
	for i := 0; i < produced; i++ {
		if out[i] != (Frame{}) {
			t.Fatalf("history survived Reset: frame %d = %v", i, out[i])
		}
	}
}

func TestSampleRateConverterProcessDoesNotAllocate(t *testing.T) {
	c := NewSampleRateConverter()
	c.SetRates(44100, 32000)
	in := sineFrames(64, 440, 44100)
	out := make([]Frame, 16)
	allocs := testing.AllocsPerRun(200, func() {
		c.Process(in, out)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %.1f times per run", allocs)
	}
}
