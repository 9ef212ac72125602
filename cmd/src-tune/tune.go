package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-elements/analysis"
	"github.com/cwbudde/algo-elements/dsp"
	"github.com/cwbudde/algo-elements/elements"
)

// chunkFrames mimics the per-block hand-off inside the voice.
const chunkFrames = elements.BlockSize

// knobDef is one searched kernel parameter.
type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

var defs = []knobDef{
	{Name: "kaiser_beta", Min: 2.0, Max: 14.0},
	{Name: "cutoff_scale", Min: 0.75, Max: 0.99},
}

type candidate struct {
	Beta   float64 `json:"kaiser_beta"`
	Cutoff float64 `json:"cutoff_scale"`
}

func fromNormalized(pos []float64) candidate {
	v := make([]float64, len(defs))
	for i, d := range defs {
		x := 0.5
		if i < len(pos) {
			x = math.Max(0, math.Min(1, pos[i]))
		}
		v[i] = d.Min + x*(d.Max-d.Min)
	}
	return candidate{Beta: v[0], Cutoff: v[1]}
}

type rateResult struct {
	HostRate int              `json:"host_rate"`
	Latency  int              `json:"latency_frames"`
	Metrics  analysis.Metrics `json:"metrics"`
}

type evaluation struct {
	Candidate candidate    `json:"candidate"`
	Score     float64      `json:"score"`
	Rates     []rateResult `json:"rates"`
}

// tuner scores kernels by sending a test tone from each host rate to the
// engine rate and back.
type tuner struct {
	zeroCrossings int
	rates         []int
	seconds       float64
	latencyWeight float64
	workers       int
}

func (t *tuner) evaluate(c candidate) (evaluation, error) {
	ev := evaluation{Candidate: c, Rates: make([]rateResult, len(t.rates))}
	var g errgroup.Group
	if t.workers > 0 {
		g.SetLimit(t.workers)
	}
	for i, rate := range t.rates {
		g.Go(func() error {
			r, err := t.roundTrip(c, rate)
			if err != nil {
				return fmt.Errorf("%d Hz: %w", rate, err)
			}
			ev.Rates[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ev, err
	}

	for _, r := range ev.Rates {
		ev.Score += r.Metrics.Score + t.latencyWeight*float64(r.Latency)/float64(r.HostRate)*1000
	}
	ev.Score /= float64(len(ev.Rates))
	return ev, nil
}

func (t *tuner) converter(c candidate) *dsp.SampleRateConverter {
	return dsp.NewSampleRateConverter(
		dsp.WithZeroCrossings(t.zeroCrossings),
		dsp.WithKaiserBeta(c.Beta),
		dsp.WithCutoffScale(c.Cutoff),
	)
}

func (t *tuner) roundTrip(c candidate, rate int) (rateResult, error) {
	n := int(t.seconds * float64(rate))
	if n < 4096 {
		return rateResult{}, fmt.Errorf("test signal too short: %d frames", n)
	}
	ref := testSignal(n, rate)

	down := t.converter(c)
	down.SetRates(float64(rate), elements.SampleRate)
	up := t.converter(c)
	up.SetRates(elements.SampleRate, float64(rate))

	in := make([]dsp.Frame, n)
	for i, s := range ref {
		in[i] = dsp.Frame{float32(s), float32(s)}
	}
	mid := stream(down, in, int(math.Ceil(float64(n)*elements.SampleRate/float64(rate)))+64)
	out := stream(up, mid, n+64)

	cand := make([]float64, len(out))
	for i, f := range out {
		cand[i] = float64(f[0])
	}
	lat := down.Latency() + up.Latency()
	m := analysis.Compare(ref, cand, rate, analysis.Options{MaxLag: 8, Skip: 4 * lat})
	return rateResult{HostRate: rate, Latency: lat, Metrics: m}, nil
}

// stream feeds in through c a chunk at a time, the way the voice does.
func stream(c *dsp.SampleRateConverter, in []dsp.Frame, capacity int) []dsp.Frame {
	out := make([]dsp.Frame, capacity)
	read, written := 0, 0
	for read < len(in) && written < len(out) {
		end := min(read+chunkFrames, len(in))
		consumed, produced := c.Process(in[read:end], out[written:])
		read += consumed
		written += produced
		if consumed == 0 && produced == 0 {
			break
		}
	}
	return out[:written]
}

// testSignal is a three tone chord kept below the engine passband at every
// supported host rate.
func testSignal(n, rate int) []float64 {
	freqs := []float64{220, 1870, 6300}
	x := make([]float64, n)
	for i := range x {
		t := float64(i) / float64(rate)
		for k, f := range freqs {
			x[i] += 0.25 * math.Sin(2*math.Pi*f*t+float64(k))
		}
	}
	return x
}

func parseRates(raw string) ([]int, error) {
	var rates []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := strconv.Atoi(part)
		if err != nil || r < 8000 || r > 16*elements.SampleRate {
			return nil, fmt.Errorf("invalid rate %q", part)
		}
		rates = append(rates, r)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no rates in %q", raw)
	}
	return rates, nil
}

func parseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}

type topCandidate struct {
	Eval      int       `json:"eval"`
	Score     float64   `json:"score"`
	Candidate candidate `json:"candidate"`
}

func updateTop(top []topCandidate, k int, eval int, ev evaluation) []topCandidate {
	top = append(top, topCandidate{Eval: eval, Score: ev.Score, Candidate: ev.Candidate})
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > k {
		top = top[:k]
	}
	return top
}
