package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/mayfly"
)

type runReport struct {
	ZeroCrossings int            `json:"zero_crossings"`
	Rates         []int          `json:"rates"`
	DurationSec   float64        `json:"elapsed_seconds"`
	Evaluations   int            `json:"evaluations"`
	MayflyVariant string         `json:"mayfly_variant"`
	Baseline      evaluation     `json:"baseline"`
	Best          evaluation     `json:"best"`
	TopCandidates []topCandidate `json:"top_candidates,omitempty"`
}

func main() {
	zeroCrossings := flag.Int("zero-crossings", 8, "One-sided kernel length in zero crossings")
	ratesRaw := flag.String("rates", "22050,44100,48000,96000,192000", "Comma separated host rates to test")
	seconds := flag.Float64("seconds", 0.5, "Test signal length in seconds")
	latencyWeight := flag.Float64("latency-weight", 0.002, "Score penalty per millisecond of round-trip latency")
	workersRaw := flag.String("workers", "auto", "Parallel rate evaluations: integer >= 1 or 'auto'")
	maxEvals := flag.Int("max-evals", 400, "Maximum kernel evaluations")
	timeBudget := flag.Duration("time-budget", 2*time.Minute, "Wall clock budget")
	variant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	pop := flag.Int("mayfly-pop", 8, "Male and female population size per Mayfly run")
	roundEvals := flag.Int("mayfly-round-evals", 120, "Target eval budget per Mayfly round")
	seed := flag.Int64("seed", 1, "Random seed")
	topK := flag.Int("top-k", 5, "Candidates kept in the report")
	reportPath := flag.String("report", "out/src-tune.json", "JSON report path")
	flag.Parse()

	rates, err := parseRates(*ratesRaw)
	if err != nil {
		die("invalid -rates: %v", err)
	}
	workers, err := parseWorkers(*workersRaw)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	*pop = max(*pop, 2)
	*roundEvals = max(*roundEvals, 2**pop)
	v := strings.ToLower(*variant)

	t := &tuner{
		zeroCrossings: *zeroCrossings,
		rates:         rates,
		seconds:       *seconds,
		latencyWeight: *latencyWeight,
		workers:       workers,
	}

	balanced := dspresample.QualityProfile(dspresample.QualityBalanced)
	baseline, err := t.evaluate(candidate{Beta: balanced.KaiserBeta, Cutoff: balanced.CutoffScale})
	if err != nil {
		die("baseline evaluation failed: %v", err)
	}
	fmt.Printf("Baseline beta=%.3f cutoff=%.3f score=%.5f\n", baseline.Candidate.Beta, baseline.Candidate.Cutoff, baseline.Score)

	start := time.Now()
	deadline := start.Add(*timeBudget)
	best := baseline
	var top []topCandidate
	evals := 0

	round := 0
	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		budget := min(*roundEvals, *maxEvals-evals)
		iters := max(1, budget/(2**pop))

		cfg, err := newMayflyConfig(v, *pop, len(defs), iters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))
		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return best.Score + 1.0
			}
			ev, err := t.evaluate(fromNormalized(pos))
			evals++
			if err != nil {
				return best.Score + 0.8
			}
			top = updateTop(top, *topK, evals, ev)
			if ev.Score < best.Score {
				best = ev
				fmt.Printf("Improved eval=%d beta=%.3f cutoff=%.4f score=%.5f\n", evals, ev.Candidate.Beta, ev.Candidate.Cutoff, ev.Score)
			}
			return ev.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			continue
		}
	}

	report := runReport{
		ZeroCrossings: *zeroCrossings,
		Rates:         rates,
		DurationSec:   time.Since(start).Seconds(),
		Evaluations:   evals,
		MayflyVariant: v,
		Baseline:      baseline,
		Best:          best,
		TopCandidates: top,
	}
	if err := writeReport(*reportPath, report); err != nil {
		die("failed to write report: %v", err)
	}
	fmt.Printf("Done evals=%d best beta=%.3f cutoff=%.4f score=%.5f (baseline %.5f)\n", evals, best.Candidate.Beta, best.Candidate.Cutoff, best.Score, baseline.Score)
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func writeReport(path string, r runReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
