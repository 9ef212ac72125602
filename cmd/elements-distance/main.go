package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-elements/analysis"
	"github.com/cwbudde/algo-elements/host"
	"github.com/cwbudde/algo-elements/internal/wavio"
	"github.com/cwbudde/algo-elements/preset"
	"github.com/cwbudde/algo-elements/voice"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the candidate from the voice")
	presetPath := flag.String("preset", "", "Patch JSON path for the rendered candidate (optional)")
	pitch := flag.Float64("pitch", 0, "Pitch CV in volts for the rendered candidate (0 = A4)")
	gateLen := flag.Float64("gate", 0.25, "Gate length in seconds for the rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	maxLag := flag.Int("max-lag", 2048, "Largest alignment shift in frames")
	skip := flag.Int("skip", 0, "Frames ignored at both ends")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	ref, err := wavio.ReadMonoAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = wavio.ReadMonoAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		left, right, err := renderCandidate(*presetPath, float32(*pitch), *gateLen, *sampleRate, len(ref))
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = make([]float64, len(left))
		for i := range left {
			cand[i] = float64(left[i])
		}
		if *writeCandidate != "" {
			if err := wavio.WriteStereo(*writeCandidate, left, right, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate, analysis.Options{MaxLag: *maxLag, Skip: *skip})
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Relative error", fmt.Sprintf("%.6f", metrics.RelativeError), metrics.RelativeNorm, analysis.WeightRelative, metrics.Dominant == "relative")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", metrics.EnvelopeRMSEDB), metrics.EnvelopeNorm, analysis.WeightEnvelope, metrics.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", metrics.SpectralRMSEDB), metrics.SpectralNorm, analysis.WeightSpectral, metrics.Dominant == "spectral")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)

	refPeak, errR := analysis.PeakFrequency(ref, *sampleRate, 20, 0.45*float64(*sampleRate))
	candPeak, errC := analysis.PeakFrequency(cand, *sampleRate, 20, 0.45*float64(*sampleRate))
	if errR == nil && errC == nil {
		fmt.Printf("\nSpectral peaks: ref=%.1f Hz  cand=%.1f Hz\n", refPeak, candPeak)
	}
}

func renderCandidate(presetPath string, pitch float32, gateLen float64, sampleRate int, frames int) ([]float32, []float32, error) {
	v, err := voice.New(float64(sampleRate))
	if err != nil {
		return nil, nil, err
	}
	if presetPath != "" {
		f, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, nil, err
		}
		if err := preset.Apply(v, f); err != nil {
			return nil, nil, err
		}
	}
	events := []host.Event{
		{Frame: 0, Gate: true, Pitch: pitch},
		{Frame: int(gateLen * float64(sampleRate)), Gate: false, Pitch: pitch},
	}
	left, right := host.Render(host.NewRack(v), events, nil, nil, max(frames, 1))
	return left, right, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
