package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-elements/internal/wavio"
	"github.com/cwbudde/algo-elements/irsynth"
)

func main() {
	cfg := irsynth.DefaultConfig()

	output := flag.String("output", "out/space_ir.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.IntVar(&cfg.Modes, "modes", cfg.Modes, "Number of plate modes")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Spectral brightness control (>0)")
	flag.Float64Var(&cfg.PlateRatio, "plate-ratio", cfg.PlateRatio, "Plate aspect ratio Lx/Ly")
	flag.Float64Var(&cfg.StiffnessRatio, "stiffness-ratio", cfg.StiffnessRatio, "Orthotropic stiffness ratio Dx/Dy")
	flag.Float64Var(&cfg.StereoWidth, "stereo-width", cfg.StereoWidth, "Stereo decorrelation width")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low-frequency decay time (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High-frequency decay time (s)")
	flag.Float64Var(&cfg.FadeOutS, "fade-out", cfg.FadeOutS, "Cosine fade at the end of the IR (s)")
	flag.Float64Var(&cfg.SpectralPeak, "spectral-peak", cfg.SpectralPeak, "Largest magnitude of any frequency bin after normalization")
	flag.Parse()

	left, right, err := irsynth.GenerateStereo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ir-synth error: %v\n", err)
		os.Exit(1)
	}

	if err := wavio.WriteStereo(*output, left, right, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := stats(left, right)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f, spectral peak: %.3f\n", peak, rms, cfg.SpectralPeak)
}

func stats(left []float32, right []float32) (peak float64, rms float64) {
	if len(left) == 0 || len(right) == 0 {
		return 0, 0
	}
	var sum float64
	for i := range left {
		lv := float64(left[i])
		rv := float64(right[i])
		peak = math.Max(peak, math.Max(math.Abs(lv), math.Abs(rv)))
		sum += lv*lv + rv*rv
	}
	return peak, math.Sqrt(sum / float64(2*len(left)))
}
