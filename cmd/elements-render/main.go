package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-elements/elements"
	"github.com/cwbudde/algo-elements/host"
	"github.com/cwbudde/algo-elements/internal/wavio"
	"github.com/cwbudde/algo-elements/preset"
	"github.com/cwbudde/algo-elements/voice"
)

func main() {
	sampleRate := flag.Int("sample-rate", 48000, "Host sample rate in Hz")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	notes := flag.String("notes", "0", "Comma separated semitone offsets from A4, played in turn")
	interval := flag.Float64("interval", 0, "Seconds between notes (0 plays one note)")
	gateLen := flag.Float64("gate", 0.25, "Gate length in seconds")
	model := flag.Int("model", -1, "Resonator model 0..2 (overrides the preset)")
	presetPath := flag.String("preset", "", "Patch JSON file path (optional)")
	blowPath := flag.String("blow", "", "WAV fed to the blow input (optional)")
	strikePath := flag.String("strike", "", "WAV fed to the strike input (optional)")
	trimDBFS := flag.Float64("trim-dbfs", math.Inf(-1), "Drop the tail once the block RMS stays below this dBFS (e.g. -90). Disabled by default")
	output := flag.String("output", "output.wav", "Output WAV file path (main left, aux right)")
	flag.Parse()

	v, err := voice.New(float64(*sampleRate))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *presetPath != "" {
		f, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		if err := preset.Apply(v, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *model >= 0 {
		if err := v.SetModel(elements.ResonatorModel(*model)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	noteList, err := parseNotes(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	blow, err := loadInput(*blowPath, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading blow input: %v\n", err)
		os.Exit(1)
	}
	strike, err := loadInput(*strikePath, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading strike input: %v\n", err)
		os.Exit(1)
	}

	totalFrames := max(int(float64(*sampleRate)*(*duration)), 1)
	fmt.Printf("Rendering %s for %.2f seconds at %d Hz...\n", v.Model(), *duration, *sampleRate)

	rack := host.NewRack(v)
	events := buildScore(*sampleRate, noteList, *interval, *gateLen, *duration)
	left, right := host.Render(rack, events, blow, strike, totalFrames)

	if !math.IsInf(*trimDBFS, -1) {
		n := trimTail(left, right, math.Pow(10, *trimDBFS/20), elements.BlockSize*8)
		left, right = left[:n], right[:n]
		fmt.Printf("Trimmed to %d frames (%.3fs), threshold %.1f dBFS\n", n, float64(n)/float64(*sampleRate), *trimDBFS)
	}

	if err := wavio.WriteStereo(*output, left, right, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames, latency %d frames)\n", *output, len(left), v.Latency())
}

func loadInput(path string, sampleRate int) ([]float32, error) {
	if path == "" {
		return nil, nil
	}
	x, err := wavio.ReadMonoAt(path, sampleRate)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(x))
	for i, s := range x {
		out[i] = float32(s)
	}
	return out, nil
}
