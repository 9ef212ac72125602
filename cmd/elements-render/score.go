package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-elements/host"
)

// parseNotes reads a comma separated list of semitone offsets from A4.
func parseNotes(raw string) ([]float64, error) {
	var notes []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("invalid note %q", part)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %q", raw)
	}
	return notes, nil
}

// buildScore plays notes in turn every interval seconds, each holding the
// gate for gateLen seconds, until duration runs out.
func buildScore(sampleRate int, notes []float64, interval, gateLen, duration float64) []host.Event {
	if interval <= 0 {
		interval = duration
	}
	gateLen = math.Min(gateLen, interval)
	var events []host.Event
	for i := 0; ; i++ {
		start := float64(i) * interval
		if start >= duration {
			break
		}
		pitch := float32(notes[i%len(notes)] / 12)
		events = append(events,
			host.Event{Frame: int(start * float64(sampleRate)), Gate: true, Pitch: pitch},
			host.Event{Frame: int((start + gateLen) * float64(sampleRate)), Gate: false, Pitch: pitch},
		)
	}
	return events
}

// trimTail drops trailing frames whose stereo level stays below threshold,
// keeping whole blocks of blockSize frames.
func trimTail(left, right []float32, threshold float64, blockSize int) int {
	n := len(left)
	for n > 0 {
		start := max(n-blockSize, 0)
		var sum float64
		for i := start; i < n; i++ {
			sum += float64(left[i])*float64(left[i]) + float64(right[i])*float64(right[i])
		}
		if math.Sqrt(sum/float64(2*(n-start))) >= threshold {
			break
		}
		n = start
	}
	return n
}
