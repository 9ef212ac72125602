package host

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cwbudde/algo-elements/elements"
	"github.com/cwbudde/algo-elements/voice"
)

// echo returns its inputs and counts calls.
type echo struct {
	calls int
}

func (e *echo) Tick(blow, strike float32) (float32, float32) {
	e.calls++
	return blow, strike
}

func newRack(t *testing.T, rate float64) *Rack {
	t.Helper()
	v, err := voice.New(rate)
	if err != nil {
		t.Fatalf("voice.New: %v", err)
	}
	return NewRack(v)
}

func putFloats(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
}

func TestDataCallbackDuplex(t *testing.T) {
	e := &echo{}
	cb := dataCallback(e, 2)
	in := putFloats(0.1, 0.2, 0.3, 0.4, 0.5, 0.6)
	out := make([]byte, 3*8)
	cb(out, in, 3)

	if e.calls != 3 {
		t.Fatalf("Tick called %d times, want 3", e.calls)
	}
	for i, want := range []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6} {
		if got := floatAt(out, i); got != want {
			t.Fatalf("out[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestDataCallbackPlaybackOnly(t *testing.T) {
	e := &echo{}
	cb := dataCallback(e, 0)
	out := make([]byte, 4*8)
	for i := range out {
		out[i] = 0xff
	}
	cb(out, nil, 4)
	if e.calls != 4 {
		t.Fatalf("Tick called %d times, want 4", e.calls)
	}
	for i := 0; i < 8; i++ {
		if floatAt(out, i) != 0 {
			t.Fatalf("out[%d] = %v, want silence", i, floatAt(out, i))
		}
	}
}

func TestFrameReaderFillsWholeFrames(t *testing.T) {
	e := &echo{}
	fr := &frameReader{s: e}
	n, err := fr.Read(make([]byte, 8*5+3))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 40 || e.calls != 5 {
		t.Fatalf("read %d bytes over %d ticks", n, e.calls)
	}
}

func TestRackGateAndPitch(t *testing.T) {
	r := newRack(t, 48000)
	r.SetParam(voice.DampingParam, 0.2)
	r.SetPitch(-1)
	r.SetGate(true)

	main, _ := Render(r, nil, nil, nil, 24000)
	if r.v.Input(voice.GateInput) != gateVolts || r.v.Input(voice.NoteInput) != -1 {
		t.Fatalf("inputs not forwarded")
	}
	if r.v.Param(voice.DampingParam) != 0.2 {
		t.Fatalf("queued param not applied")
	}
	var peak float32
	for _, s := range main {
		peak = max(peak, float32(math.Abs(float64(s))))
	}
	if peak == 0 || peak > 1.1 {
		t.Fatalf("peak %v outside (0, 1.1]", peak)
	}
	if _, res := r.Lights(); res <= 0 {
		t.Fatalf("resonator light dark")
	}
}

func TestRackTriggerIsAPulse(t *testing.T) {
	r := newRack(t, 48000)
	r.Trigger()
	r.Tick(0, 0)
	if r.v.Input(voice.GateInput) != gateVolts {
		t.Fatalf("trigger did not raise the gate")
	}
	for i := 0; i < int(triggerSeconds*48000)+1; i++ {
		r.Tick(0, 0)
	}
	if r.v.Input(voice.GateInput) != 0 {
		t.Fatalf("gate still high after the pulse")
	}
}

func TestRackSelectModel(t *testing.T) {
	r := newRack(t, 44100)
	if err := r.SelectModel(elements.ResonatorModel(5)); err == nil {
		t.Fatal("expected error for invalid model")
	}
	if err := r.SelectModel(elements.ModelChords); err != nil {
		t.Fatalf("SelectModel: %v", err)
	}
	if r.v.Model() != elements.ModelModal {
		t.Fatalf("model changed before the audio goroutine ran")
	}
	r.Tick(0, 0)
	if r.v.Model() != elements.ModelChords {
		t.Fatalf("model = %v after Tick", r.v.Model())
	}
}

func TestRenderAppliesEventsInOrder(t *testing.T) {
	r := newRack(t, 32000)
	events := []Event{
		{Frame: 16000, Gate: false, Pitch: 0},
		{Frame: 0, Gate: true, Pitch: 0.5},
	}
	main, aux := Render(r, events, nil, nil, 32000)
	if len(main) != 32000 || len(aux) != 32000 {
		t.Fatalf("lengths %d/%d", len(main), len(aux))
	}
	if r.v.Input(voice.GateInput) != 0 || r.v.Input(voice.NoteInput) != 0 {
		t.Fatalf("last event not applied")
	}
	var energy float64
	for _, s := range main[:16000] {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatalf("gate event produced no sound")
	}
}

func TestRackTickDoesNotAllocate(t *testing.T) {
	r := newRack(t, 48000)
	r.SetGate(true)
	Render(r, nil, nil, nil, 2048)
	allocs := testing.AllocsPerRun(1000, func() {
		r.Tick(0.1, 0)
	})
	if allocs != 0 {
		t.Fatalf("Tick allocates %.1f times per call", allocs)
	}
}
