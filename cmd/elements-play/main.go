package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/algo-elements/elements"
	"github.com/cwbudde/algo-elements/host"
	"github.com/cwbudde/algo-elements/preset"
	"github.com/cwbudde/algo-elements/voice"
)

var (
	backendFlag    = flag.String("backend", "malgo", "audio backend: malgo or oto")
	sampleRateFlag = flag.Int("sample-rate", 48000, "device sample rate in Hz")
	captureFlag    = flag.Int("capture", 0, "capture channels feeding blow/strike (malgo only, 0 disables)")
	presetFlag     = flag.String("preset", "", "patch JSON file (optional)")
	modelFlag      = flag.Int("model", -1, "resonator model 0..2 (overrides the preset)")
)

func main() {
	flag.Parse()

	v, err := voice.New(float64(*sampleRateFlag))
	if err != nil {
		log.Fatal(err)
	}
	if *presetFlag != "" {
		f, err := preset.LoadJSON(*presetFlag)
		if err != nil {
			log.Fatal(err)
		}
		if err := preset.Apply(v, f); err != nil {
			log.Fatalf("applying %s: %v", *presetFlag, err)
		}
	}
	if *modelFlag >= 0 {
		if err := v.SetModel(elements.ResonatorModel(*modelFlag)); err != nil {
			log.Fatal(err)
		}
	}
	rack := host.NewRack(v)

	ctx, cancel := context.WithCancel(interruptContext())
	defer cancel()

	restore, err := rawTerminal()
	if err != nil {
		log.Fatalf("terminal: %v", err)
	}
	defer restore()
	fmt.Print("keys a..k play, z/x octave, space hold, 1-3 model, q quit\r\n")

	// Reads block on stdin, so this goroutine stays outside the group.
	go func() {
		defer cancel()
		readKeys(ctx, rack)
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return play(ctx, rack)
	})
	g.Go(func() error {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				exc, res := rack.Lights()
				fmt.Printf("\rexciter %.2f  resonator %.2f ", exc, res)
			}
		}
	})

	if err := g.Wait(); err != nil {
		restore()
		log.Fatal(err)
	}
	fmt.Print("\r\n")
}

func play(ctx context.Context, rack *host.Rack) error {
	switch *backendFlag {
	case "malgo":
		return host.RunMalgo(ctx, host.DeviceConfig{
			SampleRate:      *sampleRateFlag,
			CaptureChannels: *captureFlag,
		}, rack)
	case "oto":
		p, err := host.NewOtoPlayer(*sampleRateFlag, rack)
		if err != nil {
			return err
		}
		p.Start()
		<-ctx.Done()
		return p.Close()
	default:
		return fmt.Errorf("unknown backend %q", *backendFlag)
	}
}

func readKeys(ctx context.Context, rack *host.Rack) {
	octave := 0
	hold := false
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		a := decodeKey(buf[0])
		switch a.kind {
		case actionNote:
			rack.SetPitch(pitchVolts(a.value, octave))
			rack.Trigger()
		case actionOctave:
			octave = max(-3, min(3, octave+a.value))
		case actionHold:
			hold = !hold
			rack.SetGate(hold)
		case actionModel:
			model := elements.ResonatorModel(a.value)
			if err := rack.SelectModel(model); err == nil {
				fmt.Printf("\r\nmodel: %v\r\n", model)
			}
		case actionQuit:
			return
		}
	}
}

// rawTerminal switches stdin to raw mode when it is a terminal.
func rawTerminal() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	restored := false
	return func() {
		if !restored {
			_ = term.Restore(fd, old)
			restored = true
		}
	}, nil
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
