package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// frameReader streams a Stepper as interleaved stereo float32 LE bytes.
type frameReader struct {
	s Stepper
}

// Read fills whole frames only.
func (fr *frameReader) Read(p []byte) (int, error) {
	n := len(p) / 8
	for i := 0; i < n; i++ {
		main, aux := fr.s.Tick(0, 0)
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(main))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(aux))
	}
	return n * 8, nil
}

// OtoPlayer pulls audio from a Stepper through oto. It has no capture side,
// so blow and strike inputs stay silent.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	started bool
}

// NewOtoPlayer opens the default output at sampleRate. oto allows one
// context per process.
func NewOtoPlayer(sampleRate int, s Stepper) (*OtoPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("host: init oto: %w", err)
	}
	<-ready

	return &OtoPlayer{
		ctx:    ctx,
		player: ctx.NewPlayer(&frameReader{s: s}),
	}, nil
}

// Start begins playback.
func (op *OtoPlayer) Start() {
	op.mu.Lock()
	defer op.mu.Unlock()
	if !op.started {
		op.player.Play()
		op.started = true
	}
}

// Close stops playback and releases the player.
func (op *OtoPlayer) Close() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.started = false
	return op.player.Close()
}
