package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/gen2brain/malgo"
)

// DeviceConfig selects the device format for RunMalgo.
type DeviceConfig struct {
	SampleRate int
	// CaptureChannels feeds the first capture channel to blow and the
	// second to strike. Zero opens a playback-only device.
	CaptureChannels int
}

// RunMalgo plays s on the default devices. It blocks until ctx is
// cancelled.
func RunMalgo(ctx context.Context, cfg DeviceConfig, s Stepper) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("host: invalid sample rate %d", cfg.SampleRate)
	}
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return fmt.Errorf("host: init audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	kind := malgo.Playback
	if cfg.CaptureChannels > 0 {
		kind = malgo.Duplex
	}
	dc := malgo.DefaultDeviceConfig(kind)
	dc.Playback.Format = malgo.FormatF32
	dc.Playback.Channels = 2
	if cfg.CaptureChannels > 0 {
		dc.Capture.Format = malgo.FormatF32
		dc.Capture.Channels = uint32(cfg.CaptureChannels)
	}
	dc.SampleRate = uint32(cfg.SampleRate)

	device, err := malgo.InitDevice(mctx.Context, dc, malgo.DeviceCallbacks{
		Data: dataCallback(s, cfg.CaptureChannels),
	})
	if err != nil {
		return fmt.Errorf("host: init device: %w", err)
	}
	defer device.Uninit()
	if err := device.Start(); err != nil {
		return fmt.Errorf("host: start device: %w", err)
	}

	<-ctx.Done()
	return nil
}

// dataCallback converts between interleaved float32 device buffers and s.
func dataCallback(s Stepper, inChannels int) func(out, in []byte, frames uint32) {
	inFrame := 4 * inChannels
	return func(out, in []byte, frames uint32) {
		for i := 0; i < int(frames); i++ {
			var blow, strike float32
			if inChannels > 0 && (i+1)*inFrame <= len(in) {
				j := i * inFrame
				blow = math.Float32frombits(binary.LittleEndian.Uint32(in[j:]))
				if inChannels > 1 {
					strike = math.Float32frombits(binary.LittleEndian.Uint32(in[j+4:]))
				}
			}
			main, aux := s.Tick(blow, strike)
			k := i * 8
			if k+8 > len(out) {
				return
			}
			binary.LittleEndian.PutUint32(out[k:], math.Float32bits(main))
			binary.LittleEndian.PutUint32(out[k+4:], math.Float32bits(aux))
		}
	}
}
