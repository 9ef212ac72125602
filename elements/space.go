package elements

import (
	"sync"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-elements/dsp"
	"github.com/cwbudde/algo-elements/irsynth"
)

// maxRecirculation is the wet feedback gain at full space. The IR is
// normalized to unit spectral peak, so any value below one is stable.
const maxRecirculation = 0.7

type spaceIR struct {
	left, right []float32
}

var loadSpaceIR = sync.OnceValues(func() (spaceIR, error) {
	l, r, err := irsynth.GenerateStereo(irsynth.DefaultConfig())
	return spaceIR{left: l, right: r}, err
})

// space convolves the mono sum of the resonator with a synthetic plate.
// Up to 1 the control sets the wet mix; above 1 the wet signal is also fed
// back into the plate for a longer tail.
type space struct {
	left  *dspconv.StreamingOverlapAddT[float32, complex64]
	right *dspconv.StreamingOverlapAddT[float32, complex64]

	in       [BlockSize]float32
	outL     [BlockSize]float32
	outR     [BlockSize]float32
	feedback [BlockSize]float32
	active   bool
}

func newSpace() (*space, error) {
	ir, err := loadSpaceIR()
	if err != nil {
		return nil, err
	}
	left, err := dspconv.NewStreamingOverlapAdd32(ir.left, BlockSize)
	if err != nil {
		return nil, err
	}
	right, err := dspconv.NewStreamingOverlapAdd32(ir.right, BlockSize)
	if err != nil {
		return nil, err
	}
	return &space{left: left, right: right}, nil
}

// process mixes the space into main and aux in place. Both hold at most
// BlockSize samples.
func (s *space) process(amount float32, main, aux []float32) {
	if amount <= 0 {
		if s.active {
			s.reset()
		}
		return
	}
	s.active = true

	wet := min(amount, 1)
	recirculation := maxRecirculation * dsp.Clamp(amount-1, 0, 1)
	dry := 1 - 0.5*wet

	n := len(main)
	for i := 0; i < BlockSize; i++ {
		x := float32(0)
		if i < n {
			x = 0.5 * (main[i] + aux[i])
		}
		s.in[i] = x + recirculation*s.feedback[i]
	}

	errL := s.left.ProcessBlockTo(s.outL[:], s.in[:])
	errR := s.right.ProcessBlockTo(s.outR[:], s.in[:])
	if errL != nil || errR != nil {
		// Leave the dry signal untouched for this block.
		return
	}

	for i := 0; i < BlockSize; i++ {
		s.feedback[i] = 0.5 * (s.outL[i] + s.outR[i])
	}
	for i := 0; i < n; i++ {
		main[i] = dry*main[i] + wet*s.outL[i]
		aux[i] = dry*aux[i] + wet*s.outR[i]
	}
}

func (s *space) reset() {
	s.left.Reset()
	s.right.Reset()
	s.feedback = [BlockSize]float32{}
	s.active = false
}
