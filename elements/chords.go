package elements

import "github.com/cwbudde/algo-elements/dsp"

const chordVoices = 5

// chordTable lists semitone offsets from the played note, one row per chord,
// ordered from open intervals to dense voicings.
var chordTable = [...][chordVoices]float32{
	{-12, 0, 0.01, 12, 12.02},
	{-12, -5, 0, 7, 12},
	{-12, 0, 5, 7, 12},
	{-12, 0, 3, 7, 10},
	{-12, 0, 3, 10, 14},
	{-12, 0, 3, 7, 14},
	{-12, 0, 4, 9, 14},
	{-12, 0, 4, 7, 11},
	{-12, 0, 4, 11, 14},
	{-12, 0, 4, 7, 12},
	{-12, 0, 2, 7, 12},
}

// chordResonator tunes a bank of strings to a chord picked by geometry and
// spreads them across the two outputs.
type chordResonator struct {
	strings [chordVoices]waveguide
}

func newChordResonator() chordResonator {
	var c chordResonator
	for i := range c.strings {
		c.strings[i] = newWaveguide()
	}
	return c
}

// chordIndex maps geometry onto a row of chordTable.
func chordIndex(geometry float32) int {
	n := len(chordTable)
	i := int(dsp.Clamp(geometry, 0, 1)*float32(n-1) + 0.5)
	return min(max(i, 0), n-1)
}

func (c *chordResonator) configure(p *Patch, f0 float32) {
	chord := chordTable[chordIndex(p.ResonatorGeometry)]
	decay := stringDecay(p.ResonatorDamping)
	darkness := 0.9 * (1 - dsp.Clamp(p.ResonatorBrightness, 0, 1))
	for i := range c.strings {
		c.strings[i].tune(f0*pow2Approx(chord[i]/12.0), decay, darkness, 0, 0, p.ResonatorPosition)
	}
}

func (c *chordResonator) process(x float32) (main, aux float32) {
	drive := x * (1.0 / chordVoices)
	for i := range c.strings {
		bridge, _ := c.strings[i].process(drive)
		pan := float32(i) / (chordVoices - 1)
		main += bridge * (1 - pan)
		aux += bridge * pan
	}
	return main, aux
}

func (c *chordResonator) reset() {
	for i := range c.strings {
		c.strings[i].reset()
	}
}
