package voice

import (
	"github.com/cwbudde/algo-elements/dsp"
	"github.com/cwbudde/algo-elements/elements"
)

const (
	// timbreMax keeps modulated timbral fields just short of the top of the
	// range, where several engine curves would otherwise fold over.
	timbreMax = 0.9995

	// cvGain is the attenuverter gain at full trim for timbral fields.
	cvGain = 3.3

	// Volts per full-scale modulation.
	fullScale = 5.0
)

// depthCurve shapes a trim knob into a modulation depth.
type depthCurve int

const (
	depthQuadratic depthCurve = iota
	depthLinear
)

func (c depthCurve) apply(trim float32) float32 {
	if c == depthLinear {
		return trim
	}
	return cvGain * dsp.QuadraticBipolar(trim)
}

// binding routes one knob, its trim and its CV into one patch field.
type binding struct {
	knob  ParamID
	trim  ParamID
	input InputID
	depth depthCurve
	lo    float32
	hi    float32
	field func(p *elements.Patch) *float32
}

var modulated = [...]binding{
	{BowTimbreParam, BowTimbreModParam, BowTimbreModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ExciterBowTimbre }},
	{FlowParam, FlowModParam, FlowModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ExciterBlowMeta }},
	{BlowTimbreParam, BlowTimbreModParam, BlowTimbreModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ExciterBlowTimbre }},
	{MalletParam, MalletModParam, MalletModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ExciterStrikeMeta }},
	{StrikeTimbreParam, StrikeTimbreModParam, StrikeTimbreModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ExciterStrikeTimbre }},
	{GeometryParam, GeometryModParam, GeometryModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ResonatorGeometry }},
	{BrightnessParam, BrightnessModParam, BrightnessModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ResonatorBrightness }},
	{DampingParam, DampingModParam, DampingModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ResonatorDamping }},
	{PositionParam, PositionModParam, PositionModInput, depthQuadratic, 0, timbreMax,
		func(p *elements.Patch) *float32 { return &p.ResonatorPosition }},
	{SpaceParam, SpaceModParam, SpaceModInput, depthLinear, 0, 2,
		func(p *elements.Patch) *float32 { return &p.Space }},
}

// direct fields follow their knob only.
var direct = [...]struct {
	knob  ParamID
	field func(p *elements.Patch) *float32
}{
	{ContourParam, func(p *elements.Patch) *float32 { return &p.ExciterEnvelopeShape }},
	{BowParam, func(p *elements.Patch) *float32 { return &p.ExciterBowLevel }},
	{BlowParam, func(p *elements.Patch) *float32 { return &p.ExciterBlowLevel }},
	{StrikeParam, func(p *elements.Patch) *float32 { return &p.ExciterStrikeLevel }},
}

// BuildPatch maps knobs and CVs onto an engine patch. Every field lands in
// its legal range whatever the inputs, NaN included.
func BuildPatch(knobs *Knobs, cv *Voltages) elements.Patch {
	var p elements.Patch
	for i := range direct {
		b := &direct[i]
		*b.field(&p) = dsp.Clamp(knobs[b.knob], 0, 1)
	}
	for i := range modulated {
		b := &modulated[i]
		v := knobs[b.knob] + b.depth.apply(knobs[b.trim])*cv[b.input]/fullScale
		*b.field(&p) = dsp.Clamp(v, b.lo, b.hi)
	}
	return p
}
