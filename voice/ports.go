package voice

import "fmt"

// ParamID indexes a panel control. The numbering is stable.
type ParamID int

const (
	ContourParam ParamID = iota
	BowParam
	BlowParam
	StrikeParam
	CoarseParam
	FineParam
	FMParam
	FlowParam
	MalletParam
	GeometryParam
	BrightnessParam
	BowTimbreParam
	BlowTimbreParam
	StrikeTimbreParam
	DampingParam
	PositionParam
	SpaceParam
	BowTimbreModParam
	FlowModParam
	BlowTimbreModParam
	MalletModParam
	StrikeTimbreModParam
	DampingModParam
	GeometryModParam
	PositionModParam
	BrightnessModParam
	SpaceModParam
	PlayParam

	NumParams
)

// InputID indexes an input jack. The numbering is stable.
type InputID int

const (
	NoteInput InputID = iota
	FMInput
	GateInput
	StrengthInput
	BlowInput
	StrikeInput
	BowTimbreModInput
	FlowModInput
	BlowTimbreModInput
	MalletModInput
	StrikeTimbreModInput
	DampingModInput
	GeometryModInput
	PositionModInput
	BrightnessModInput
	SpaceModInput

	NumInputs
)

// OutputID indexes an output jack. The numbering is stable. The engine's main
// signal goes to MainOutput and its aux signal to AuxOutput, which swaps the
// jacks relative to the hardware module's firmware.
type OutputID int

const (
	AuxOutput OutputID = iota
	MainOutput

	NumOutputs
)

// Knobs holds one value per ParamID.
type Knobs [NumParams]float32

// Voltages holds one control or audio voltage per InputID.
type Voltages [NumInputs]float32

// ParamInfo describes a panel control.
type ParamInfo struct {
	ID      ParamID
	Name    string
	Min     float32
	Max     float32
	Default float32
}

// PortInfo describes a jack.
type PortInfo struct {
	Index int
	Name  string
}

// Ports describes the whole module surface.
type Ports struct {
	Params  []ParamInfo
	Inputs  []PortInfo
	Outputs []PortInfo
}

var paramInfos = [NumParams]ParamInfo{
	{ContourParam, "contour", 0, 1, 1},
	{BowParam, "bow", 0, 1, 0},
	{BlowParam, "blow", 0, 1, 0},
	{StrikeParam, "strike", 0, 1, 0.5},
	{CoarseParam, "coarse", -30, 30, 0},
	{FineParam, "fine", -2, 2, 0},
	{FMParam, "fm", -1, 1, 0},
	{FlowParam, "flow", 0, 1, 0.5},
	{MalletParam, "mallet", 0, 1, 0.5},
	{GeometryParam, "geometry", 0, 1, 0.5},
	{BrightnessParam, "brightness", 0, 1, 0.5},
	{BowTimbreParam, "bow_timbre", 0, 1, 0.5},
	{BlowTimbreParam, "blow_timbre", 0, 1, 0.5},
	{StrikeTimbreParam, "strike_timbre", 0, 1, 0.5},
	{DampingParam, "damping", 0, 1, 0.5},
	{PositionParam, "position", 0, 1, 0.5},
	{SpaceParam, "space", 0, 2, 0},
	{BowTimbreModParam, "bow_timbre_mod", -1, 1, 0},
	{FlowModParam, "flow_mod", -1, 1, 0},
	{BlowTimbreModParam, "blow_timbre_mod", -1, 1, 0},
	{MalletModParam, "mallet_mod", -1, 1, 0},
	{StrikeTimbreModParam, "strike_timbre_mod", -1, 1, 0},
	{DampingModParam, "damping_mod", -1, 1, 0},
	{GeometryModParam, "geometry_mod", -1, 1, 0},
	{PositionModParam, "position_mod", -1, 1, 0},
	{BrightnessModParam, "brightness_mod", -1, 1, 0},
	{SpaceModParam, "space_mod", -2, 2, 0},
	{PlayParam, "play", 0, 1, 0},
}

var inputNames = [NumInputs]string{
	"note",
	"fm",
	"gate",
	"strength",
	"blow",
	"strike",
	"bow_timbre_mod",
	"flow_mod",
	"blow_timbre_mod",
	"mallet_mod",
	"strike_timbre_mod",
	"damping_mod",
	"geometry_mod",
	"position_mod",
	"brightness_mod",
	"space_mod",
}

var outputNames = [NumOutputs]string{"aux", "main"}

// Valid reports whether id names a control.
func (id ParamID) Valid() bool { return id >= 0 && id < NumParams }

// Info returns the range and default of the control.
func (id ParamID) Info() ParamInfo {
	if !id.Valid() {
		return ParamInfo{ID: id}
	}
	return paramInfos[id]
}

func (id ParamID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return paramInfos[id].Name
}

// Valid reports whether id names an input jack.
func (id InputID) Valid() bool { return id >= 0 && id < NumInputs }

func (id InputID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("InputID(%d)", int(id))
	}
	return inputNames[id]
}

// Valid reports whether id names an output jack.
func (id OutputID) Valid() bool { return id >= 0 && id < NumOutputs }

func (id OutputID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("OutputID(%d)", int(id))
	}
	return outputNames[id]
}

// DefaultKnobs returns every control at its panel default.
func DefaultKnobs() Knobs {
	var k Knobs
	for i := range paramInfos {
		k[i] = paramInfos[i].Default
	}
	return k
}

// DescribePorts lists every control and jack.
func DescribePorts() Ports {
	p := Ports{
		Params:  make([]ParamInfo, NumParams),
		Inputs:  make([]PortInfo, NumInputs),
		Outputs: make([]PortInfo, NumOutputs),
	}
	copy(p.Params, paramInfos[:])
	for i, name := range inputNames {
		p.Inputs[i] = PortInfo{Index: i, Name: name}
	}
	for i, name := range outputNames {
		p.Outputs[i] = PortInfo{Index: i, Name: name}
	}
	return p
}

// ParamByName finds a control by its snake_case name.
func ParamByName(name string) (ParamID, bool) {
	for i := range paramInfos {
		if paramInfos[i].Name == name {
			return ParamID(i), true
		}
	}
	return 0, false
}

// InputByName finds an input jack by its snake_case name.
func InputByName(name string) (InputID, bool) {
	for i, n := range inputNames {
		if n == name {
			return InputID(i), true
		}
	}
	return 0, false
}
