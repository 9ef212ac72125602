// Package preset reads and writes voice patches as JSON.
package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/cwbudde/algo-elements/elements"
	"github.com/cwbudde/algo-elements/voice"
)

// maxVolts bounds constant CVs stored in a patch.
const maxVolts = 12.0

// File is the JSON schema for voice patches. Controls and inputs are keyed
// by their port names; anything left out keeps its current value.
type File struct {
	Model  *int               `json:"model,omitempty"`
	Params map[string]float32 `json:"params,omitempty"`
	Inputs map[string]float32 `json:"inputs,omitempty"`
}

// LoadJSON loads and validates a patch file.
func LoadJSON(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	if err := Validate(&f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return &f, nil
}

// SaveJSON writes f with stable key order.
func SaveJSON(path string, f *File) error {
	if f == nil {
		return fmt.Errorf("nil preset")
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// Capture snapshots the model, every control and every input of v.
func Capture(v *voice.Voice) *File {
	m := int(v.Model())
	f := &File{
		Model:  &m,
		Params: make(map[string]float32, voice.NumParams),
		Inputs: make(map[string]float32, voice.NumInputs),
	}
	for id := voice.ParamID(0); id < voice.NumParams; id++ {
		f.Params[id.String()] = v.Param(id)
	}
	for id := voice.InputID(0); id < voice.NumInputs; id++ {
		f.Inputs[id.String()] = v.Input(id)
	}
	return f
}

// Validate checks names and ranges without touching any voice.
func Validate(f *File) error {
	if f == nil {
		return nil
	}
	if f.Model != nil && !elements.ResonatorModel(*f.Model).Valid() {
		return fmt.Errorf("model %d out of range (expected 0..%d)", *f.Model, elements.NumModels-1)
	}
	for _, name := range sortedKeys(f.Params) {
		id, ok := voice.ParamByName(name)
		if !ok {
			return fmt.Errorf("unknown param %q", name)
		}
		v := f.Params[name]
		info := id.Info()
		if !isFinite(v) || v < info.Min || v > info.Max {
			return fmt.Errorf("params[%s] must be in [%g,%g], got %g", name, info.Min, info.Max, v)
		}
	}
	for _, name := range sortedKeys(f.Inputs) {
		if _, ok := voice.InputByName(name); !ok {
			return fmt.Errorf("unknown input %q", name)
		}
		v := f.Inputs[name]
		if !isFinite(v) || math.Abs(float64(v)) > maxVolts {
			return fmt.Errorf("inputs[%s] must be within ±%gV, got %g", name, maxVolts, v)
		}
	}
	return nil
}

// Apply validates f and then writes it onto dst. On error dst is untouched.
func Apply(dst *voice.Voice, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination voice")
	}
	if f == nil {
		return nil
	}
	if err := Validate(f); err != nil {
		return err
	}

	if f.Model != nil {
		if err := dst.SetModel(elements.ResonatorModel(*f.Model)); err != nil {
			return err
		}
	}
	for name, v := range f.Params {
		id, _ := voice.ParamByName(name)
		dst.SetParam(id, v)
	}
	for name, v := range f.Inputs {
		id, _ := voice.InputByName(name)
		dst.SetInput(id, v)
	}
	return nil
}

func sortedKeys(m map[string]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
