package voice

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/algo-elements/elements"
)

// Module is the surface a host rack drives.
type Module interface {
	Step()
	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
	Ports() Ports
}

var _ Module = (*Voice)(nil)

// state is the persisted part of a voice. Controls belong to the host patch
// and are not stored here.
type state struct {
	Model *int `json:"model"`
}

// MarshalState encodes the selected model as {"model": n}.
func (v *Voice) MarshalState() ([]byte, error) {
	m := int(v.Model())
	return json.Marshal(state{Model: &m})
}

// UnmarshalState restores a state written by MarshalState. A missing model
// leaves the current one in place; an unknown one is rejected without
// changing anything.
func (v *Voice) UnmarshalState(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("voice: decode state: %w", err)
	}
	if s.Model == nil {
		return nil
	}
	m := elements.ResonatorModel(*s.Model)
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidModel, *s.Model)
	}
	return v.SetModel(m)
}
