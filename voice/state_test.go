package voice

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-elements/elements"
)

func TestStateRoundTrip(t *testing.T) {
	for _, m := range elements.Models() {
		src := newVoice(t, 48000)
		if err := src.SetModel(m); err != nil {
			t.Fatalf("SetModel(%v): %v", m, err)
		}
		data, err := src.MarshalState()
		if err != nil {
			t.Fatalf("MarshalState: %v", err)
		}

		dst := newVoice(t, 44100)
		if err := dst.UnmarshalState(data); err != nil {
			t.Fatalf("UnmarshalState(%s): %v", data, err)
		}
		if dst.Model() != m {
			t.Fatalf("restored model %v, want %v", dst.Model(), m)
		}
	}
}

func TestMarshalStateFormat(t *testing.T) {
	v := newVoice(t, 48000)
	if err := v.SetModel(elements.ModelChords); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	data, err := v.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}
	if string(data) != `{"model":2}` {
		t.Fatalf("state = %s", data)
	}
}

func TestUnmarshalStateAbsentModel(t *testing.T) {
	v := newVoice(t, 48000)
	if err := v.UnmarshalState([]byte(`{}`)); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if v.Model() != elements.ModelModal {
		t.Fatalf("absent field changed the model to %v", v.Model())
	}
}

func TestUnmarshalStateRejectsUnknownModel(t *testing.T) {
	v := newVoice(t, 48000)
	if err := v.SetModel(elements.ModelString); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	for _, data := range []string{`{"model":3}`, `{"model":-1}`} {
		if err := v.UnmarshalState([]byte(data)); !errors.Is(err, ErrInvalidModel) {
			t.Fatalf("UnmarshalState(%s) error = %v", data, err)
		}
		if v.Model() != elements.ModelString {
			t.Fatalf("rejected state changed the model to %v", v.Model())
		}
	}
}

func TestUnmarshalStateMalformed(t *testing.T) {
	v := newVoice(t, 48000)
	for _, data := range []string{``, `{"model":`, `{"model":"chords"}`, `[1]`} {
		if err := v.UnmarshalState([]byte(data)); err == nil {
			t.Fatalf("UnmarshalState(%q) accepted malformed input", data)
		}
	}
	if v.Model() != elements.ModelModal {
		t.Fatalf("malformed state changed the model")
	}
}
