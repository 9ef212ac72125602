package main

import "github.com/cwbudde/algo-elements/elements"

// keyRow lays one octave out on the home row, sharps on the row above.
var keyRow = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

type actionKind int

const (
	actionNone actionKind = iota
	actionNote
	actionOctave
	actionModel
	actionHold
	actionQuit
)

type action struct {
	kind  actionKind
	value int
}

// decodeKey maps one raw terminal byte to an action.
func decodeKey(b byte) action {
	if semis, ok := keyRow[b]; ok {
		return action{kind: actionNote, value: semis}
	}
	switch b {
	case 'z':
		return action{kind: actionOctave, value: -1}
	case 'x':
		return action{kind: actionOctave, value: 1}
	case ' ':
		return action{kind: actionHold}
	case 'q', 3, 4: // q, Ctrl-C, Ctrl-D
		return action{kind: actionQuit}
	}
	if b >= '1' && int(b-'1') < elements.NumModels {
		return action{kind: actionModel, value: int(b - '1')}
	}
	return action{}
}

// pitchVolts converts a key and octave offset to 1 V/octave around C4.
func pitchVolts(semis, octave int) float32 {
	return float32(semis-9)/12 + float32(octave)
}
