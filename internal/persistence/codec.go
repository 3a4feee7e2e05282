package persistence

import (
	"bytes"
	"encoding/gob"

	"github.com/petrijr/sigflow/pkg/api"
)

// EncodeState serializes a state map using encoding/gob. Callers must ensure
// that the values inside are gob-encodable.
func EncodeState(state api.State) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeState deserializes a state map produced by EncodeState. Empty input
// yields a nil state.
func DecodeState(data []byte) (api.State, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var state api.State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return nil, err
	}
	return state, nil
}

// CloneState deep-copies a state map by round-tripping it through the codec.
// The engine's timeout supervisor uses this to hand back a pristine pre-run
// state that no later handler mutation can have touched.
func CloneState(state api.State) (api.State, error) {
	if state == nil {
		return nil, nil
	}
	data, err := EncodeState(state)
	if err != nil {
		return nil, err
	}
	return DecodeState(data)
}
