package persist

import (
	"encoding/json"
	"fmt"
)

// Store keys for each persisted state container.
const (
	KeyProjects    = "project-store"
	KeyCheckpoints = "checkpoint-store"
	KeyUI          = "ui-store"
)

// Envelope is the on-disk shape of every persisted store.
type Envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Encode wraps state in a versioned envelope.
func Encode(state any, version int) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	data, err := json.Marshal(Envelope{State: raw, Version: version})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode unwraps a versioned envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return Envelope{}, fmt.Errorf("decode envelope: missing state")
	}
	return env, nil
}
