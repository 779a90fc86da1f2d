package censys

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the wrapper most Platform API responses put around the payload
type envelope struct {
	Result json.RawMessage `json:"result"`
}

// resourceWrapper is the wrapper asset payloads put around the asset itself
type resourceWrapper struct {
	Resource json.RawMessage `json:"resource"`
}

// Normalize returns the object held in the "result" envelope, or raw unchanged
// when there is no envelope. A normalized payload has no envelope of its own,
// so normalizing it again is a no-op.
func Normalize(raw json.RawMessage) json.RawMessage {
	var env envelope
	if !isObject(raw) || jsonAPI.Unmarshal(raw, &env) != nil {
		return raw
	}
	if !isObject(env.Result) {
		return raw
	}
	return env.Result
}

// Decode decodes an already normalized payload into T
func Decode[T any](payload json.RawMessage) (*T, error) {
	var out T
	if err := jsonAPI.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &out, nil
}

// unwrapResource strips an asset's "resource" wrapper when present
func unwrapResource(raw json.RawMessage) json.RawMessage {
	var w resourceWrapper
	if !isObject(raw) || jsonAPI.Unmarshal(raw, &w) != nil {
		return raw
	}
	if !isObject(w.Resource) {
		return raw
	}
	return w.Resource
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
