package server

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/teemow/smsbridge/internal/jsoncodec"
)

// Envelope is the subset of a JSON-RPC request the router inspects.
type Envelope struct {
	JSONRPC string
	Method  string
	ID      any
}

var (
	errEmptyBody       = errors.New("empty request body")
	errInvalidEnvelope = errors.New("invalid JSON-RPC message format")
)

// syntaxError wraps a JSON parser failure.
type syntaxError struct {
	err error
}

func (e *syntaxError) Error() string { return e.err.Error() }
func (e *syntaxError) Unwrap() error { return e.err }

// ParseEnvelope checks that body is a single JSON object carrying a
// non-empty "jsonrpc" string, a non-empty "method" string and a non-null
// "id". Only structure is checked; the method is not looked up.
func ParseEnvelope(body []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	var raw any
	if err := jsoncodec.Unmarshal(body, &raw); err != nil {
		return nil, &syntaxError{err: err}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errInvalidEnvelope
	}

	version, _ := obj["jsonrpc"].(string)
	method, _ := obj["method"].(string)
	id, hasID := obj["id"]
	if version == "" || method == "" || !hasID || id == nil {
		return nil, errInvalidEnvelope
	}

	switch id.(type) {
	case string, float64:
	default:
		return nil, fmt.Errorf("%w: id must be a string or number", errInvalidEnvelope)
	}

	return &Envelope{JSONRPC: version, Method: method, ID: id}, nil
}
