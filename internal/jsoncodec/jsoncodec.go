// Package jsoncodec wraps sonic with encoding/json compatible settings so
// HTTP bodies and JSON-RPC envelopes are encoded the same way everywhere.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var std = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return std.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	return std.NewEncoder(w).Encode(v)
}
