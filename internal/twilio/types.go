package twilio

import (
	"context"
	"fmt"
)

// Sender delivers a text message from one address to another.
type Sender interface {
	SendMessage(ctx context.Context, from, to, body string) (*SendResult, error)
}

// SendResult is the accepted message as reported by the vendor.
type SendResult struct {
	// SID is the vendor-assigned message identifier (e.g. "SM...").
	SID string `json:"sid"`

	// Status is the initial delivery status, usually "queued" or "accepted".
	Status string `json:"status"`

	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
}

// apiError mirrors the error body Twilio returns for 4xx and 5xx responses.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// Error is returned for every failed vendor call.
type Error struct {
	// Op is the operation that failed (e.g. "send").
	Op string

	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int

	// Code and Message come from the Twilio error body when present.
	Code     int
	Message  string
	MoreInfo string

	// Err is the transport error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Code != 0:
		return fmt.Sprintf("twilio %s: %s (code %d)", e.Op, e.Message, e.Code)
	case e.Message != "":
		return fmt.Sprintf("twilio %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("twilio %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("twilio %s: unexpected HTTP status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
