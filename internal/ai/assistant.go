package ai

import (
	"context"
	"errors"
	"fmt"
)

// Generator is the boundary to the remote text-generation endpoint. Every call
// is independent and stateless: all conversation context travels inside the
// prompt text. When structured is true the provider is asked to constrain its
// output to JSON; that is a hint, callers still parse defensively.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, structured bool) (string, error)
}

// FailureKind classifies gateway failures so the session can decide between
// reverting and staying in place without string-matching error text.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	// KindMissingCredential means no API credential is configured. Detected
	// before any network I/O happens.
	KindMissingCredential
	// KindTransport covers non-success remote calls.
	KindTransport
	// KindEmptyResponse means the remote call succeeded but yielded no usable
	// text. Treated like a transport failure for recovery purposes.
	KindEmptyResponse
)

func (k FailureKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindTransport:
		return "transport_failure"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// Error is the gateway failure surfaced to the session state machine.
type Error struct {
	Kind FailureKind
	Err  error
}

func NewError(kind FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) FailureKind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}

	return KindUnknown
}
