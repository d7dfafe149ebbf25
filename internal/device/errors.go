package device

import (
	"errors"
	"fmt"

	"github.com/benmeehan/sentinel/pkg/relay"
)

var (
	// ErrValidation is matched by requests rejected before any I/O.
	ErrValidation = errors.New("request not allowed")

	// ErrNoResult is matched when the relay answered without the expected
	// field, most often because the device did not respond in time.
	ErrNoResult = errors.New("no result from relay, possible timeout")
)

// ValidationError reports a variable, function or argument outside the whitelist.
type ValidationError struct {
	Name     string
	Argument string
	Call     bool
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Call {
		return fmt.Sprintf("%s: %s(%q): %s", ErrValidation, e.Name, e.Argument, e.Reason)
	}
	return fmt.Sprintf("%s: %q: %s", ErrValidation, e.Name, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ProtocolError is the transient failure of a relay answer that lacks its
// result field.
type ProtocolError struct {
	Name       string
	Field      string // "result" or "return_value"
	StatusCode int
	RelayError string
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s: %s has no %q", ErrNoResult, e.Name, e.Field)
	if e.RelayError != "" {
		msg += fmt.Sprintf(" (HTTP %d: %s)", e.StatusCode, e.RelayError)
	}
	return msg
}

func (e *ProtocolError) Is(target error) bool { return target == ErrNoResult }

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoResult) || errors.Is(err, relay.ErrTransport)
}
