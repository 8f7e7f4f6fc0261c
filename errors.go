package boschalarm

import (
	"fmt"

	"github.com/patchwell/boschalarm/wire"
)

// ConfigurationError is raised pre-flight for a missing, malformed, or
// out-of-range setting (spec.md 7), before any wire call is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("boschalarm: configuration error: %s", e.Reason)
}

// PermissionError is raised when the panel rejects authentication,
// mapped from an AUTHENTICATE reply of 0 (Not Authorized) or 2 (Max
// Connections).
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("boschalarm: permission denied: %s", e.Reason)
}

// TransportError wraps a TCP/TLS failure, heartbeat expiry, or connect
// timeout — anything that should trigger disconnect-and-retry semantics.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("boschalarm: transport error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("boschalarm: transport error: %s", e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedResponseError is raised on a malformed frame or an unknown
// status byte.
type UnexpectedResponseError struct {
	Detail string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("boschalarm: unexpected response: %s", e.Detail)
}

func (e *UnexpectedResponseError) Unwrap() error { return wire.ErrUnexpectedResponse }

// DecodeError wraps a history or enum decoding failure. It is never
// fatal: callers downgrade it to a synthetic parse-error event and a
// single latched warning per connection (spec.md 7).
type DecodeError struct {
	Context string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("boschalarm: decode error in %s: %v", e.Context, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
