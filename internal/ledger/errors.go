package ledger

import "fmt"

// BackendError means the ledger accepted the request but rejected it.
// Message carries the backend's own error text and is shown to the user verbatim.
type BackendError struct {
	Cmd     string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ledger %s: %s", e.Cmd, e.Message)
}

// Code identifies the error class in handler summary logs.
func (e *BackendError) Code() string { return "backend" }

// TransportError covers timeouts, connection failures, non-2xx responses
// and bodies that do not decode as the expected envelope.
type TransportError struct {
	Cmd    string
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger %s: %s: %v", e.Cmd, e.Reason, e.Err)
	}
	return fmt.Sprintf("ledger %s: %s", e.Cmd, e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code identifies the error class in handler summary logs.
func (e *TransportError) Code() string { return "transport" }
