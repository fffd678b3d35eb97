package client

import "fmt"

// TransportError wraps a network/connection failure from the underlying
// transport. The cause is surfaced unchanged; no retry happens here.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates the response body was not valid JSON. The raw body
// is kept so callers can inspect what the service actually returned.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode response: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
