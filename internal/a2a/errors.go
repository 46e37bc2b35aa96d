// ABOUTME: Typed errors for A2A backend communication
// ABOUTME: Distinguishes connect, timeout, and protocol failures for the handler

package a2a

import (
	"fmt"
	"time"
)

// Error codes surfaced in RUN_ERROR events.
const (
	CodeConnectionError = "A2A_CONNECTION_ERROR"
	CodeTimeoutError    = "A2A_TIMEOUT_ERROR"
	CodeProtocolError   = "A2A_PROTOCOL_ERROR"
	CodeTaskFailed      = "TASK_FAILED"
	CodeTaskCanceled    = "TASK_CANCELED"
)

// ConnectionError means the backend could not be reached or the transport
// dropped mid-stream.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to A2A agent %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError means no event or heartbeat arrived within the idle window.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("A2A agent %s produced no event within %s", e.URL, e.Timeout)
}

// ProtocolError means the backend violated the A2A protocol: an unexpected
// HTTP status, or a frame that could not be decoded.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("A2A protocol error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("A2A protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
