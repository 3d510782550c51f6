package errors

import (
	"errors"
	"fmt"
)

// NERSDKError is the base interface for all SDK errors.
type NERSDKError interface {
	error
	IsNERSDKError() bool
}

// Compile-time verification that all error types implement NERSDKError.
var (
	_ NERSDKError = (*JavaNotFoundError)(nil)
	_ NERSDKError = (*InstallNotFoundError)(nil)
	_ NERSDKError = (*ConnectionError)(nil)
	_ NERSDKError = (*ProcessError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.New("client not connected")

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.New("client already connected")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with New()")

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrRequestTimeout indicates a tagging request timed out waiting for worker output.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrSessionClosed indicates the session was shut down while requests were
	// still pending. Pending and queued requests fail with this error instead
	// of waiting forever.
	ErrSessionClosed = errors.New("session closed")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrEmbeddedNewline indicates the input text contains a newline character.
	// Newlines delimit messages on the worker protocol, so they are rejected
	// before dispatch rather than corrupting the stream.
	ErrEmbeddedNewline = errors.New("input text must not contain newline characters")
)

// JavaNotFoundError indicates the Java runtime binary was not found.
type JavaNotFoundError struct {
	SearchedPaths []string
}

func (e *JavaNotFoundError) Error() string {
	return fmt.Sprintf("java runtime not found in: %v", e.SearchedPaths)
}

// IsNERSDKError implements NERSDKError.
func (e *JavaNotFoundError) IsNERSDKError() bool { return true }

// InstallNotFoundError indicates required tagger installation files are
// missing. This is detected once at Start, before any request is admitted.
type InstallNotFoundError struct {
	Missing []string
}

func (e *InstallNotFoundError) Error() string {
	return fmt.Sprintf("tagger installation files not found: %v", e.Missing)
}

// IsNERSDKError implements NERSDKError.
func (e *InstallNotFoundError) IsNERSDKError() bool { return true }

// ConnectionError indicates failure to start or connect to the worker process.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to tagger worker: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsNERSDKError implements NERSDKError.
func (e *ConnectionError) IsNERSDKError() bool { return true }

// ProcessError indicates the worker process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tagger worker failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("tagger worker failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsNERSDKError implements NERSDKError.
func (e *ProcessError) IsNERSDKError() bool { return true }
