package nersdk

import "github.com/wagiedev/ner-sdk-go/internal/errors"

// Re-export error types from internal package

// JavaNotFoundError indicates the Java runtime binary was not found.
type JavaNotFoundError = errors.JavaNotFoundError

// InstallNotFoundError indicates required tagger installation files are missing.
type InstallNotFoundError = errors.InstallNotFoundError

// ConnectionError indicates failure to start or connect to the worker process.
type ConnectionError = errors.ConnectionError

// ProcessError indicates the worker process failed.
type ProcessError = errors.ProcessError

// NERSDKError is the base interface for all SDK errors.
type NERSDKError = errors.NERSDKError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.ErrClientNotConnected

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.ErrClientAlreadyConnected

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected

	// ErrStdinClosed indicates worker stdin was closed by a cancelled write.
	ErrStdinClosed = errors.ErrStdinClosed

	// ErrRequestTimeout indicates a tagging request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrSessionClosed indicates the session was shut down with requests pending.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrEmbeddedNewline indicates the input text contains a newline character.
	ErrEmbeddedNewline = errors.ErrEmbeddedNewline
)
