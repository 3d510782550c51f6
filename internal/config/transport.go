package config

import "context"

// Transport defines the interface for worker communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., a remote tagger).
//
// The default implementation is WorkerTransport which spawns a subprocess.
// Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any text is sent or lines are received.
	Start(ctx context.Context) error

	// ReadLines returns channels for receiving output lines and errors.
	// The line channel yields newline-delimited tagged output from the
	// worker, one line per receive, without the trailing newline.
	// The error channel yields any errors that occur during reading.
	// Both channels are closed when reading completes or an error occurs.
	ReadLines(ctx context.Context) (<-chan string, <-chan error)

	// SendLine sends one line of raw text to the worker.
	// The text must not contain newline characters; a single trailing
	// newline is appended as the message delimiter.
	// This method must be safe for concurrent use.
	SendLine(ctx context.Context, text string) error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool
}
