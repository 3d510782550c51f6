package nersdk

import (
	"context"
)

// Client provides an interactive, stateful interface to a long-lived tagger
// worker process.
//
// Unlike the one-shot GetEntities() function, Client keeps the worker running
// across requests, avoiding the multi-second classifier load on every call.
// Concurrent GetEntities calls on the same client are serialized in FIFO
// order against the single worker.
//
// Lifecycle: Clients are single-use. After Close(), create a new client with
// NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithLogger(slog.Default()),
//	    WithInstallPath("/opt/stanford-ner"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entities, err := client.GetEntities(ctx, "Barack Obama visited Paris.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, em := range entities {
//	    for _, category := range em.Categories() {
//	        fmt.Println(category, em.Get(category))
//	    }
//	}
type Client interface {
	// Start validates the installation and spawns the worker process.
	// Must be called before GetEntities.
	// Returns JavaNotFoundError or InstallNotFoundError if the installation
	// is broken, or ConnectionError if the process fails to start.
	Start(ctx context.Context, opts ...Option) error

	// GetEntities submits text for classification and blocks until the
	// result is available, one EntityMap per worker output line.
	// The text must not contain newline characters.
	// Safe for concurrent use; calls are serialized in FIFO order.
	GetEntities(ctx context.Context, text string) (Result, error)

	// IsReady reports whether the worker process is running and accepting
	// requests.
	IsReady() bool

	// Close terminates the worker and cleans up resources.
	// In-flight and queued requests fail with ErrSessionClosed.
	// After Close(), the client cannot be reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new interactive tagger client.
//
// Call Start() with options to spawn the worker:
//
//	client := NewClient()
//	err := client.Start(ctx,
//	    WithInstallPath("/opt/stanford-ner"),
//	    WithRequestTimeout(30*time.Second),
//	)
func NewClient() Client {
	return newClientImpl()
}
