// Package client implements the interactive tagger client by wiring the
// worker transport, the request sequencer, and optional metrics together.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/ner-sdk-go/internal/config"
	"github.com/wagiedev/ner-sdk-go/internal/errors"
	"github.com/wagiedev/ner-sdk-go/internal/metrics"
	"github.com/wagiedev/ner-sdk-go/internal/sequencer"
	"github.com/wagiedev/ner-sdk-go/internal/subprocess"
	"github.com/wagiedev/ner-sdk-go/internal/tagged"
)

// Client implements the tagger client.
type Client struct {
	log       *slog.Logger
	transport config.Transport
	sequencer *sequencer.Sequencer
	options   *config.Options

	// Fatal error storage
	errMu    sync.RWMutex
	fatalErr error

	// Errgroup for goroutine management
	eg *errgroup.Group

	// Lifecycle management
	mu            sync.Mutex
	done          chan struct{}
	connected     bool
	closed        bool      // Tracks if Close() has been called
	closeOnce     sync.Once // Ensures Close() only runs once
	sessionCancel context.CancelFunc
}

// New creates a new tagger client.
//
// The client is not connected after creation. Call Start() with options to connect.
func New() *Client {
	return &Client{
		done: make(chan struct{}),
	}
}

// setFatalError stores the first fatal error encountered.
func (c *Client) setFatalError(err error) {
	if err == nil {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}
}

// getFatalError returns the stored fatal error, if any.
func (c *Client) getFatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// isConnected returns true if the client is connected.
// This method is safe to call from any goroutine.
func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// initializeCore performs common client initialization.
// Caller must hold c.mu lock. Lock is held on return.
func (c *Client) initializeCore(ctx context.Context, options *config.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Default to empty options if nil
	if options == nil {
		options = &config.Options{}
	}

	// Extract logger from options, defaulting to a no-op logger
	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.log = log.With("component", "client")
	c.options = options

	// Create or use injected transport
	var transport config.Transport

	if options.Transport != nil {
		transport = options.Transport

		c.log.Debug("Using injected custom transport")
	} else {
		transport = subprocess.NewWorkerTransport(c.log, options)
	}

	// The session must outlive the caller's startup context: a startup
	// timeout bounds Start, not the worker's lifetime. The worker process
	// and the read loop run against this session context, cancelled in
	// Close().
	sessionCtx, cancel := context.WithCancel(context.Background())
	c.sessionCancel = cancel

	if err := transport.Start(sessionCtx); err != nil {
		cancel()

		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = transport

	// Create the sequencer that serializes requests against the worker
	collector := metrics.NewCollector(options.Metrics)

	c.sequencer = sequencer.New(c.log, transport, options.RequestTimeout, collector)
	if err := c.sequencer.Start(sessionCtx); err != nil {
		transport.Close()
		cancel()

		return fmt.Errorf("start sequencer: %w", err)
	}

	return nil
}

// Start establishes a connection to the tagger worker.
//
// This method validates the installation, spawns the worker subprocess, and
// starts the request sequencer.
//
// Returns JavaNotFoundError or InstallNotFoundError if the installation is
// broken, or ConnectionError if the process fails to start.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if c.connected {
		return errors.ErrClientAlreadyConnected
	}

	if err := c.initializeCore(ctx, options); err != nil {
		return err
	}

	// Create errgroup with background context for goroutine management.
	// The caller's ctx may carry a startup timeout; the session should
	// outlive it and stay connected until explicitly closed via Close().
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	// Watch the sequencer for fatal transport errors
	c.eg.Go(func() error {
		return c.watchSequencer(egCtx)
	})

	c.connected = true
	c.log.Info("Client started successfully")

	return nil
}

// watchSequencer records the sequencer's fatal error, if any, once it stops.
// Returns nil on clean shutdown.
func (c *Client) watchSequencer(ctx context.Context) error {
	select {
	case <-c.sequencer.Done():
		if err := c.sequencer.FatalError(); err != nil {
			c.log.Error("Sequencer stopped with transport error", "error", err)
			c.setFatalError(err)

			return err
		}

		return nil

	case <-c.done:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetEntities submits text for classification and blocks until the result
// is available.
//
// Concurrent calls are serialized in FIFO order against the single worker.
// The text must not contain newline characters.
func (c *Client) GetEntities(ctx context.Context, text string) ([]*tagged.EntityMap, error) {
	if !c.isConnected() {
		return nil, errors.ErrClientNotConnected
	}

	// Fail fast on a dead transport rather than queueing against it
	if err := c.getFatalError(); err != nil {
		return nil, err
	}

	return c.sequencer.Submit(ctx, text)
}

// IsReady returns true if the client is connected and the transport is
// ready for communication.
func (c *Client) IsReady() bool {
	if !c.isConnected() {
		return false
	}

	return c.transport.IsReady()
}

// Close terminates the worker session and cleans up resources.
//
// In-flight and queued requests fail with ErrSessionClosed. After Close(),
// the client cannot be reused - create a new client with New().
// This method is safe to call multiple times.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasConnected := c.connected
		c.connected = false
		c.mu.Unlock()

		if !wasConnected {
			return
		}

		c.log.Info("Closing client")

		// Signal shutdown
		close(c.done)

		// Stop the sequencer, failing pending requests
		if c.sequencer != nil {
			c.sequencer.Stop()
		}

		// Close transport and capture error
		if c.transport != nil {
			closeErr = c.transport.Close()
		}

		// Release the session context so the worker process and read loop stop
		if c.sessionCancel != nil {
			c.sessionCancel()
		}

		// Wait for errgroup goroutines to complete
		if c.eg != nil {
			if err := c.eg.Wait(); err != nil && closeErr == nil {
				closeErr = err
			}
		}

		c.log.Info("Client closed")
	})

	return closeErr
}
