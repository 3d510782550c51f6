package nersdk

import (
	"context"

	"github.com/wagiedev/ner-sdk-go/internal/client"
	"github.com/wagiedev/ner-sdk-go/internal/config"
)

// clientWrapper wraps the internal client to adapt it to the public interface.
type clientWrapper struct {
	impl *client.Client
}

// Compile-time check that *clientWrapper implements the Client interface.
var _ Client = (*clientWrapper)(nil)

// newClientImpl creates the internal client implementation.
func newClientImpl() Client {
	return &clientWrapper{impl: client.New()}
}

// Start validates the installation and spawns the worker process.
func (c *clientWrapper) Start(ctx context.Context, opts ...Option) error {
	return c.impl.Start(ctx, applyOptionsToConfig(opts))
}

// GetEntities submits text for classification and blocks until the result is available.
func (c *clientWrapper) GetEntities(ctx context.Context, text string) (Result, error) {
	maps, err := c.impl.GetEntities(ctx, text)
	if err != nil {
		return nil, err
	}

	return Result(maps), nil
}

// IsReady reports whether the worker process is running and accepting requests.
func (c *clientWrapper) IsReady() bool {
	return c.impl.IsReady()
}

// Close terminates the worker and cleans up resources.
func (c *clientWrapper) Close() error {
	return c.impl.Close()
}

// applyOptionsToConfig converts public options to internal config.Options.
func applyOptionsToConfig(opts []Option) *config.Options {
	options := applyOptions(opts)
	if options == nil {
		return nil
	}
	// Options is a type alias to config.Options, so direct cast works
	return options
}
