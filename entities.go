package nersdk

import (
	"context"
)

// GetEntities runs a one-shot classification: it spawns a worker, tags the
// given text, and shuts the worker down again.
//
// The worker loads its classifier on startup, which takes several seconds.
// Callers tagging more than one text should use NewClient() and keep the
// worker alive across requests instead.
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	entities, err := nersdk.GetEntities(ctx, "Barack Obama visited Paris.",
//	    nersdk.WithLogger(logger),
//	    nersdk.WithInstallPath("/opt/stanford-ner"),
//	)
//
// The text must not contain newline characters. The result holds one
// EntityMap per worker output line.
func GetEntities(ctx context.Context, text string, opts ...Option) (Result, error) {
	var result Result

	err := WithClient(ctx, func(c Client) error {
		entities, err := c.GetEntities(ctx, text)
		if err != nil {
			return err
		}

		result = entities

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return result, nil
}
