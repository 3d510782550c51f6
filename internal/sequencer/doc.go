// Package sequencer serializes concurrent tagging requests against the
// single-consumer worker transport.
//
// The worker accepts one line of text at a time and emits tagged output
// asynchronously, with no request framing of its own. The Sequencer admits
// exactly one request to the transport at a time and releases queued
// requests in strict arrival order, so every output line can be attributed
// unambiguously to the request that is currently in flight.
//
// Completion is quantity-based, not delimiter-based: the worker may split
// one submitted text into several output lines (one per sentence), and the
// number of sentences is not known in advance. The only reliable signal is
// that the cumulative meaningful-token count of the emitted lines reaches
// the meaningful-token count of the text that was sent. See package token
// for the counting rules.
//
// Example usage:
//
//	transport := subprocess.NewWorkerTransport(log, options)
//	transport.Start(ctx)
//
//	seq := sequencer.New(log, transport, options.RequestTimeout, nil)
//	seq.Start(ctx)
//
//	entities, err := seq.Submit(ctx, "Barack Obama visited Paris.")
package sequencer
