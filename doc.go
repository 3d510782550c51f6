// Package nersdk provides a Go SDK for a line-oriented named-entity tagger
// worker process.
//
// The SDK keeps a single long-lived classifier subprocess alive and turns
// concurrent, unordered classification requests into a strictly sequential
// stream of interactions with it. Each request's tagged output is parsed
// back into ordered entity maps, one per sentence.
//
// # Basic Usage
//
// For a one-shot classification, use the GetEntities function:
//
//	ctx := context.Background()
//	result, err := nersdk.GetEntities(ctx, "Barack Obama visited Paris.",
//	    nersdk.WithInstallPath("/opt/stanford-ner"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, sentence := range result {
//	    for _, category := range sentence.Categories() {
//	        fmt.Println(category, sentence.Get(category))
//	    }
//	}
//
// # Sessions
//
// Loading the classifier is expensive, so for more than one request keep a
// client open. Use NewClient, or the WithClient helper for automatic
// lifecycle management:
//
//	err := nersdk.WithClient(ctx, func(c nersdk.Client) error {
//	    result, err := c.GetEntities(ctx, "Angela Merkel met Emmanuel Macron in Berlin.")
//	    if err != nil {
//	        return err
//	    }
//	    // process result...
//	    return nil
//	},
//	    nersdk.WithInstallPath("/opt/stanford-ner"),
//	    nersdk.WithLogger(slog.Default()),
//	)
//
// Concurrent GetEntities calls on one client are safe: exactly one request
// is in flight against the worker at a time and queued requests complete in
// strict submission order.
//
// # Input Constraints
//
// Input text must not contain newline characters - newlines delimit
// messages on the worker protocol. Such inputs fail with ErrEmbeddedNewline.
//
// # Error Handling
//
// The SDK provides typed errors for different failure scenarios:
//
//	result, err := nersdk.GetEntities(ctx, text, nersdk.WithInstallPath(path))
//	if err != nil {
//	    if instErr, ok := errors.AsType[*nersdk.InstallNotFoundError](err); ok {
//	        log.Fatalf("tagger files missing: %v", instErr.Missing)
//	    }
//	    if procErr, ok := errors.AsType[*nersdk.ProcessError](err); ok {
//	        log.Fatalf("worker failed with exit code %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// This SDK requires a Java runtime and a tagger distribution (jar plus
// serialized classifier) on disk. Point WithInstallPath at the distribution
// directory; the java binary is found via $JAVA_HOME or PATH, or set
// explicitly with WithJavaPath.
package nersdk
