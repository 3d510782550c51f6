package nersdk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/ner-sdk-go/internal/config"
)

// Option configures Options using the functional options pattern.
// This is the primary option type for configuring clients and one-shot calls.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithInstallPath sets the tagger distribution directory (the directory
// containing the jar and the classifiers/ subdirectory).
func WithInstallPath(path string) Option {
	return func(o *Options) {
		o.InstallPath = path
	}
}

// WithJar overrides the tagger jar file name inside the install directory.
// Defaults to "stanford-ner.jar".
func WithJar(name string) Option {
	return func(o *Options) {
		o.Jar = name
	}
}

// WithClassifier selects the serialized classifier, resolved under the
// install directory's classifiers/ subdirectory.
// Defaults to "english.all.3class.distsim.crf.ser.gz".
func WithClassifier(name string) Option {
	return func(o *Options) {
		o.Classifier = name
	}
}

// ===== Java Runtime =====

// WithJavaPath sets the explicit path to the java binary.
// If not set, java is searched in $JAVA_HOME and PATH.
func WithJavaPath(path string) Option {
	return func(o *Options) {
		o.JavaPath = path
	}
}

// WithJavaHeap sets the JVM max heap size (the -mx flag value, e.g. "1g").
// Defaults to "700m".
func WithJavaHeap(heap string) Option {
	return func(o *Options) {
		o.JavaHeap = heap
	}
}

// WithCwd sets the working directory for the worker process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the worker process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// ===== Request Handling =====

// WithRequestTimeout bounds how long a single request may wait for worker
// output, covering both queue time and in-flight time. Zero (the default)
// means no timeout: a stalled worker suspends the request indefinitely.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = d
	}
}

// ===== Observability =====

// WithStderr sets a callback invoked for each line of worker stderr output.
// The tagger prints classifier loading progress there.
func WithStderr(fn func(string)) Option {
	return func(o *Options) {
		o.Stderr = fn
	}
}

// WithMetricsRegistry enables Prometheus session metrics (queue depth,
// in-flight requests, completion counters) on the given registerer.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Metrics = reg
	}
}

// ===== Advanced =====

// WithTransport injects a custom transport implementation, bypassing the
// default worker subprocess. Useful for testing and remote taggers.
func WithTransport(t Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// OptionsFromFile loads options from a YAML file and returns them as a
// slice of Option values. Callers typically prepend these so explicit
// options take precedence:
//
//	fileOpts, err := nersdk.OptionsFromFile("tagger.yaml")
//	if err != nil {
//	    return err
//	}
//	opts := append(fileOpts, nersdk.WithLogger(slog.Default()))
func OptionsFromFile(path string) ([]Option, error) {
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	timeout, err := f.Timeout()
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, 7)

	if f.InstallPath != "" {
		opts = append(opts, WithInstallPath(f.InstallPath))
	}

	if f.Jar != "" {
		opts = append(opts, WithJar(f.Jar))
	}

	if f.Classifier != "" {
		opts = append(opts, WithClassifier(f.Classifier))
	}

	if f.JavaPath != "" {
		opts = append(opts, WithJavaPath(f.JavaPath))
	}

	if f.JavaHeap != "" {
		opts = append(opts, WithJavaHeap(f.JavaHeap))
	}

	if f.Cwd != "" {
		opts = append(opts, WithCwd(f.Cwd))
	}

	if timeout > 0 {
		opts = append(opts, WithRequestTimeout(timeout))
	}

	return opts, nil
}
