// Package config provides configuration types for the NER SDK.
package config

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for the tagger installation layout. These match the stock
// Stanford NER distribution the wire protocol originates from.
const (
	// DefaultJar is the tagger jar file name inside the install directory.
	DefaultJar = "stanford-ner.jar"

	// DefaultClassifier is the serialized classifier, resolved relative to
	// the install directory's classifiers/ subdirectory.
	DefaultClassifier = "english.all.3class.distsim.crf.ser.gz"

	// DefaultJavaHeap is the JVM max heap passed as -mx<heap>.
	DefaultJavaHeap = "700m"
)

// Options configures the behavior of a tagger client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// InstallPath is the directory containing the tagger distribution
	// (the jar and the classifiers/ subdirectory). Required unless a
	// custom Transport is injected.
	InstallPath string

	// Jar is the tagger jar file name inside InstallPath.
	// Defaults to DefaultJar.
	Jar string

	// Classifier is the serialized classifier file name, resolved under
	// InstallPath/classifiers. Defaults to DefaultClassifier.
	Classifier string

	// JavaPath is the explicit path to the java binary.
	// If empty, java is searched in $JAVA_HOME and PATH.
	JavaPath string

	// JavaHeap is the JVM max heap size (the -mx flag value).
	// Defaults to DefaultJavaHeap.
	JavaHeap string

	// Cwd sets the working directory for the worker process.
	Cwd string

	// Env provides additional environment variables for the worker process.
	Env map[string]string

	// RequestTimeout bounds how long a single tagging request may wait for
	// worker output, covering both queue time and in-flight time.
	// Zero means no timeout: a stalled worker suspends the request
	// indefinitely, matching the original protocol's behavior.
	RequestTimeout time.Duration

	// Stderr is a callback invoked for each line of worker stderr output.
	// The tagger prints classifier loading progress there.
	Stderr func(string)

	// Metrics is an optional Prometheus registerer for session metrics
	// (queue depth, in-flight requests, completion counters).
	// If nil, no metrics are collected.
	Metrics prometheus.Registerer

	// Transport allows injecting a custom transport implementation.
	// If nil, the default worker subprocess transport is created.
	// This field is not serialized.
	Transport Transport `json:"-" yaml:"-"`
}
