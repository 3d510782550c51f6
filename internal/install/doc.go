// Package install provides discovery and validation of the tagger
// installation, plus worker command building.
//
// This package provides three main capabilities:
//
// # Java Discovery
//
// The Discoverer interface locates the Java runtime and validates the
// tagger installation files:
//
//	discoverer := install.NewDiscoverer(&install.Config{
//	    InstallPath: "/opt/stanford-ner",
//	    Logger:      slog.Default(),
//	})
//	layout, err := discoverer.Discover(ctx)
//
// Java discovery searches in the following order:
//  1. Explicit path in Config.JavaPath (if provided)
//  2. $JAVA_HOME/bin/java
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin)
//
// # Installation Validation
//
// The tagger jar and serialized classifier are stat'ed once during
// discovery, before any request can be submitted. Missing files surface as
// InstallNotFoundError so a broken installation fails fast at Start rather
// than hanging the first request.
//
// # Command Building
//
// The package builds the worker's argument vector and environment:
//
//	args := install.BuildArgs(layout, options)
//	env := install.BuildEnvironment(options)
package install
