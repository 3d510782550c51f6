package install

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wagiedev/ner-sdk-go/internal/config"
	"github.com/wagiedev/ner-sdk-go/internal/errors"
)

const (
	// VersionCheckTimeout is the timeout for the java version probe.
	VersionCheckTimeout = 2 * time.Second

	// classifiersDir is the subdirectory of the install that holds
	// serialized classifiers, matching the stock distribution layout.
	classifiersDir = "classifiers"
)

// Layout holds the resolved absolute paths for a validated installation.
type Layout struct {
	// Java is the path to the java binary.
	Java string

	// Jar is the path to the tagger jar.
	Jar string

	// Classifier is the path to the serialized classifier.
	Classifier string
}

// Config holds configuration for installation discovery.
type Config struct {
	// InstallPath is the tagger distribution directory.
	InstallPath string

	// Jar overrides the jar file name. Empty means config.DefaultJar.
	Jar string

	// Classifier overrides the classifier file name.
	// Empty means config.DefaultClassifier.
	Classifier string

	// JavaPath is an explicit java binary path that skips PATH search.
	JavaPath string

	// SkipVersionCheck skips the java version probe during discovery.
	// Can also be controlled via NER_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the Java runtime and validates the tagger installation.
type Discoverer interface {
	// Discover resolves the worker's file layout.
	// Returns JavaNotFoundError if no java binary can be located, or
	// InstallNotFoundError if the jar or classifier is missing.
	Discover(ctx context.Context) (*Layout, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new installation discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover resolves the java binary and validates the installation files.
func (d *discoverer) Discover(ctx context.Context) (*Layout, error) {
	d.log.Debug("Discovering tagger installation")

	javaPath, err := d.findJava()
	if err != nil {
		d.log.Error("Failed to find java runtime", "error", err)

		return nil, err
	}

	d.log.Debug("Found java runtime", "java_path", javaPath)

	jarPath, classifierPath, err := d.validateInstall()
	if err != nil {
		d.log.Error("Tagger installation validation failed", "error", err)

		return nil, err
	}

	d.log.Debug("Validated tagger installation",
		"jar", jarPath,
		"classifier", classifierPath,
	)

	// Probe version unless skipped
	d.checkVersion(ctx, javaPath)

	return &Layout{
		Java:       javaPath,
		Jar:        jarPath,
		Classifier: classifierPath,
	}, nil
}

// findJava locates the java binary.
func (d *discoverer) findJava() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.JavaPath != "" {
		d.log.Debug("Using explicit java path", "java_path", d.cfg.JavaPath)

		if _, err := os.Stat(d.cfg.JavaPath); err == nil {
			return d.cfg.JavaPath, nil
		}

		d.log.Debug("Explicit java path not found", "java_path", d.cfg.JavaPath)

		return "", &errors.JavaNotFoundError{SearchedPaths: []string{d.cfg.JavaPath}}
	}

	searchedPaths := make([]string, 0, 4)

	// Check JAVA_HOME first
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		path := filepath.Join(javaHome, "bin", "java")
		searchedPaths = append(searchedPaths, path)

		d.log.Debug("Checking JAVA_HOME", "path", path)

		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// Search in PATH
	d.log.Debug("Searching for 'java' in PATH")

	if path, err := exec.LookPath("java"); err == nil {
		d.log.Debug("Found 'java' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		"/usr/local/bin/java",
		"/usr/bin/java",
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found java at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Java runtime not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.JavaNotFoundError{SearchedPaths: searchedPaths}
}

// validateInstall stats the jar and classifier files.
func (d *discoverer) validateInstall() (string, string, error) {
	jarName := d.cfg.Jar
	if jarName == "" {
		jarName = config.DefaultJar
	}

	classifierName := d.cfg.Classifier
	if classifierName == "" {
		classifierName = config.DefaultClassifier
	}

	jarPath := filepath.Join(d.cfg.InstallPath, jarName)
	classifierPath := filepath.Join(d.cfg.InstallPath, classifiersDir, classifierName)

	missing := make([]string, 0, 2)

	if _, err := os.Stat(jarPath); err != nil {
		missing = append(missing, jarPath)
	}

	if _, err := os.Stat(classifierPath); err != nil {
		missing = append(missing, classifierPath)
	}

	if len(missing) > 0 {
		return "", "", &errors.InstallNotFoundError{Missing: missing}
	}

	return jarPath, classifierPath, nil
}

// checkVersion probes the java version. Failures are logged and ignored;
// any java modern enough to exist can run the tagger jar.
func (d *discoverer) checkVersion(ctx context.Context, javaPath string) {
	// Skip if configured
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping java version check (configured)")

		return
	}

	// Skip if env var is set
	if os.Getenv("NER_SDK_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping java version check (NER_SDK_SKIP_VERSION_CHECK set)")

		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	// java prints its version banner to stderr
	cmd := exec.CommandContext(ctx, javaPath, "-version")

	output, err := cmd.CombinedOutput()
	if err != nil {
		d.log.Debug("Java version probe failed", "error", err)

		return
	}

	version := parseJavaVersion(string(output))
	if version == "" {
		d.log.Debug("Could not parse java version", "output", strings.TrimSpace(string(output)))

		return
	}

	d.log.Debug("Java version probe passed", "version", version)
}

// javaVersionPattern extracts the quoted version from the banner line,
// e.g. `openjdk version "21.0.2" 2024-01-16`.
var javaVersionPattern = regexp.MustCompile(`version "([^"]+)"`)

// parseJavaVersion extracts the version string from java -version output.
func parseJavaVersion(output string) string {
	match := javaVersionPattern.FindStringSubmatch(output)
	if match == nil {
		return ""
	}

	return match[1]
}
