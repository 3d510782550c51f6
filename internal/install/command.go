package install

import (
	"fmt"
	"os"

	"github.com/wagiedev/ner-sdk-go/internal/config"
)

// mainClass is the CRF classifier entry point inside the tagger jar.
// With -readStdin it tags each stdin line and echoes slash-tagged output.
const mainClass = "edu.stanford.nlp.ie.crf.CRFClassifier"

// BuildArgs constructs the worker's java argument vector.
func BuildArgs(layout *Layout, options *config.Options) []string {
	heap := options.JavaHeap
	if heap == "" {
		heap = config.DefaultJavaHeap
	}

	return []string{
		"-mx" + heap,
		"-cp", layout.Jar,
		mainClass,
		"-loadClassifier", layout.Classifier,
		"-readStdin",
	}
}

// BuildEnvironment constructs the environment variables for the worker process.
func BuildEnvironment(options *config.Options) []string {
	// Start with current environment
	env := os.Environ()

	// Add or override with user-provided environment variables
	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
