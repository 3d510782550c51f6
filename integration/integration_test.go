//go:build integration

package integration

import (
	"errors"
	"os"
	"testing"

	nersdk "github.com/wagiedev/ner-sdk-go"
)

// installPath returns the tagger install directory for integration tests,
// taken from NER_SDK_INSTALL_PATH.
func installPath(t *testing.T) string {
	t.Helper()

	path := os.Getenv("NER_SDK_INSTALL_PATH")
	if path == "" {
		t.Skip("NER_SDK_INSTALL_PATH not set")
	}

	return path
}

// skipIfTaggerNotInstalled skips the test if the error indicates a missing
// java runtime or tagger installation.
func skipIfTaggerNotInstalled(t *testing.T, err error) {
	t.Helper()

	var jnfErr *nersdk.JavaNotFoundError
	if errors.As(err, &jnfErr) {
		t.Skip("java runtime not installed")
	}

	var instErr *nersdk.InstallNotFoundError
	if errors.As(err, &instErr) {
		t.Skip("tagger installation not found")
	}
}
