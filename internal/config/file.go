package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML representation of tagger options.
//
// Example:
//
//	installPath: /opt/stanford-ner
//	classifier: english.muc.7class.distsim.crf.ser.gz
//	javaHeap: 1g
//	requestTimeout: 30s
type File struct {
	InstallPath    string `yaml:"installPath"`
	Jar            string `yaml:"jar"`
	Classifier     string `yaml:"classifier"`
	JavaPath       string `yaml:"javaPath"`
	JavaHeap       string `yaml:"javaHeap"`
	Cwd            string `yaml:"cwd"`
	RequestTimeout string `yaml:"requestTimeout"`
}

// LoadFile reads and parses a YAML options file.
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}

	if _, err := f.Timeout(); err != nil {
		return nil, fmt.Errorf("options file %s: %w", path, err)
	}

	return &f, nil
}

// Timeout parses the RequestTimeout field. An empty field means no timeout.
func (f *File) Timeout() (time.Duration, error) {
	if f.RequestTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(f.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout %q: %w", f.RequestTimeout, err)
	}

	return d, nil
}
