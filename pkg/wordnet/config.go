package wordnet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one database handle. There is no ambient configuration:
// a Database is constructed from a Config and threaded through all calls.
type Config struct {
	// Path is the SQLite storage location. ":memory:" is accepted.
	Path string `yaml:"path"`
	// BatchSize is the row count per INSERT statement during bulk load.
	BatchSize int `yaml:"batch_size"`
	// AllowConcurrent opts into cross-goroutine use of the connection.
	// Safety is then delegated to SQLite's own locking.
	AllowConcurrent bool `yaml:"allow_concurrent"`
}

// DefaultConfig returns the defaults applied before any file overrides.
func DefaultConfig() Config {
	return Config{BatchSize: 256}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
