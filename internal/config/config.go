// Package config loads optional YAML defaults for the command-line flags,
// so a deployment can pin a standing set of options (format, database
// filter, key pattern, load target) without repeating them on every
// invocation. CLI flags always win over a config value.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds default values for the CLI surface. Every field is optional;
// zero values mean "not set, let the flag default apply". Load.Password and
// Load.DB are parsed but the CLI does not pass them to the loader; only
// Load.Addr and Load.QPS take effect.
type Config struct {
	Format    string   `yaml:"format"`
	Databases []uint32 `yaml:"databases"`
	Types     []string `yaml:"types"`
	Keys      string   `yaml:"keys"`

	Load struct {
		Addr     string  `yaml:"addr"`
		Password string  `yaml:"password"`
		DB       int     `yaml:"db"`
		QPS      float64 `yaml:"qps"`
	} `yaml:"load"`

	path string
}

// ValidationError collects configuration issues found by Validate.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid config")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, err := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads and parses a YAML defaults file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	cfg.path = path

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in the package defaults for any field left unset.
func (c *Config) ApplyDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate reports whether the parsed config is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	switch c.Format {
	case "json", "plain", "protocol", "nil":
	default:
		errs = append(errs, fmt.Sprintf("format: unsupported value %q", c.Format))
	}

	for _, t := range c.Types {
		switch t {
		case "string", "list", "set", "sortedset", "sorted-set", "sorted_set", "hash":
		default:
			errs = append(errs, fmt.Sprintf("types: unsupported value %q", t))
		}
	}

	if c.Load.QPS < 0 {
		errs = append(errs, "load.qps: must be >= 0")
	}

	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}
