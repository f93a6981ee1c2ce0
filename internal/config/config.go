// Package config loads the multi-target connection configuration. The
// loaded Config is an immutable value handed to the orchestrator; nothing
// mutates it after Load returns.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultScriptsDir       = "./db/migration"
	DefaultMaxWorkers       = 4
	DefaultOperationTimeout = 5 * time.Minute
)

// Target is one independently configured database connection.
type Target struct {
	Name       string
	URL        string
	Username   string
	Password   string
	Concurrent bool // per-target opt-in for fleet concurrency
}

// Config holds everything the orchestrator needs: the target set, the
// script location, and the fleet concurrency settings.
type Config struct {
	ScriptsDir          string
	ActiveTarget        string
	ConcurrentExecution bool // global switch; ANDed with each target's flag
	MaxWorkers          int
	OperationTimeout    time.Duration
	Targets             map[string]Target
}

// yamlConfig is the raw YAML file representation.
type yamlConfig struct {
	Global struct {
		ScriptsDir          string `yaml:"scripts_dir"`
		ActiveTarget        string `yaml:"active_target"`
		ConcurrentExecution bool   `yaml:"concurrent_execution"`
		MaxWorkers          int    `yaml:"max_workers"`
		OperationTimeout    string `yaml:"operation_timeout"`
	} `yaml:"global"`
	Targets map[string]struct {
		URL        string `yaml:"url"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		Concurrent bool   `yaml:"concurrent"`
	} `yaml:"targets"`
}

// New returns a Config populated with default values and no targets.
func New() *Config {
	return &Config{
		ScriptsDir:       DefaultScriptsDir,
		MaxWorkers:       DefaultMaxWorkers,
		OperationTimeout: DefaultOperationTimeout,
		Targets:          map[string]Target{},
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.Global.ScriptsDir != "" {
		cfg.ScriptsDir = raw.Global.ScriptsDir
	}

	cfg.ActiveTarget = raw.Global.ActiveTarget
	cfg.ConcurrentExecution = raw.Global.ConcurrentExecution

	if raw.Global.MaxWorkers > 0 {
		cfg.MaxWorkers = raw.Global.MaxWorkers
	}

	if raw.Global.OperationTimeout != "" {
		d, err := time.ParseDuration(raw.Global.OperationTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing operation_timeout %q: %w", raw.Global.OperationTimeout, err)
		}

		cfg.OperationTimeout = d
	}

	for name, rt := range raw.Targets {
		cfg.Targets[name] = Target{
			Name:       name,
			URL:        rt.URL,
			Username:   rt.Username,
			Password:   rt.Password,
			Concurrent: rt.Concurrent,
		}
	}

	return cfg, nil
}

// MergeEnv overrides config fields from SCHEMAFLEET_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("SCHEMAFLEET_SCRIPTS_DIR"); v != "" {
		cfg.ScriptsDir = v
	}

	if v := os.Getenv("SCHEMAFLEET_ACTIVE_TARGET"); v != "" {
		cfg.ActiveTarget = v
	}

	if v := os.Getenv("SCHEMAFLEET_OPERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OperationTimeout = d
		}
	}

	if v := os.Getenv("SCHEMAFLEET_DATABASE_URL"); v != "" {
		name := cfg.ActiveTarget
		if name == "" {
			name = "default"
			cfg.ActiveTarget = name
		}

		t := cfg.Targets[name]
		t.Name = name
		t.URL = v
		cfg.Targets[name] = t
	}
}

// TargetNames returns the configured target names in stable order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
