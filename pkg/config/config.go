// Package config loads the optional leadmigrate configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/leadmigrate/pkg/leads"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration, in YAML or TOML.
type Config struct {
	// Fixture is the lead file to migrate. Relative paths are resolved
	// against the directory of the configuration file.
	Fixture string `yaml:"fixture" toml:"fixture" jsonschema:"description=Lead fixture to migrate"`

	// AtomicWrite defaults to true when unset.
	AtomicWrite *bool `yaml:"atomic_write" toml:"atomic_write" jsonschema:"description=Write through a temp file and rename,default=true"`

	// Renames and Defaults replace the built-in rule set when either is set.
	Renames  []RenameRule  `yaml:"renames" toml:"renames" jsonschema:"description=Fields to rename"`
	Defaults []DefaultRule `yaml:"defaults" toml:"defaults" jsonschema:"description=Fields to add when missing"`
}

type RenameRule struct {
	From string `yaml:"from" toml:"from" jsonschema:"required"`
	To   string `yaml:"to" toml:"to" jsonschema:"required"`
}

type DefaultRule struct {
	Field string      `yaml:"field" toml:"field" jsonschema:"required"`
	Value interface{} `yaml:"value" toml:"value"`
}

// Load reads a configuration file. The format is chosen by extension:
// .yml/.yaml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yml, .yaml or .toml)", ext)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Fixture != "" && !filepath.IsAbs(cfg.Fixture) {
		abs, err := filepath.Abs(filepath.Join(filepath.Dir(path), cfg.Fixture))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve fixture path: %w", err)
		}
		cfg.Fixture = abs
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	for i, r := range c.Renames {
		if r.From == "" || r.To == "" {
			return fmt.Errorf("renames[%d]: from and to are required", i)
		}
		if r.From == r.To {
			return fmt.Errorf("renames[%d]: from and to are both %q", i, r.From)
		}
	}
	for i, d := range c.Defaults {
		if d.Field == "" {
			return fmt.Errorf("defaults[%d]: field is required", i)
		}
	}
	return nil
}

// UseAtomicWrite reports whether writes go through a temp file and rename.
func (c *Config) UseAtomicWrite() bool {
	if c == nil || c.AtomicWrite == nil {
		return true
	}
	return *c.AtomicWrite
}

// Rules converts the configured rules, renames first. It returns nil when
// nothing is configured so callers fall back to leads.DefaultRules.
func (c *Config) Rules() ([]leads.Rule, error) {
	if c == nil || (len(c.Renames) == 0 && len(c.Defaults) == 0) {
		return nil, nil
	}

	rules := make([]leads.Rule, 0, len(c.Renames)+len(c.Defaults))
	for _, r := range c.Renames {
		rules = append(rules, leads.RenameField{From: r.From, To: r.To})
	}
	for _, d := range c.Defaults {
		var value json.RawMessage
		if d.Value != nil {
			encoded, err := json.Marshal(d.Value)
			if err != nil {
				return nil, fmt.Errorf("default for %s: %w", d.Field, err)
			}
			value = encoded
		}
		rules = append(rules, leads.DefaultField{Field: d.Field, Value: value})
	}
	return rules, nil
}
