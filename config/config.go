package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/h2cf/core/metrics"
	"github.com/kilianp07/h2cf/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore, e.g. H2CF_ANALYSIS__PRICE_THRESHOLD=65.
const EnvPrefix = "H2CF_"

type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Input    InputConfig    `json:"input"`
	Export   ExportConfig   `json:"export"`
	Metrics  metrics.Config `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Server   ServerConfig   `json:"server"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	cfg := &Config{Analysis: DefaultAnalysis()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields in every section.
func (c *Config) SetDefaults() {
	c.Analysis.SetDefaults()
	c.Export.SetDefaults()
	c.Logging.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if ps := c.Input.PriceSource; ps != nil && ps.Type == "" {
		return fmt.Errorf("input: price_source.type is required")
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Load reads the configuration file at path, applies H2CF_ environment
// overrides and validates the result. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := &Config{Analysis: DefaultAnalysis()}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
