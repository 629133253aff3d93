package config

import (
	"fmt"

	"github.com/kilianp07/h2cf/core/factory"
)

// InputConfig points at the CSV exports of the network model.
type InputConfig struct {
	Flows  string `json:"flows"`
	Units  string `json:"units"`
	Prices string `json:"prices"`
	// PriceColumn picks the price column when the file has several.
	PriceColumn string `json:"price_column"`
	// PriceSource fetches prices per month when no price file is given.
	PriceSource *factory.ModuleConfig `json:"price_source"`
}

// Validate checks that the mandatory tables are configured.
func (c InputConfig) Validate() error {
	if c.Flows == "" {
		return fmt.Errorf("flows path is required")
	}
	if c.Units == "" {
		return fmt.Errorf("units path is required")
	}
	return nil
}

// ExportConfig controls where reports are written.
type ExportConfig struct {
	Dir     string   `json:"dir"`
	Formats []string `json:"formats"`
	// Textfile, when set, receives a Prometheus text exposition after batch runs.
	Textfile string `json:"textfile"`
}

func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"csv"}
	}
}

func (c ExportConfig) Validate() error {
	for _, f := range c.Formats {
		switch f {
		case "csv", "json":
		default:
			return fmt.Errorf("unknown export format %s", f)
		}
	}
	return nil
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address        string   `json:"address"`
	AllowedOrigins []string `json:"allowed_origins"`
	MaxBodyMB      int      `json:"max_body_mb"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.MaxBodyMB <= 0 {
		c.MaxBodyMB = 32
	}
}

func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
