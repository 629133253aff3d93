package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `analysis:
  year: 2020
  month: 3
  carrier: "H2 Electrolysis"
  price_threshold: 65
  min_turndown: 0.3
  outage_fraction: 0.1
  seed: 7
  synthetic_price: false
  maintenance:
    - unit: "DE0 H2 Electrolysis"
      start: "2020-03-02T00:00:00Z"
      end: "2020-03-03T00:00:00Z"
input:
  flows: "data/links_p0.csv"
  units: "data/links.csv"
  prices: "data/prices.csv"
  price_column: "DE0"
export:
  dir: "out"
  formats: ["csv", "json"]
metrics:
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "h2cf"
  topic_prefix: "lab/h2cf"
logging:
  level: "debug"
server:
  address: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"year", cfg.Analysis.Year, 2020},
		{"month", cfg.Analysis.Month, 3},
		{"carrier", cfg.Analysis.Carrier, "H2 Electrolysis"},
		{"threshold", cfg.Analysis.PriceThreshold, 65.0},
		{"turndown", cfg.Analysis.MinTurndown, 0.3},
		{"outage", cfg.Analysis.OutageFraction, 0.1},
		{"seed", cfg.Analysis.Seed, int64(7)},
		{"synthetic", cfg.Analysis.SyntheticPrice, false},
		{"flows", cfg.Input.Flows, "data/links_p0.csv"},
		{"price_column", cfg.Input.PriceColumn, "DE0"},
		{"export_dir", cfg.Export.Dir, "out"},
		{"formats", len(cfg.Export.Formats), 2},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "lab/h2cf"},
		{"level", cfg.Logging.Level, "debug"},
		{"format", cfg.Logging.Format, "json"},
		{"address", cfg.Server.Address, ":9000"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}

	windows, err := cfg.Analysis.MaintenanceWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "DE0 H2 Electrolysis", windows[0].Unit)

	p := cfg.Analysis.Params(2020, 3)
	assert.Equal(t, 65.0, p.PriceThreshold)
	assert.NoError(t, p.Validate())
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{"input":{"flows":"f.csv","units":"u.csv"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "electrolysis", cfg.Analysis.Carrier)
	assert.Equal(t, 50.0, cfg.Analysis.PriceThreshold)
	assert.Equal(t, 0.4, cfg.Analysis.MinTurndown)
	assert.Equal(t, 0.05, cfg.Analysis.OutageFraction)
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
	assert.True(t, cfg.Analysis.SyntheticPrice)
	assert.Equal(t, "results", cfg.Export.Dir)
	assert.Equal(t, []string{"csv"}, cfg.Export.Formats)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Len(t, cfg.Analysis.SweepMonths(), 12)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "analysis:\n  price_threshold: 40\n")
	t.Setenv("H2CF_ANALYSIS__PRICE_THRESHOLD", "72.5")
	t.Setenv("H2CF_LOGGING__FORMAT", "console")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 72.5, cfg.Analysis.PriceThreshold)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("H2CF_ANALYSIS__MIN_TURNDOWN", "0.7")
	t.Setenv("H2CF_EXPORT__DIR", "elsewhere")
	t.Setenv("H2CF_LOGGING__MAX_SIZE_MB", "10")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Analysis.MinTurndown)
	assert.Equal(t, "elsewhere", cfg.Export.Dir)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	// untouched keys keep their defaults
	assert.Equal(t, 50.0, cfg.Analysis.PriceThreshold)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"turndown":    "analysis:\n  min_turndown: 1.5\n",
		"outage":      "analysis:\n  outage_fraction: -0.2\n",
		"month":       "analysis:\n  months: [0, 4]\n",
		"maintenance": "analysis:\n  maintenance:\n    - start: \"2020-01-02T00:00:00Z\"\n      end: \"2020-01-01T00:00:00Z\"\n",
		"format":      "export:\n  formats: [\"xml\"]\n",
		"level":       "logging:\n  level: \"loud\"\n",
		"source":      "input:\n  price_source:\n    conf:\n      client_id: x\n",
		"backups":     "logging:\n  file: h2cf.log\n  max_backups: -1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestInputValidate(t *testing.T) {
	assert.Error(t, InputConfig{}.Validate())
	assert.Error(t, InputConfig{Flows: "f.csv"}.Validate())
	assert.NoError(t, InputConfig{Flows: "f.csv", Units: "u.csv"}.Validate())
}

func TestLoadPriceSourceAndLogFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `input:
  price_source:
    type: wholesale_market
    conf:
      client_id: "id"
      client_secret: "secret"
      auth_url: "https://auth.example/token"
logging:
  file: "logs/h2cf.log"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Input.PriceSource)
	assert.Equal(t, "wholesale_market", cfg.Input.PriceSource.Type)
	assert.Equal(t, "id", cfg.Input.PriceSource.Conf["client_id"])
	assert.Equal(t, "logs/h2cf.log", cfg.Logging.File)
	assert.Equal(t, 50, cfg.Logging.MaxSizeMB)
}
