package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: dev\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Scoring.AgentTimeout)
	assert.Equal(t, 4, cfg.Scoring.BatchWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "stocksage.analyses", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadParsesScoringSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
scoring:
  agent_timeout: 2s
  batch_workers: 8
  agents:
    macro:
      weight: 0.5
    sentiment:
      enabled: false
  profiles:
    growth:
      technical: 2.0
      fundamental: 1.5
`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Scoring.AgentTimeout)
	assert.Equal(t, 8, cfg.Scoring.BatchWorkers)
	assert.Equal(t, 0.5, cfg.Scoring.Agents["macro"].Weight)
	assert.True(t, cfg.Scoring.Agents["macro"].IsEnabled())
	assert.False(t, cfg.Scoring.Agents["sentiment"].IsEnabled())
	assert.Equal(t, 2.0, cfg.Scoring.Profiles["growth"]["technical"])
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: -1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "logging:\n  level: loud\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "kafka:\n  enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.brokers")

	_, err = Load(writeConfig(t, `
scoring:
  agents:
    technical:
      enabled: false
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one agent")

	_, err = Load(writeConfig(t, `
scoring:
  profiles:
    broken:
      macro: -1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight must be >= 0")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: prod\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}
