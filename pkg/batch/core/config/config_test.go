package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-record/pkg/batch/core/config"
)

const sampleYAML = `
surfin:
  batch:
    job_name: import-people
    batch_size: 50
  executor:
    max_concurrency: 2
  tracing:
    service_name: ${TEST_SERVICE_NAME}
  database:
    metadata:
      type: sqlite
      database: /tmp/reports.db
`

func TestLoadConfig_LayersDefaultsYAMLAndEnv(t *testing.T) {
	t.Setenv("TEST_SERVICE_NAME", "people-importer")
	t.Setenv("SURFIN_BATCH_ERROR_THRESHOLD", "5")
	t.Setenv("SURFIN_METRICS_ENABLED", "true")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.env"), config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "import-people", cfg.Surfin.Batch.JobName)
	assert.Equal(t, 50, cfg.Surfin.Batch.BatchSize)
	assert.Equal(t, int64(5), cfg.Surfin.Batch.ErrorThreshold)
	assert.Equal(t, 2, cfg.Surfin.Executor.MaxConcurrency)
	assert.True(t, cfg.Surfin.Metrics.Enabled)
	assert.Equal(t, "people-importer", cfg.Surfin.Tracing.ServiceName)

	// Defaults not mentioned in the YAML survive.
	assert.Equal(t, 3, cfg.Surfin.Batch.Retry.MaxAttempts)
	assert.Equal(t, "INFO", cfg.Surfin.System.Logging.Level)
	assert.Equal(t, 100, cfg.Surfin.Dispatch.QueueCapacity)

	db, ok := cfg.Surfin.AdapterConfigs["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sqlite", db["type"])
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SURFIN_SYSTEM_LOGGING_LEVEL=DEBUG\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SURFIN_SYSTEM_LOGGING_LEVEL") })

	cfg, err := config.LoadConfig(envFile, nil)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Surfin.System.Logging.Level)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("surfin:\n  batch:\n    batch_size: -3\n"))
	assert.ErrorContains(t, err, "batch_size")

	t.Setenv("SURFIN_EXECUTOR_MAX_CONCURRENCY", "not-a-number")
	_, err = config.LoadConfig("", nil)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("surfin: [unclosed"))
	assert.Error(t, err)
}

func TestOsEnvironmentExpander_Fallbacks(t *testing.T) {
	t.Setenv("TEST_REPORT_DB", "reports.db")
	t.Setenv("TEST_EMPTY", "")

	out, err := config.NewOsEnvironmentExpander().Expand([]byte("db: ${TEST_REPORT_DB:-default.db}, host: ${TEST_UNSET_HOST:-localhost}, empty: ${TEST_EMPTY:-x}, bare: $TEST_UNSET_HOST."))

	require.NoError(t, err)
	assert.Equal(t, "db: reports.db, host: localhost, empty: x, bare: .", string(out))
}
