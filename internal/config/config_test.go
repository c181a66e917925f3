package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ospsuite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		errType     apperrors.ErrorType
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, ',', cfg.DelimiterRune())
				assert.Equal(t, 0, cfg.Concurrency.MaxDegreeOfParallelism)
				assert.False(t, cfg.Storage.Enabled)
			},
		},
		{
			name: "file overrides defaults",
			file: "logging:\n  level: debug\nimport:\n  delimiter: \";\"\nconcurrency:\n  max_degree_of_parallelism: 3\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format, "unset keys keep defaults")
				assert.Equal(t, ';', cfg.DelimiterRune())
				assert.Equal(t, 3, cfg.Concurrency.MaxDegreeOfParallelism)
			},
		},
		{
			name: "env overrides file",
			file: "logging:\n  level: debug\n",
			env: map[string]string{
				"OSPS_LOGGING_LEVEL":          "warn",
				"OSPS_STORAGE_ENABLED":        "true",
				"OSPS_TELEMETRY_METRICS_FILE": "metrics.prom",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.True(t, cfg.Storage.Enabled)
				assert.Equal(t, "metrics.prom", cfg.Telemetry.MetricsFile)
			},
		},
		{
			name:    "invalid level",
			env:     map[string]string{"OSPS_LOGGING_LEVEL": "verbose"},
			wantErr: true,
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "invalid delimiter",
			file:    "import:\n  delimiter: \"::\"\n",
			wantErr: true,
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "negative parallelism",
			env:     map[string]string{"OSPS_CONCURRENCY_MAX_DEGREE_OF_PARALLELISM": "-1"},
			wantErr: true,
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "malformed file",
			file:    "logging: [",
			wantErr: true,
			errType: apperrors.ErrTypeConfig,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"OSPS_STORAGE_ENABLED": "maybe"},
			wantErr: true,
			errType: apperrors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.OutputDir = filepath.Join(base, "abs-out")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "abs-out"), paths.OutputDir)
	assert.Equal(t, filepath.Join(base, "logs", "ospsuite.log"), paths.LogFile)
	assert.Equal(t, filepath.Join(base, "data", "observed_data.db"), paths.DatabaseFile)
	assert.Equal(t, filepath.Join(base, "abs-out", "pk.csv"), paths.OutputPath("pk.csv"))
	assert.Equal(t, "/tmp/x.csv", paths.OutputPath("/tmp/x.csv"))

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.DataDir, paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
