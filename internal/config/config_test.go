package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// standing in for t.Chdir which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(52428800), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0.05, cfg.Analysis.PValueThreshold)
	assert.Equal(t, 1.0, cfg.Analysis.Log2FCThreshold)
	assert.Equal(t, 50, cfg.Analysis.HeatmapTopN)
	assert.Equal(t, 3, cfg.Analysis.NClusters)
	assert.Equal(t, 2, cfg.Analysis.NClasses)
	assert.True(t, cfg.Security.EnableCORS)
	assert.Contains(t, cfg.Security.AllowedOrigins, "http://localhost:5173")
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BIOREPORT_SERVER_PORT", "9090")
	t.Setenv("BIOREPORT_ANALYSIS_PVALUE_THRESHOLD", "0.01")
	t.Setenv("BIOREPORT_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Analysis.PValueThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("server:\n  port: 7070\nanalysis:\n  log2fc_threshold: 1.5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 1.5, cfg.Analysis.Log2FCThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"pvalue threshold out of range", func(c *Config) { c.Analysis.PValueThreshold = 1.5 }},
		{"negative log2fc threshold", func(c *Config) { c.Analysis.Log2FCThreshold = -1 }},
		{"too few clusters", func(c *Config) { c.Analysis.NClusters = 1 }},
		{"too few classes", func(c *Config) { c.Analysis.NClasses = 1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Server:   ServerConfig{Port: 8080},
				Logging:  LoggingConfig{Level: "info"},
				Analysis: AnalysisConfig{PValueThreshold: 0.05, Log2FCThreshold: 1.0, NClusters: 3, NClasses: 2},
			}
			tt.mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
