package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// MaxUploadBytes bounds the multipart upload size for analysis requests.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	StaticDir  string `yaml:"static_dir" envconfig:"STATIC_DIR" default:"static"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"static/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// AnalysisConfig contains the default thresholds and sizes used by the
// differential-expression pipeline. Values mirror the statistical defaults
// of the analysis contract; requests cannot override them yet.
type AnalysisConfig struct {
	PValueThreshold float64 `yaml:"pvalue_threshold" envconfig:"PVALUE_THRESHOLD" default:"0.05"`
	Log2FCThreshold float64 `yaml:"log2fc_threshold" envconfig:"LOG2FC_THRESHOLD" default:"1.0"`
	HeatmapTopN     int     `yaml:"heatmap_top_n" envconfig:"HEATMAP_TOP_N" default:"50"`
	PathwayTopN     int     `yaml:"pathway_top_n" envconfig:"PATHWAY_TOP_N" default:"20"`
	NClusters       int     `yaml:"n_clusters" envconfig:"N_CLUSTERS" default:"3"`
	NClasses        int     `yaml:"n_classes" envconfig:"N_CLASSES" default:"2"`
	// ParallelModels runs the independent model procedures concurrently.
	// Each procedure treats the shared standardized matrix as read-only,
	// so no locking is needed.
	ParallelModels bool `yaml:"parallel_models" envconfig:"PARALLEL_MODELS" default:"true"`
}

// Load loads configuration from environment variables and config file.
// Environment variables (prefix BIOREPORT) take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("BIOREPORT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	return &cfg, nil
}

// getConfigFilePath returns the config file location, overridable via env.
func getConfigFilePath() string {
	if p := os.Getenv("BIOREPORT_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence,
// file fills the gaps envconfig left at zero values)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Server.MaxUploadBytes == 0 {
		envConfig.Server.MaxUploadBytes = fileConfig.Server.MaxUploadBytes
	}
	if len(envConfig.Security.AllowedOrigins) == 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Analysis.PValueThreshold == 0 {
		envConfig.Analysis.PValueThreshold = fileConfig.Analysis.PValueThreshold
	}
	if envConfig.Analysis.Log2FCThreshold == 0 {
		envConfig.Analysis.Log2FCThreshold = fileConfig.Analysis.Log2FCThreshold
	}

	return envConfig
}

// validate checks configuration invariants that would otherwise surface as
// confusing runtime behavior deep inside the pipeline.
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Analysis.PValueThreshold <= 0 || c.Analysis.PValueThreshold >= 1 {
		return fmt.Errorf("pvalue threshold must be in (0,1), got %g", c.Analysis.PValueThreshold)
	}
	if c.Analysis.Log2FCThreshold < 0 {
		return fmt.Errorf("log2fc threshold must be non-negative, got %g", c.Analysis.Log2FCThreshold)
	}
	if c.Analysis.NClusters < 2 {
		return fmt.Errorf("n_clusters must be at least 2, got %d", c.Analysis.NClusters)
	}
	if c.Analysis.NClasses < 2 {
		return fmt.Errorf("n_classes must be at least 2, got %d", c.Analysis.NClasses)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// ensureDirectories creates the directories the service writes into.
func (c *Config) ensureDirectories() error {
	for _, dir := range []string{c.Paths.StaticDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportsDir returns the resolved report output directory.
func (c *Config) GetReportsDir() string {
	if filepath.IsAbs(c.Paths.ReportsDir) {
		return c.Paths.ReportsDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return c.Paths.ReportsDir
	}
	return filepath.Join(wd, c.Paths.ReportsDir)
}
