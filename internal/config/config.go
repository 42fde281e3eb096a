package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	QA       QAConfig       `yaml:"qa" envconfig:"QA"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration. Defaults live in
// Default(), not in struct tags, so file values survive envconfig.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig carries the report defaults the presentation layer can
// override per request.
type AnalysisConfig struct {
	DefaultTopN         int `yaml:"default_top_n" envconfig:"DEFAULT_TOP_N"`
	MaxTopN             int `yaml:"max_top_n" envconfig:"MAX_TOP_N"`
	DefaultWindowMonths int `yaml:"default_window_months" envconfig:"DEFAULT_WINDOW_MONTHS"`
	ForecastMonths      int `yaml:"forecast_months" envconfig:"FORECAST_MONTHS"`
	SummarySampleRows   int `yaml:"summary_sample_rows" envconfig:"SUMMARY_SAMPLE_ROWS"`
}

// QAConfig configures the external question-answering providers. The
// primary provider is tried first; on failure the fallback takes over.
// Either key may be empty; with both empty the Q&A feature reports
// itself unavailable.
type QAConfig struct {
	GeminiAPIKey   string        `yaml:"gemini_api_key" envconfig:"GEMINI_API_KEY"`
	GeminiModel    string        `yaml:"gemini_model" envconfig:"GEMINI_MODEL"`
	GeminiBaseURL  string        `yaml:"gemini_base_url" envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey   string        `yaml:"openai_api_key" envconfig:"OPENAI_API_KEY"`
	OpenAIModel    string        `yaml:"openai_model" envconfig:"OPENAI_MODEL"`
	OpenAIBaseURL  string        `yaml:"openai_base_url" envconfig:"OPENAI_BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load loads configuration in three layers: built-in defaults, then an
// optional config file, then environment variables. Each layer only
// overrides what it explicitly sets, so a YAML value survives unless an
// env var names the same field.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("BIZ", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate checks invariants the rest of the application relies on.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Analysis.DefaultTopN <= 0 {
		return fmt.Errorf("default top-n must be positive")
	}
	if c.Analysis.MaxTopN < c.Analysis.DefaultTopN {
		return fmt.Errorf("max top-n %d below default %d", c.Analysis.MaxTopN, c.Analysis.DefaultTopN)
	}
	if c.Analysis.DefaultWindowMonths <= 0 {
		return fmt.Errorf("default window months must be positive")
	}
	if c.Analysis.SummarySampleRows <= 0 {
		return fmt.Errorf("summary sample rows must be positive")
	}
	if c.QA.RequestTimeout <= 0 {
		return fmt.Errorf("qa request timeout must be positive")
	}
	return nil
}

// QAConfigured reports whether any question-answering provider has a key.
func (c *Config) QAConfigured() bool {
	return c.QA.GeminiAPIKey != "" || c.QA.OpenAIAPIKey != ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  50 << 20,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Analysis: AnalysisConfig{
			DefaultTopN:         20,
			MaxTopN:             100,
			DefaultWindowMonths: 6,
			ForecastMonths:      6,
			SummarySampleRows:   5,
		},
		QA: QAConfig{
			GeminiModel:    "gemini-2.5-flash",
			GeminiBaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			OpenAIModel:    "gpt-4o-mini",
			OpenAIBaseURL:  "https://api.openai.com/v1",
			RequestTimeout: 60 * time.Second,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
	}
}
