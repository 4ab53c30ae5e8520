package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the cinematch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
// Admin keys guard corpus reloads only; queries are public.
type AuthConfig struct {
	AdminKeys []string `yaml:"admin_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"` // 0 = disabled
}

// Dataset formats.
const (
	DatasetCSV     = "csv"
	DatasetParquet = "parquet"
)

// DatasetConfig locates the movie dataset.
type DatasetConfig struct {
	Format      string `yaml:"format"` // csv, parquet (default: csv)
	MoviesPath  string `yaml:"movies_path"`
	CreditsPath string `yaml:"credits_path"`
	ParquetPath string `yaml:"parquet_path"`
}

// RecommendConfig tunes matching, ranking and result sizes.
type RecommendConfig struct {
	AcceptanceThreshold int    `yaml:"acceptance_threshold"`
	DefaultResults      int    `yaml:"default_results"`
	MaxResults          int    `yaml:"max_results"`
	DefaultSearchLimit  int    `yaml:"default_search_limit"`
	MaxSearchLimit      int    `yaml:"max_search_limit"`
	CastLimit           int    `yaml:"cast_limit"`
	DirectorJob         string `yaml:"director_job"`
	PosterBaseURL       string `yaml:"poster_base_url"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Dataset.Format == "" {
		c.Dataset.Format = DatasetCSV
	}
	if c.Recommend.AcceptanceThreshold <= 0 {
		c.Recommend.AcceptanceThreshold = 60
	}
	if c.Recommend.DefaultResults <= 0 {
		c.Recommend.DefaultResults = 6
	}
	if c.Recommend.MaxResults <= 0 {
		c.Recommend.MaxResults = 50
	}
	if c.Recommend.DefaultSearchLimit <= 0 {
		c.Recommend.DefaultSearchLimit = 10
	}
	if c.Recommend.MaxSearchLimit <= 0 {
		c.Recommend.MaxSearchLimit = 100
	}
	if c.Recommend.CastLimit <= 0 {
		c.Recommend.CastLimit = 3
	}
	if c.Recommend.DirectorJob == "" {
		c.Recommend.DirectorJob = "Director"
	}
	if c.Recommend.PosterBaseURL == "" {
		c.Recommend.PosterBaseURL = "https://image.tmdb.org/t/p/w500"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitPerMinute < 0 {
		return fmt.Errorf("http.rate_limit_per_minute must be >= 0, got %d", c.HTTP.RateLimitPerMinute)
	}
	switch c.Dataset.Format {
	case DatasetCSV:
		if c.Dataset.MoviesPath == "" || c.Dataset.CreditsPath == "" {
			return fmt.Errorf("dataset.movies_path and dataset.credits_path are required for csv")
		}
	case DatasetParquet:
		if c.Dataset.ParquetPath == "" {
			return fmt.Errorf("dataset.parquet_path is required for parquet")
		}
	default:
		return fmt.Errorf("dataset.format must be \"csv\" or \"parquet\", got %q", c.Dataset.Format)
	}
	if c.Recommend.AcceptanceThreshold > 100 {
		return fmt.Errorf("recommend.acceptance_threshold must be in 1..100, got %d", c.Recommend.AcceptanceThreshold)
	}
	if c.Recommend.DefaultResults > c.Recommend.MaxResults {
		return fmt.Errorf("recommend.default_results (%d) exceeds max_results (%d)",
			c.Recommend.DefaultResults, c.Recommend.MaxResults)
	}
	if c.Recommend.DefaultSearchLimit > c.Recommend.MaxSearchLimit {
		return fmt.Errorf("recommend.default_search_limit (%d) exceeds max_search_limit (%d)",
			c.Recommend.DefaultSearchLimit, c.Recommend.MaxSearchLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
