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

// Config holds the matchd service configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Auth         AuthConfig         `yaml:"auth"`
	Cache        CacheConfig        `yaml:"cache"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Improvements ImprovementsConfig `yaml:"improvements"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds the optional embedding-cache backend settings.
// Driver "none" disables caching entirely.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // redis, none (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLHours         int      `yaml:"ttl_hours"`
}

// EmbeddingConfig holds embedding provider and truncation settings.
type EmbeddingConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	ContextTokens int    `yaml:"context_tokens"`  // model context budget
	CharsPerToken int    `yaml:"chars_per_token"` // truncation estimate
}

// ScoringConfig holds match scoring settings. The raw band is empirically
// calibrated for the embedding model in use; changing models likely means
// recalibrating these values.
type ScoringConfig struct {
	RawFloor           float64 `yaml:"raw_floor"`           // cosine mapped to ScoreFloor
	RawCeiling         float64 `yaml:"raw_ceiling"`         // cosine mapped to ScoreCeiling
	ScoreFloor         int     `yaml:"score_floor"`         // lowest presented score
	ScoreCeiling       int     `yaml:"score_ceiling"`       // highest presented score
	RequirementsWeight float64 `yaml:"requirements_weight"` // weight of the requirements sub-embedding
	MinSectionChars    int     `yaml:"min_section_chars"`   // minimum trusted section length
}

// RetrievalConfig holds multi-query retrieval settings.
type RetrievalConfig struct {
	MaxStories    int     `yaml:"max_stories"`
	MaxDocuments  int     `yaml:"max_documents"`
	PerQueryLimit int     `yaml:"per_query_limit"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// ImprovementsConfig holds resume-improvement mining settings.
type ImprovementsConfig struct {
	MaxJobsWindow     int     `yaml:"max_jobs_window"`
	MinChangeChars    int     `yaml:"min_change_chars"`
	SimilarityCeiling float64 `yaml:"similarity_ceiling"`
	MaxResults        int     `yaml:"max_results"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "jobhunt:"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 30
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.ContextTokens <= 0 {
		c.Embedding.ContextTokens = 512
	}
	if c.Embedding.CharsPerToken <= 0 {
		c.Embedding.CharsPerToken = 3
	}
	if c.Scoring.RawFloor == 0 {
		c.Scoring.RawFloor = 0.30
	}
	if c.Scoring.RawCeiling == 0 {
		c.Scoring.RawCeiling = 0.65
	}
	if c.Scoring.ScoreFloor <= 0 {
		c.Scoring.ScoreFloor = 40
	}
	if c.Scoring.ScoreCeiling <= 0 {
		c.Scoring.ScoreCeiling = 95
	}
	if c.Scoring.RequirementsWeight == 0 {
		c.Scoring.RequirementsWeight = 0.6
	}
	if c.Scoring.MinSectionChars <= 0 {
		c.Scoring.MinSectionChars = 80
	}
	if c.Retrieval.MaxStories <= 0 {
		c.Retrieval.MaxStories = 8
	}
	if c.Retrieval.MaxDocuments <= 0 {
		c.Retrieval.MaxDocuments = 3
	}
	if c.Retrieval.PerQueryLimit <= 0 {
		c.Retrieval.PerQueryLimit = 5
	}
	if c.Retrieval.MinSimilarity == 0 {
		c.Retrieval.MinSimilarity = 0.3
	}
	if c.Improvements.MaxJobsWindow <= 0 {
		c.Improvements.MaxJobsWindow = 5
	}
	if c.Improvements.MinChangeChars <= 0 {
		c.Improvements.MinChangeChars = 20
	}
	if c.Improvements.SimilarityCeiling == 0 {
		c.Improvements.SimilarityCeiling = 0.8
	}
	if c.Improvements.MaxResults <= 0 {
		c.Improvements.MaxResults = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "none":
	case "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"redis\" or \"none\", got %q", c.Cache.Driver)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Scoring.RawFloor >= c.Scoring.RawCeiling {
		return fmt.Errorf("scoring.raw_floor (%v) must be below scoring.raw_ceiling (%v)",
			c.Scoring.RawFloor, c.Scoring.RawCeiling)
	}
	if c.Scoring.ScoreFloor >= c.Scoring.ScoreCeiling {
		return fmt.Errorf("scoring.score_floor (%d) must be below scoring.score_ceiling (%d)",
			c.Scoring.ScoreFloor, c.Scoring.ScoreCeiling)
	}
	if c.Scoring.RequirementsWeight < 0 || c.Scoring.RequirementsWeight > 1 {
		return fmt.Errorf("scoring.requirements_weight must be in [0, 1], got %v",
			c.Scoring.RequirementsWeight)
	}
	if c.Retrieval.MinSimilarity < -1 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval.min_similarity must be in [-1, 1], got %v",
			c.Retrieval.MinSimilarity)
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
