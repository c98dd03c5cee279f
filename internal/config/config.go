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

// Config holds the docnav API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Cache      CacheConfig      `yaml:"cache"`
	Safety     SafetyConfig     `yaml:"safety"`
	Lookups    LookupsConfig    `yaml:"lookups"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
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

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds the knowledge base index settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	MaxBatchSize    int    `yaml:"max_batch_size"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // metrics label only
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	CacheTTLSec         int    `yaml:"cache_ttl_sec"`
	TimeoutSec          int    `yaml:"timeout_sec"`
}

// Generation providers.
const (
	GenerationNone   = ""
	GenerationOpenAI = "openai"
	GenerationGemini = "gemini"
)

// GenerationConfig selects the answer generation backend. An empty provider
// uses the deterministic template only.
type GenerationConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// RetrievalConfig bounds calls to the vector store.
type RetrievalConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled    *bool `yaml:"enabled"` // default true
	TTLSec     int   `yaml:"ttl_sec"`
	MaxEntries int   `yaml:"max_entries"`
}

// SafetyConfig holds safety filter settings.
type SafetyConfig struct {
	Enabled *bool `yaml:"enabled"` // default true
}

// LookupsConfig holds auxiliary lookup settings.
type LookupsConfig struct {
	TimeoutSec   int                `yaml:"timeout_sec"`
	CodeExamples CodeExamplesConfig `yaml:"code_examples"`
}

// CodeExamplesConfig holds GitHub code search settings.
type CodeExamplesConfig struct {
	Enabled        *bool   `yaml:"enabled"` // default true
	GitHubToken    string  `yaml:"github_token"`
	GitHubBaseURL  string  `yaml:"github_base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
	MaxResults     int     `yaml:"max_results"`
}

// MinCacheTTLSec is the smallest accepted result cache TTL.
const MinCacheTTLSec = 60

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Index.Name == "" {
		c.Index.Name = "docnav-docs"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "docnav:"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 100
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}

	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 1024
	}
	if c.Generation.Model == "" {
		switch c.Generation.Provider {
		case GenerationOpenAI:
			c.Generation.Model = "gpt-4o-mini"
		case GenerationGemini:
			c.Generation.Model = "gemini-2.5-flash"
		}
	}

	if c.Retrieval.TimeoutSec <= 0 {
		c.Retrieval.TimeoutSec = 5
	}

	if c.Cache.Enabled == nil {
		c.Cache.Enabled = boolPtr(true)
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 10000
	}

	if c.Safety.Enabled == nil {
		c.Safety.Enabled = boolPtr(true)
	}

	if c.Lookups.TimeoutSec <= 0 {
		c.Lookups.TimeoutSec = 5
	}
	if c.Lookups.CodeExamples.Enabled == nil {
		c.Lookups.CodeExamples.Enabled = boolPtr(true)
	}
	if c.Lookups.CodeExamples.MaxResults <= 0 {
		c.Lookups.CodeExamples.MaxResults = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Cache.TTLSec < MinCacheTTLSec {
		return fmt.Errorf("cache.ttl_sec must be at least %d, got %d", MinCacheTTLSec, c.Cache.TTLSec)
	}
	switch c.Generation.Provider {
	case GenerationNone, GenerationOpenAI, GenerationGemini:
		// ok
	default:
		return fmt.Errorf(
			"generation.provider must be empty, %q or %q, got %q",
			GenerationOpenAI, GenerationGemini, c.Generation.Provider,
		)
	}
	if c.Generation.Provider != GenerationNone && c.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required for provider %q", c.Generation.Provider)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be between 0 and 2, got %g", c.Generation.Temperature)
	}
	if c.Lookups.CodeExamples.RequestsPerSec < 0 {
		return fmt.Errorf("lookups.code_examples.requests_per_sec must not be negative")
	}
	return nil
}

// CacheEnabled reports whether the result cache is on.
func (c *Config) CacheEnabled() bool { return c.Cache.Enabled == nil || *c.Cache.Enabled }

// SafetyEnabled reports whether the safety filter is on.
func (c *Config) SafetyEnabled() bool { return c.Safety.Enabled == nil || *c.Safety.Enabled }

// CodeExamplesEnabled reports whether the GitHub code search lookup is on.
func (c *Config) CodeExamplesEnabled() bool {
	return c.Lookups.CodeExamples.Enabled == nil || *c.Lookups.CodeExamples.Enabled
}

func boolPtr(v bool) *bool { return &v }

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
