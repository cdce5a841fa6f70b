package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/search"
)

// Config holds the recollect service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds on-disk locations. Dir is the parent of every store.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// AIConfig holds embedding and completion service settings.
type AIConfig struct {
	Host            string  `yaml:"host"`
	EmbeddingHost   string  `yaml:"embedding_host"`
	CompletionHost  string  `yaml:"completion_host"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	Token           string  `yaml:"token"`
	Temperature     float64 `yaml:"temperature"`
}

// SearchConfig holds ranking tunables. Zero values take the search package defaults.
type SearchConfig struct {
	RRFK               int           `yaml:"rrf_k"`
	SemanticLimit      int           `yaml:"semantic_limit"`
	LexicalLimit       int           `yaml:"lexical_limit"`
	ExpansionLimit     int           `yaml:"expansion_limit"`
	MaxEvidence        int           `yaml:"max_evidence"`
	RecencyWindow      time.Duration `yaml:"recency_window"`
	ExpansionTTL       time.Duration `yaml:"expansion_ttl"`
	ExpansionCacheSize int           `yaml:"expansion_cache_size"`
	PoolSize           int           `yaml:"pool_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from a YAML file, expanding ${VAR} references.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
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

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	def := ai.DefaultConfig()
	if c.AI.Host != "" {
		if c.AI.EmbeddingHost == "" {
			c.AI.EmbeddingHost = c.AI.Host
		}
		if c.AI.CompletionHost == "" {
			c.AI.CompletionHost = c.AI.Host
		}
	}
	if c.AI.EmbeddingHost == "" {
		c.AI.EmbeddingHost = def.EmbeddingHost
	}
	if c.AI.CompletionHost == "" {
		c.AI.CompletionHost = def.CompletionHost
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = def.EmbeddingModel
	}
	if c.AI.CompletionModel == "" {
		c.AI.CompletionModel = def.CompletionModel
	}
	if c.AI.Token == "" {
		c.AI.Token = def.Token
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = def.Temperature
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	if err := c.AIConfig().Validate(); err != nil {
		return err
	}
	return c.SearchConfig().Validate()
}

// AIConfig maps the ai section onto an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithCompletionHost(c.AI.CompletionHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithCompletionModel(c.AI.CompletionModel),
		ai.WithToken(c.AI.Token),
		ai.WithTemperature(c.AI.Temperature),
	)
}

// SearchConfig maps the search section onto the search defaults.
func (c *Config) SearchConfig() *search.Config {
	cfg := search.DefaultConfig()
	s := c.Search
	if s.RRFK > 0 {
		cfg.RRFK = s.RRFK
	}
	if s.SemanticLimit > 0 {
		cfg.SemanticLimit = s.SemanticLimit
	}
	if s.LexicalLimit > 0 {
		cfg.LexicalLimit = s.LexicalLimit
	}
	if s.ExpansionLimit > 0 {
		cfg.ExpansionLimit = s.ExpansionLimit
	}
	if s.MaxEvidence > 0 {
		cfg.MaxEvidence = s.MaxEvidence
	}
	if s.RecencyWindow > 0 {
		cfg.RecencyWindow = s.RecencyWindow
	}
	if s.ExpansionTTL > 0 {
		cfg.ExpansionTTL = s.ExpansionTTL
	}
	if s.ExpansionCacheSize > 0 {
		cfg.ExpansionCacheSize = s.ExpansionCacheSize
	}
	if s.PoolSize > 0 {
		cfg.PoolSize = s.PoolSize
	}
	return cfg
}

// MessagesPath is the SQLite message database.
func (c *Config) MessagesPath() string {
	return filepath.Join(c.Storage.Dir, "messages.db")
}

// DocumentsPath is the badger document store directory.
func (c *Config) DocumentsPath() string {
	return filepath.Join(c.Storage.Dir, "documents")
}

// LexicalPath is the bleve index directory.
func (c *Config) LexicalPath() string {
	return filepath.Join(c.Storage.Dir, "lexical.bleve")
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.HTTP.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.HTTP.WriteTimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownSec) * time.Second
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
