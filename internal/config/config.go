package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the service reads at startup. Values are resolved
// in three layers: built-in defaults, then an optional YAML file, then
// environment variables (which always win).
type Config struct {
	Mode        string   `yaml:"mode"`
	HTTPAddr    string   `yaml:"http_addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	Mongo struct {
		URI               string `yaml:"uri"`
		Database          string `yaml:"database"`
		InStockCollection string `yaml:"in_stock_collection"`
		FDACollection     string `yaml:"fda_collection"`
	} `yaml:"mongo"`

	Pinecone struct {
		APIKey          string `yaml:"api_key"`
		IndexName       string `yaml:"index_name"`
		IndexHost       string `yaml:"index_host"`
		NamespacePrefix string `yaml:"namespace_prefix"`
	} `yaml:"pinecone"`

	Embedding struct {
		Provider     string `yaml:"provider"` // gemini, openai, local or empty for auto
		GeminiAPIKey string `yaml:"gemini_api_key"`
		GeminiModel  string `yaml:"gemini_model"`
		OpenAIAPIKey string `yaml:"openai_api_key"`
		OpenAIModel  string `yaml:"openai_model"`
		CacheSize    int    `yaml:"cache_size"`
	} `yaml:"embedding"`

	Search struct {
		DefaultTopK         int     `yaml:"default_top_k"`
		MaxTopK             int     `yaml:"max_top_k"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		PriorityEpsilon     float64 `yaml:"priority_epsilon"`
		SemanticTimeoutMS   int     `yaml:"semantic_timeout_ms"`
		RequestTimeoutMS    int     `yaml:"request_timeout_ms"`
	} `yaml:"search"`
}

// Load builds the configuration. yamlPath may be empty; a missing .env file
// is not an error.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		Mode:     "dev",
		HTTPAddr: ":8080",
	}
	cfg.Mongo.Database = "materials"
	cfg.Mongo.InStockCollection = "raw_materials"
	cfg.Mongo.FDACollection = "fda_materials"
	cfg.Pinecone.NamespacePrefix = ""
	cfg.Embedding.GeminiModel = "text-embedding-004"
	cfg.Embedding.OpenAIModel = "text-embedding-3-small"
	cfg.Embedding.CacheSize = 10000
	cfg.Search.DefaultTopK = 10
	cfg.Search.MaxTopK = 50
	cfg.Search.SimilarityThreshold = 0.7
	cfg.Search.PriorityEpsilon = 0.05
	cfg.Search.SemanticTimeoutMS = 5000
	cfg.Search.RequestTimeoutMS = 15000
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.Mode, "MATSEARCH_MODE")
	setString(&cfg.HTTPAddr, "MATSEARCH_HTTP_ADDR")
	setStringSlice(&cfg.CORSOrigins, "MATSEARCH_CORS_ORIGINS")

	setString(&cfg.Mongo.URI, "MONGODB_URI")
	setString(&cfg.Mongo.Database, "MONGODB_DATABASE")
	setString(&cfg.Mongo.InStockCollection, "MONGODB_IN_STOCK_COLLECTION")
	setString(&cfg.Mongo.FDACollection, "MONGODB_FDA_COLLECTION")

	setString(&cfg.Pinecone.APIKey, "PINECONE_API_KEY")
	setString(&cfg.Pinecone.IndexName, "PINECONE_INDEX_NAME")
	setString(&cfg.Pinecone.IndexHost, "PINECONE_INDEX_HOST")
	setString(&cfg.Pinecone.NamespacePrefix, "PINECONE_NAMESPACE_PREFIX")

	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Embedding.GeminiModel, "GEMINI_EMBEDDING_MODEL")
	setString(&cfg.Embedding.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.Embedding.OpenAIModel, "OPENAI_EMBEDDING_MODEL")
	setInt(&cfg.Embedding.CacheSize, "EMBEDDING_CACHE_SIZE")

	setInt(&cfg.Search.DefaultTopK, "SEARCH_DEFAULT_TOP_K")
	setInt(&cfg.Search.MaxTopK, "SEARCH_MAX_TOP_K")
	setFloat(&cfg.Search.SimilarityThreshold, "SEARCH_SIMILARITY_THRESHOLD")
	setFloat(&cfg.Search.PriorityEpsilon, "SEARCH_PRIORITY_EPSILON")
	setInt(&cfg.Search.SemanticTimeoutMS, "SEARCH_SEMANTIC_TIMEOUT_MS")
	setInt(&cfg.Search.RequestTimeoutMS, "SEARCH_REQUEST_TIMEOUT_MS")
}

// Validate rejects option combinations the service cannot start with.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Search.DefaultTopK <= 0 || c.Search.MaxTopK <= 0 {
		return fmt.Errorf("top-k limits must be positive")
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("default top-k %d exceeds max top-k %d", c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be within [0, 1]")
	}
	if c.Search.PriorityEpsilon < 0 || c.Search.PriorityEpsilon > 1 {
		return fmt.Errorf("priority epsilon must be within [0, 1]")
	}
	return nil
}

// SemanticTimeout returns the per-request budget for the semantic leg.
func (c *Config) SemanticTimeout() time.Duration {
	return time.Duration(c.Search.SemanticTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the overall per-request budget.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Search.RequestTimeoutMS) * time.Millisecond
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
