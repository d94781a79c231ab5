package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// Tunable defaults. Endpoints, credentials and deployment names have no safe
// defaults and are required.
const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
	DefaultTopK         = 4
	DefaultCacheTTL     = 24 * time.Hour
	DefaultHTTPPort     = 8080
)

// CouchbaseConfig holds connection parameters for the Couchbase cluster
type CouchbaseConfig struct {
	Host        string
	AdminPort   int // cluster management / heartbeat
	QueryPort   int // N1QL query service
	SearchPort  int // FTS / vector search service
	Username    string
	Password    string
	Bucket      string
	Scope       string
	Collection  string
	SearchIndex string
	Timeout     time.Duration
}

// RedisConfig holds connection parameters for the response cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AzureOpenAIConfig holds the embedding and chat deployments
type AzureOpenAIConfig struct {
	Endpoint            string
	APIKey              string
	APIVersion          string
	ChatDeployment      string
	EmbeddingDeployment string
	Timeout             time.Duration
}

// RAGConfig holds the chunking and retrieval tunables
type RAGConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	CacheTTL     time.Duration
}

// Config is the full application configuration
type Config struct {
	Port      int
	Couchbase CouchbaseConfig
	Redis     RedisConfig
	Azure     AzureOpenAIConfig
	RAG       RAGConfig
}

// Load reads configuration from a .env file (if present) and the
// environment. A missing required value is a fatal startup condition and is
// reported as a ConfigurationError.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port: getInt("PORT", DefaultHTTPPort),
		Couchbase: CouchbaseConfig{
			Host:       getString("COUCHBASE_HOST", "localhost"),
			AdminPort:  getInt("COUCHBASE_ADMIN_PORT", 8091),
			QueryPort:  getInt("COUCHBASE_QUERY_PORT", 8093),
			SearchPort: getInt("COUCHBASE_SEARCH_PORT", 8094),
			Scope:      getString("COUCHBASE_SCOPE", "_default"),
			Collection: getString("COUCHBASE_COLLECTION", "_default"),
			Timeout:    getDuration("COUCHBASE_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:     getString("REDIS_HOST", "localhost"),
			Port:     getInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Azure: AzureOpenAIConfig{
			APIVersion: getString("AZURE_OPENAI_API_VERSION", "2024-02-01"),
			Timeout:    getDuration("AZURE_OPENAI_TIMEOUT", 120*time.Second),
		},
		RAG: RAGConfig{
			ChunkSize:    getInt("RAG_CHUNK_SIZE", DefaultChunkSize),
			ChunkOverlap: getInt("RAG_CHUNK_OVERLAP", DefaultChunkOverlap),
			TopK:         getInt("RAG_TOP_K", DefaultTopK),
			CacheTTL:     getDuration("RAG_CACHE_TTL", DefaultCacheTTL),
		},
	}

	required := []struct {
		key string
		dst *string
	}{
		{"COUCHBASE_USERNAME", &cfg.Couchbase.Username},
		{"COUCHBASE_PASSWORD", &cfg.Couchbase.Password},
		{"COUCHBASE_BUCKET", &cfg.Couchbase.Bucket},
		{"COUCHBASE_SEARCH_INDEX", &cfg.Couchbase.SearchIndex},
		{"AZURE_OPENAI_ENDPOINT", &cfg.Azure.Endpoint},
		{"AZURE_OPENAI_API_KEY", &cfg.Azure.APIKey},
		{"AZURE_OPENAI_CHAT_DEPLOYMENT", &cfg.Azure.ChatDeployment},
		{"AZURE_OPENAI_EMBEDDING_DEPLOYMENT", &cfg.Azure.EmbeddingDeployment},
	}
	for _, r := range required {
		val := os.Getenv(r.key)
		if val == "" {
			return nil, models.MissingConfigError(r.key)
		}
		*r.dst = val
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.RAG.ChunkSize <= 0 {
		return models.InvalidConfigError("RAG_CHUNK_SIZE", "must be positive")
	}
	if c.RAG.ChunkOverlap < 0 {
		return models.InvalidConfigError("RAG_CHUNK_OVERLAP", "cannot be negative")
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return models.InvalidConfigError("RAG_CHUNK_OVERLAP", "must be smaller than RAG_CHUNK_SIZE")
	}
	if c.RAG.TopK <= 0 {
		return models.InvalidConfigError("RAG_TOP_K", "must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
