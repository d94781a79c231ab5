package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COUCHBASE_USERNAME", "admin")
	t.Setenv("COUCHBASE_PASSWORD", "secret")
	t.Setenv("COUCHBASE_BUCKET", "docs")
	t.Setenv("COUCHBASE_SEARCH_INDEX", "docs-index")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "key")
	t.Setenv("AZURE_OPENAI_CHAT_DEPLOYMENT", "gpt-4o")
	t.Setenv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small")
}

func TestLoad_AllRequiredValuesPresent(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.Couchbase.Username)
	assert.Equal(t, "docs", cfg.Couchbase.Bucket)
	assert.Equal(t, "docs-index", cfg.Couchbase.SearchIndex)
	assert.Equal(t, "gpt-4o", cfg.Azure.ChatDeployment)

	// tunable defaults
	assert.Equal(t, DefaultChunkSize, cfg.RAG.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.RAG.ChunkOverlap)
	assert.Equal(t, DefaultTopK, cfg.RAG.TopK)
	assert.Equal(t, DefaultCacheTTL, cfg.RAG.CacheTTL)
}

func TestLoad_MissingRequiredValueIsFatal(t *testing.T) {
	required := []string{
		"COUCHBASE_USERNAME",
		"COUCHBASE_PASSWORD",
		"COUCHBASE_BUCKET",
		"COUCHBASE_SEARCH_INDEX",
		"AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_API_KEY",
		"AZURE_OPENAI_CHAT_DEPLOYMENT",
		"AZURE_OPENAI_EMBEDDING_DEPLOYMENT",
	}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)

			var cfgErr *models.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, key, cfgErr.Key)
		})
	}
}

func TestLoad_OverlapMustBeSmallerThanChunkSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAG_CHUNK_SIZE", "100")
	t.Setenv("RAG_CHUNK_OVERLAP", "100")

	_, err := Load()

	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "RAG_CHUNK_OVERLAP", cfgErr.Key)
}

func TestLoad_TunableOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAG_CHUNK_SIZE", "800")
	t.Setenv("RAG_CHUNK_OVERLAP", "80")
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("RAG_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 80, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, time.Hour, cfg.RAG.CacheTTL)
}
