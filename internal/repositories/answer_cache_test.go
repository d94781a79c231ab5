package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

func TestMemoryAnswerCache_HitAfterPut(t *testing.T) {
	cache := NewMemoryAnswerCache(time.Minute)
	ctx := context.Background()

	_, found, err := cache.Get(ctx, models.ChainGrounded, "what is a lease?")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Put(ctx, models.ChainGrounded, "what is a lease?", "a lease is a contract"))

	answer, found, err := cache.Get(ctx, models.ChainGrounded, "what is a lease?")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a lease is a contract", answer)
}

func TestMemoryAnswerCache_ChainsAreIsolated(t *testing.T) {
	cache := NewMemoryAnswerCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, models.ChainGrounded, "q", "grounded answer"))

	_, found, err := cache.Get(ctx, models.ChainModelOnly, "q")
	require.NoError(t, err)
	assert.False(t, found, "a grounded answer must never serve the model chain")
}

func TestMemoryAnswerCache_ExactQueryTextOnly(t *testing.T) {
	cache := NewMemoryAnswerCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, models.ChainGrounded, "What is a lease?", "answer"))

	// no normalization: case and whitespace variants miss
	for _, variant := range []string{"what is a lease?", "What is a lease? ", "What  is a lease?"} {
		_, found, err := cache.Get(ctx, models.ChainGrounded, variant)
		require.NoError(t, err)
		assert.False(t, found, "variant %q should miss", variant)
	}
}

func TestMemoryAnswerCache_EntriesExpire(t *testing.T) {
	cache := NewMemoryAnswerCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, models.ChainGrounded, "q", "answer"))

	_, found, err := cache.Get(ctx, models.ChainGrounded, "q")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(25 * time.Millisecond)

	_, found, err = cache.Get(ctx, models.ChainGrounded, "q")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryAnswerCache_PutOverwrites(t *testing.T) {
	cache := NewMemoryAnswerCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, models.ChainModelOnly, "q", "first"))
	require.NoError(t, cache.Put(ctx, models.ChainModelOnly, "q", "second"))

	answer, found, err := cache.Get(ctx, models.ChainModelOnly, "q")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", answer)
}
