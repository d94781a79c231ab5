package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

func seedVectorRepo(t *testing.T) *repositories.MemoryVectorRepository {
	t.Helper()

	repo := repositories.NewMemoryVectorRepository()
	chunks := []models.Chunk{
		{ID: "a", DocumentID: "doc-1", Filename: "a.pdf", Text: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "b", DocumentID: "doc-1", Filename: "a.pdf", Text: "beta", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c", DocumentID: "doc-1", Filename: "a.pdf", Text: "gamma", Embedding: []float32{0, 1, 0}},
	}
	require.NoError(t, repo.StoreChunks(context.Background(), chunks))
	return repo
}

func TestRetrieve_UsesDefaultTopKWhenUnset(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, "q").Return([]float32{1, 0, 0}, nil)

	svc := NewRetrievalService(seedVectorRepo(t), embedder, 2, log.New(io.Discard, "", 0))

	results, err := svc.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2, "default k should bound the results")
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
}

func TestRetrieve_ExplicitKOverridesDefault(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, "q").Return([]float32{1, 0, 0}, nil)

	svc := NewRetrievalService(seedVectorRepo(t), embedder, 2, log.New(io.Discard, "", 0))

	results, err := svc.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetrieve_EmbeddingFailureWrapsAsRetrievalError(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, "q").Return(nil, errors.New("deployment throttled"))

	svc := NewRetrievalService(seedVectorRepo(t), embedder, 2, log.New(io.Discard, "", 0))

	_, err := svc.Retrieve(context.Background(), "q", 0)

	var retErr *models.RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Equal(t, "q", retErr.Query)
}

func TestRetrieve_EmptyIndexIsNotAnError(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, "q").Return([]float32{1, 0, 0}, nil)

	svc := NewRetrievalService(repositories.NewMemoryVectorRepository(), embedder, 2, log.New(io.Discard, "", 0))

	results, err := svc.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
