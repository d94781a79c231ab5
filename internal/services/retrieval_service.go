package services

import (
	"context"
	"log"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

// Retriever returns the chunks most similar to a query, best first
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error)
}

// RetrievalService implements Retriever over the vector repository, using
// the same embedding provider that indexed the chunks
type RetrievalService struct {
	vectorRepo  repositories.VectorRepository
	embedder    EmbeddingProvider
	defaultTopK int
	logger      *log.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(
	vectorRepo repositories.VectorRepository,
	embedder EmbeddingProvider,
	defaultTopK int,
	logger *log.Logger,
) *RetrievalService {
	return &RetrievalService{
		vectorRepo:  vectorRepo,
		embedder:    embedder,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Retrieve embeds the query and returns up to k nearest chunks, similarity
// descending. k <= 0 falls back to the configured default. An empty index
// yields an empty result, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = s.defaultTopK
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Printf("Failed to embed query: %v", err)
		return nil, models.NewRetrievalError(query, err)
	}

	chunks, err := s.vectorRepo.Search(ctx, embedding, k)
	if err != nil {
		s.logger.Printf("Vector search failed: %v", err)
		return nil, models.NewRetrievalError(query, err)
	}

	s.logger.Printf("Retrieved %d chunks for query (k=%d)", len(chunks), k)
	return chunks, nil
}
