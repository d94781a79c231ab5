package repositories

import (
	"context"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// VectorRepository abstracts the vector index so the pipeline can be tested
// against an in-memory implementation and the backing store can be swapped.
type VectorRepository interface {
	// StoreChunks upserts embedded chunks into the index. Appending only:
	// entries are never deduplicated across differing content.
	StoreChunks(ctx context.Context, chunks []models.Chunk) error

	// Search returns the topK nearest entries for the query embedding,
	// highest similarity first. An empty index yields an empty slice.
	Search(ctx context.Context, embedding []float32, topK int) ([]models.RetrievedChunk, error)

	// Count returns the number of entries currently indexed
	Count(ctx context.Context) (int, error)

	// Ping verifies the backing store is reachable
	Ping(ctx context.Context) error
}
