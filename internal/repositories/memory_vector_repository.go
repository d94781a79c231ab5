package repositories

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// MemoryVectorRepository is an in-process VectorRepository used in tests and
// for running the pipeline without a cluster. Cosine similarity, brute force.
type MemoryVectorRepository struct {
	mu     sync.RWMutex
	chunks map[string]models.Chunk
}

// NewMemoryVectorRepository creates an empty in-memory vector repository
func NewMemoryVectorRepository() *MemoryVectorRepository {
	return &MemoryVectorRepository{
		chunks: make(map[string]models.Chunk),
	}
}

// StoreChunks upserts chunks keyed by chunk ID
func (r *MemoryVectorRepository) StoreChunks(ctx context.Context, chunks []models.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		r.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search scores every stored chunk against the query embedding and returns
// the topK by similarity descending
func (r *MemoryVectorRepository) Search(ctx context.Context, embedding []float32, topK int) ([]models.RetrievedChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]models.RetrievedChunk, 0, len(r.chunks))
	for _, chunk := range r.chunks {
		results = append(results, models.RetrievedChunk{
			ID:    chunk.ID,
			Text:  chunk.Text,
			Score: cosine(embedding, chunk.Embedding),
			Metadata: map[string]interface{}{
				"document_id": chunk.DocumentID,
				"filename":    chunk.Filename,
				"chunk_index": chunk.ChunkIndex,
				"page_number": chunk.PageNumber,
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored chunks
func (r *MemoryVectorRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks), nil
}

// Ping always succeeds
func (r *MemoryVectorRepository) Ping(ctx context.Context) error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
