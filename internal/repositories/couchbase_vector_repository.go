package repositories

import (
	"context"
	"fmt"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/db"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// CouchbaseVectorRepository implements VectorRepository on the cluster's
// query and search services
type CouchbaseVectorRepository struct {
	client *db.CouchbaseClient
}

// NewCouchbaseVectorRepository creates a Couchbase-backed vector repository
func NewCouchbaseVectorRepository(client *db.CouchbaseClient) VectorRepository {
	return &CouchbaseVectorRepository{
		client: client,
	}
}

// StoreChunks upserts embedded chunks into the search index keyspace
func (r *CouchbaseVectorRepository) StoreChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	entries := make([]db.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
		entries[i] = db.IndexEntry{
			ID:         chunk.ID,
			Text:       chunk.Text,
			Embedding:  chunk.Embedding,
			DocumentID: chunk.DocumentID,
			Filename:   chunk.Filename,
			ChunkIndex: chunk.ChunkIndex,
			PageNumber: chunk.PageNumber,
		}
	}

	if err := r.client.UpsertEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	return nil
}

// Search runs a knn query and maps hits to retrieved chunks
func (r *CouchbaseVectorRepository) Search(ctx context.Context, embedding []float32, topK int) ([]models.RetrievedChunk, error) {
	resp, err := r.client.VectorSearch(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		chunk := models.RetrievedChunk{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: make(map[string]interface{}),
		}
		if text, ok := hit.Fields["text"].(string); ok {
			chunk.Text = text
		}
		for _, key := range []string{"document_id", "filename", "chunk_index", "page_number"} {
			if val, ok := hit.Fields[key]; ok {
				chunk.Metadata[key] = val
			}
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// Count returns the number of indexed entries
func (r *CouchbaseVectorRepository) Count(ctx context.Context) (int, error) {
	return r.client.CountIndex(ctx)
}

// Ping verifies the cluster is reachable
func (r *CouchbaseVectorRepository) Ping(ctx context.Context) error {
	return r.client.Heartbeat(ctx)
}
