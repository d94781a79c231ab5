package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/config"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/parser"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

func newIngestionService(t *testing.T) *IngestionService {
	t.Helper()

	return NewIngestionService(
		repositories.NewMemoryVectorRepository(),
		new(MockEmbeddingProvider),
		config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 4},
		log.New(io.Discard, "", 0),
	)
}

// failingVectorRepo rejects every write
type failingVectorRepo struct {
	*repositories.MemoryVectorRepository
}

func (f *failingVectorRepo) StoreChunks(ctx context.Context, chunks []models.Chunk) error {
	return errors.New("cluster unavailable")
}

// twoChunkPages yields exactly two chunks at size 100 / overlap 10:
// 150 runes tile as [0:100) and [90:150)
func twoChunkPages() []parser.Page {
	return []parser.Page{{Number: 1, Text: strings.Repeat("a", 150)}}
}

func TestIngestDocument_EmptyUploadRejected(t *testing.T) {
	svc := newIngestionService(t)

	_, err := svc.IngestDocument(context.Background(), "empty.pdf", nil)

	var ingErr *models.IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, "empty.pdf", ingErr.Filename)
	assert.Contains(t, err.Error(), "empty")
}

func TestIngestDocument_UnreadableDocumentRejected(t *testing.T) {
	svc := newIngestionService(t)

	_, err := svc.IngestDocument(context.Background(), "broken.pdf", []byte("%PDF-1.7 garbage"))

	var ingErr *models.IngestionError
	require.ErrorAs(t, err, &ingErr)
}

func TestIngestDocument_UnsupportedFormatRejected(t *testing.T) {
	svc := newIngestionService(t)

	_, err := svc.IngestDocument(context.Background(), "notes.txt", []byte("plain text"))

	var ingErr *models.IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestIndexPages_EmbedsAndStoresChunks(t *testing.T) {
	repo := repositories.NewMemoryVectorRepository()
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedDocuments", mock.Anything, mock.MatchedBy(func(texts []string) bool {
		return len(texts) == 2
	})).Return([][]float32{{1, 0}, {0, 1}}, nil)

	svc := NewIngestionService(repo, embedder,
		config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 4},
		log.New(io.Discard, "", 0))

	resp, err := svc.indexPages(context.Background(), "doc.pdf", twoChunkPages())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, "doc.pdf", resp.Filename)
	assert.Equal(t, 2, resp.ChunkCount)
	assert.Equal(t, 1, resp.PageCount)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// each stored chunk carries its own embedding
	results, err := repo.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	embedder.AssertExpectations(t)
}

func TestIndexPages_EmbeddingFailureIsIndexingError(t *testing.T) {
	repo := repositories.NewMemoryVectorRepository()
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return(nil, errors.New("deployment throttled"))

	svc := NewIngestionService(repo, embedder,
		config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 4},
		log.New(io.Discard, "", 0))

	_, err := svc.indexPages(context.Background(), "doc.pdf", twoChunkPages())

	var idxErr *models.IndexingError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "embed", idxErr.Operation)

	// nothing may be indexed when embedding fails
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexPages_EmbeddingCountMismatchIsIndexingError(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return([][]float32{{1, 0}}, nil) // one vector for two chunks

	svc := NewIngestionService(repositories.NewMemoryVectorRepository(), embedder,
		config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 4},
		log.New(io.Discard, "", 0))

	_, err := svc.indexPages(context.Background(), "doc.pdf", twoChunkPages())

	var idxErr *models.IndexingError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "embed", idxErr.Operation)
}

func TestIndexPages_UpsertFailureIsIndexingError(t *testing.T) {
	embedder := new(MockEmbeddingProvider)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return([][]float32{{1, 0}, {0, 1}}, nil)

	svc := NewIngestionService(
		&failingVectorRepo{repositories.NewMemoryVectorRepository()},
		embedder,
		config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 4},
		log.New(io.Discard, "", 0))

	_, err := svc.indexPages(context.Background(), "doc.pdf", twoChunkPages())

	var idxErr *models.IndexingError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "upsert", idxErr.Operation)
}
