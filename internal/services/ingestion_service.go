package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/chunker"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/config"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/parser"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

// IngestionService turns an uploaded document into indexed, embedded chunks
type IngestionService struct {
	vectorRepo repositories.VectorRepository
	embedder   EmbeddingProvider
	cfg        config.RAGConfig
	logger     *log.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	vectorRepo repositories.VectorRepository,
	embedder EmbeddingProvider,
	cfg config.RAGConfig,
	logger *log.Logger,
) *IngestionService {
	return &IngestionService{
		vectorRepo: vectorRepo,
		embedder:   embedder,
		cfg:        cfg,
		logger:     logger,
	}
}

// IngestDocument extracts text from the uploaded bytes, tiles it into
// overlapping chunks, embeds each chunk and upserts the entries into the
// vector index. Partial writes committed before a failure are not rolled
// back; the caller sees the whole ingestion as failed.
func (s *IngestionService) IngestDocument(ctx context.Context, filename string, data []byte) (*models.UploadResponse, error) {
	if len(data) == 0 {
		return nil, models.NewIngestionError(filename, nil, "uploaded file is empty")
	}

	pages, err := parser.Extract(data, filename)
	if err != nil {
		s.logger.Printf("Failed to parse %s: %v", filename, err)
		return nil, models.NewIngestionError(filename, err, "")
	}
	if len(pages) == 0 {
		return nil, models.NewIngestionError(filename, nil, "document contains no extractable text")
	}

	return s.indexPages(ctx, filename, pages)
}

// indexPages chunks, embeds and upserts extracted pages under a fresh
// document ID
func (s *IngestionService) indexPages(ctx context.Context, filename string, pages []parser.Page) (*models.UploadResponse, error) {
	documentID := uuid.NewString()
	chunks, err := chunker.SplitPages(documentID, filename, pages, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return nil, models.NewIngestionError(filename, err, "")
	}

	s.logger.Printf("Ingesting %s: %d pages, %d chunks (size=%d overlap=%d)",
		filename, len(pages), len(chunks), s.cfg.ChunkSize, s.cfg.ChunkOverlap)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		s.logger.Printf("Embedding failed for %s: %v", filename, err)
		return nil, models.NewIndexingError("embed", err)
	}
	if len(vectors) != len(chunks) {
		return nil, models.NewIndexingError("embed", &models.ValidationError{
			Field: "embeddings", Message: "embedding count does not match chunk count",
		})
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.vectorRepo.StoreChunks(ctx, chunks); err != nil {
		s.logger.Printf("Upsert failed for %s: %v", filename, err)
		return nil, models.NewIndexingError("upsert", err)
	}

	s.logger.Printf("Ingested %s as %s: %d chunks indexed", filename, documentID, len(chunks))

	return &models.UploadResponse{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: len(chunks),
		PageCount:  len(pages),
	}, nil
}
