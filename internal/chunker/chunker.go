package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/parser"
)

// Split tiles text into windows of up to chunkSize runes, each overlapping
// its predecessor by overlap runes. The final chunk may be shorter; no chunk
// is ever empty. Empty input yields an empty slice, which is not an error.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, &models.ValidationError{Field: "chunk_size", Message: "must be positive"}
	}
	if overlap < 0 {
		return nil, &models.ValidationError{Field: "overlap", Message: "cannot be negative"}
	}
	if overlap >= chunkSize {
		return nil, &models.ValidationError{Field: "overlap", Message: "must be smaller than chunk_size"}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// SplitPages concatenates extracted pages in document order, tiles the
// combined text, and tags each chunk with the page its window starts on.
func SplitPages(documentID, filename string, pages []parser.Page, chunkSize, overlap int) ([]models.Chunk, error) {
	var combined []rune
	// page number at each rune offset of the combined text
	var pageAt []int
	for _, page := range pages {
		for _, r := range page.Text {
			combined = append(combined, r)
			pageAt = append(pageAt, page.Number)
		}
	}

	texts, err := Split(string(combined), chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	step := chunkSize - overlap
	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		start := i * step
		chunks = append(chunks, models.Chunk{
			ID:         chunkID(filename, i, text),
			DocumentID: documentID,
			Filename:   filename,
			Text:       text,
			ChunkIndex: i,
			PageNumber: pageAt[start],
		})
	}

	return chunks, nil
}

// chunkID derives a stable key from the chunk's identity and content, so
// re-uploading an unchanged file overwrites its entries instead of doubling
// the index footprint.
func chunkID(filename string, index int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", filename, index, text)))
	return hex.EncodeToString(sum[:8])
}
