package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// MockRetriever mocks the Retriever interface
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RetrievedChunk), args.Error(1)
}

// MockChatModel mocks the ChatModel interface
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) GenerateStream(ctx context.Context, system, prompt string, sink func(fragment string)) (string, error) {
	args := m.Called(ctx, system, prompt, sink)
	return args.String(0), args.Error(1)
}

// MockEmbeddingProvider mocks the EmbeddingProvider interface
type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// fakeTranscripts is an in-memory TranscriptRepository
type fakeTranscripts struct {
	mu       sync.Mutex
	messages map[string][]models.TranscriptMessage
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{messages: make(map[string][]models.TranscriptMessage)}
}

func (f *fakeTranscripts) Append(ctx context.Context, sessionID string, msg models.TranscriptMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[sessionID] = append(f.messages[sessionID], msg)
	return nil
}

func (f *fakeTranscripts) History(ctx context.Context, sessionID string) ([]models.TranscriptMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[sessionID], nil
}
