package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/config"
)

// EmbeddingProvider converts text into fixed-dimension vectors. The same
// provider must be used at indexing and query time.
type EmbeddingProvider interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel produces an answer for a prompt as an ordered sequence of text
// fragments delivered through sink, and returns the full concatenated
// answer once the stream completes.
type ChatModel interface {
	GenerateStream(ctx context.Context, system, prompt string, sink func(fragment string)) (string, error)
}

// newAzureLLM builds a langchaingo OpenAI client pointed at an Azure
// deployment
func newAzureLLM(cfg config.AzureOpenAIConfig, deployment string) (*openai.LLM, error) {
	return openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithAPIVersion(cfg.APIVersion),
		openai.WithModel(deployment),
		openai.WithEmbeddingModel(cfg.EmbeddingDeployment),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
}

// NewAzureEmbedder creates the embedding provider for the configured Azure
// embedding deployment
func NewAzureEmbedder(cfg config.AzureOpenAIConfig) (EmbeddingProvider, error) {
	llm, err := newAzureLLM(cfg, cfg.EmbeddingDeployment)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// AzureChatModel implements ChatModel on the configured Azure chat deployment
type AzureChatModel struct {
	llm *openai.LLM
}

// NewAzureChatModel creates the chat model for the configured Azure chat
// deployment
func NewAzureChatModel(cfg config.AzureOpenAIConfig) (*AzureChatModel, error) {
	llm, err := newAzureLLM(cfg, cfg.ChatDeployment)
	if err != nil {
		return nil, err
	}
	return &AzureChatModel{llm: llm}, nil
}

// GenerateStream streams the completion token by token through sink and
// returns the full answer
func (m *AzureChatModel) GenerateStream(ctx context.Context, system, prompt string, sink func(fragment string)) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	var full strings.Builder
	resp, err := m.llm.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			fragment := string(chunk)
			full.WriteString(fragment)
			if sink != nil {
				sink(fragment)
			}
			return nil
		}),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	// Prefer the buffered stream; fall back to the final choice when the
	// provider returned without streaming.
	if full.Len() > 0 {
		return full.String(), nil
	}
	answer := resp.Choices[0].Content
	if sink != nil && answer != "" {
		sink(answer)
	}
	return answer, nil
}
