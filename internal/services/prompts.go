package services

import (
	"fmt"
	"strings"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// The grounded system prompt is load-bearing for user trust: the model must
// answer only from the supplied context and admit when the context is not
// enough, instead of fabricating.
const groundedSystemPrompt = "You are a helpful assistant that answers questions about an uploaded document. " +
	"Answer using ONLY the context provided below. " +
	"If the context does not contain enough information to answer the question, " +
	"say explicitly that you cannot answer from the provided document. Do not make anything up."

const modelOnlySystemPrompt = "You are a helpful assistant. Answer the user's question from your own knowledge."

// groundedPrompt fills the context-conditioned prompt with the retrieved
// chunks joined in retrieval order
func groundedPrompt(query string, context []models.RetrievedChunk) string {
	var sb strings.Builder
	for _, chunk := range context {
		sb.WriteString(chunk.Text)
		sb.WriteString("\n\n")
	}
	return fmt.Sprintf("Context:\n%s\nQuestion: %s", sb.String(), query)
}

// modelOnlyPrompt is the question alone, no context injection
func modelOnlyPrompt(query string) string {
	return fmt.Sprintf("Question: %s", query)
}
