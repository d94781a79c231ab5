package services

import (
	"context"
	"log"
	"sync"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

// ChatService answers every question twice: once grounded in retrieved
// document chunks and once from the model's own knowledge, so the caller can
// compare the two side by side.
type ChatService struct {
	retriever   Retriever
	model       ChatModel
	cache       repositories.AnswerCache
	transcripts repositories.TranscriptRepository
	logger      *log.Logger
}

// NewChatService creates a new chat service. transcripts may be nil when no
// session history is wanted.
func NewChatService(
	retriever Retriever,
	model ChatModel,
	cache repositories.AnswerCache,
	transcripts repositories.TranscriptRepository,
	logger *log.Logger,
) *ChatService {
	return &ChatService{
		retriever:   retriever,
		model:       model,
		cache:       cache,
		transcripts: transcripts,
		logger:      logger,
	}
}

// AskOptions tunes one question
type AskOptions struct {
	// TopK bounds the retrieved context; <= 0 uses the retriever default
	TopK int

	// SessionID, when set, appends the question and both answers to the
	// session transcript
	SessionID string

	// OnFragment receives incremental answer fragments tagged by chain.
	// It is only invoked for freshly generated answers; a cache hit is
	// delivered as a single complete unit in the result instead. It may
	// be called concurrently from both chains.
	OnFragment func(chain, fragment string)
}

// DualAnswer is the outcome of one question: one result per chain, plus the
// context the grounded chain saw. One chain failing never suppresses the
// other's answer.
type DualAnswer struct {
	Grounded  models.ChainAnswer      `json:"grounded"`
	ModelOnly models.ChainAnswer      `json:"model"`
	Context   []models.RetrievedChunk `json:"context,omitempty"`
}

// Ask retrieves context once, then runs the grounded and model-only chains
// as independent tasks, joining both before any cache or transcript write.
func (s *ChatService) Ask(ctx context.Context, query string, opts AskOptions) (*DualAnswer, error) {
	if query == "" {
		return nil, &models.ValidationError{Field: "message", Message: "message is required"}
	}

	// One retrieval shared by both chains. A search failure degrades to an
	// empty context so the user still gets both answers; the grounded
	// prompt then makes the model say the document could not help.
	contextChunks, err := s.retriever.Retrieve(ctx, query, opts.TopK)
	if err != nil {
		s.logger.Printf("Retrieval failed, continuing with empty context: %v", err)
		contextChunks = nil
	}

	answer := &DualAnswer{Context: contextChunks}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		answer.Grounded = s.runChain(ctx, models.ChainGrounded, query,
			groundedSystemPrompt, groundedPrompt(query, contextChunks), opts.OnFragment)
	}()
	go func() {
		defer wg.Done()
		answer.ModelOnly = s.runChain(ctx, models.ChainModelOnly, query,
			modelOnlySystemPrompt, modelOnlyPrompt(query), opts.OnFragment)
	}()
	wg.Wait()

	if opts.SessionID != "" {
		s.appendTranscript(ctx, opts.SessionID, query, answer)
	}

	return answer, nil
}

// runChain produces one chain's answer: cache hit returns the stored answer
// as a single unit; otherwise the model streams fragments and the complete
// answer is written through to the cache. A cancelled stream is never cached.
func (s *ChatService) runChain(ctx context.Context, chain, query, system, prompt string, onFragment func(chain, fragment string)) models.ChainAnswer {
	cached, hit, err := s.cache.Get(ctx, chain, query)
	if err != nil {
		s.logger.Printf("Cache lookup failed on %s chain: %v", chain, err)
	}
	if hit {
		s.logger.Printf("Cache hit on %s chain", chain)
		return models.ChainAnswer{Chain: chain, Answer: cached, FromCache: true}
	}

	var sink func(fragment string)
	if onFragment != nil {
		sink = func(fragment string) { onFragment(chain, fragment) }
	}

	full, err := s.model.GenerateStream(ctx, system, prompt, sink)
	if err != nil {
		genErr := models.NewGenerationError(chain, err)
		s.logger.Printf("%v", genErr)
		return models.ChainAnswer{Chain: chain, Error: genErr.Error()}
	}

	// Caching a partial answer is never acceptable: skip the write when the
	// client went away mid-stream.
	if ctx.Err() != nil {
		return models.ChainAnswer{Chain: chain, Error: models.NewGenerationError(chain, ctx.Err()).Error()}
	}

	if err := s.cache.Put(ctx, chain, query, full); err != nil {
		s.logger.Printf("Cache write failed on %s chain: %v", chain, err)
	}

	return models.ChainAnswer{Chain: chain, Answer: full}
}

func (s *ChatService) appendTranscript(ctx context.Context, sessionID, query string, answer *DualAnswer) {
	if s.transcripts == nil {
		return
	}

	messages := []models.TranscriptMessage{
		{Role: models.RoleUser, Content: query},
	}
	for _, chain := range []models.ChainAnswer{answer.Grounded, answer.ModelOnly} {
		if chain.Error == "" {
			messages = append(messages, models.TranscriptMessage{
				Role:    models.RoleAssistant,
				Chain:   chain.Chain,
				Content: chain.Answer,
			})
		}
	}

	for _, msg := range messages {
		if err := s.transcripts.Append(ctx, sessionID, msg); err != nil {
			s.logger.Printf("Failed to append transcript for session %s: %v", sessionID, err)
			return
		}
	}
}
