package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/services"
)

// ChatHandler answers questions over Server-Sent Events: both chains stream
// fragments tagged by source so the frontend can render the grounded and the
// model-only answer side by side.
type ChatHandler struct {
	chat        *services.ChatService
	transcripts repositories.TranscriptRepository
	logger      *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService, transcripts repositories.TranscriptRepository, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chat:        chat,
		transcripts: transcripts,
		logger:      logger,
	}
}

// sseWriter serializes concurrent event writes from the two chains onto one
// response stream
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) send(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

// Ask handles a question and streams both answers
// @Summary Ask a question
// @Description Answer a question twice, grounded in the uploaded document and from the model alone, streamed as tagged SSE events
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body models.AskRequest true "Question with optional session and top_k"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/chat/ask [post]
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := &sseWriter{w: w, flusher: flusher}

	h.logger.Printf("Question from %s (session=%q top_k=%d)", r.RemoteAddr, req.SessionID, req.TopK)

	answer, err := h.chat.Ask(r.Context(), req.Message, services.AskOptions{
		TopK:      req.TopK,
		SessionID: req.SessionID,
		OnFragment: func(chain, fragment string) {
			stream.send(chain, map[string]string{"text": fragment})
		},
	})
	if err != nil {
		stream.send("error", models.ErrorResponse{Error: err.Error(), Status: "error"})
		return
	}

	// Per-chain terminal events: a cached answer arrives here as a single
	// unit with no fragment events before it.
	for _, chain := range []models.ChainAnswer{answer.Grounded, answer.ModelOnly} {
		if chain.Error != "" {
			stream.send("error", chain)
		} else {
			stream.send("done", chain)
		}
	}

	stream.send("complete", map[string]int{"context_chunks": len(answer.Context)})
}

// SessionMessages returns the transcript of one chat session
// @Summary Get session transcript
// @Description Return the role-tagged message history of a session
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} models.TranscriptMessage
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/messages [get]
func (h *ChatHandler) SessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	messages, err := h.transcripts.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Printf("Failed to load transcript for %s: %v", sessionID, err)
		sendError(w, http.StatusInternalServerError, "Failed to load session history")
		return
	}

	sendJSON(w, http.StatusOK, messages)
}
