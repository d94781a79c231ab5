package models

import "time"

// Chain identities. The two chains are cached separately because the same
// question can legitimately produce different answers on each.
const (
	ChainGrounded  = "grounded"
	ChainModelOnly = "model"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// AskRequest represents an incoming question from the chat frontend
type AskRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

// Validate validates the ask request
func (r *AskRequest) Validate() error {
	if r.Message == "" {
		return &ValidationError{Field: "message", Message: "message is required"}
	}
	if r.TopK < 0 {
		return &ValidationError{Field: "top_k", Message: "top_k cannot be negative"}
	}
	if r.TopK > 50 {
		return &ValidationError{Field: "top_k", Message: "top_k cannot exceed 50"}
	}
	return nil
}

// ChainAnswer is the outcome of one answer chain: either a complete answer
// or an error, never both
type ChainAnswer struct {
	Chain     string `json:"chain"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
	FromCache bool   `json:"from_cache"`
}

// TranscriptMessage is one role-tagged entry in a session transcript.
// Assistant entries carry the chain that produced them.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Chain     string    `json:"chain,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse confirms a completed ingestion back to the caller
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	PageCount  int    `json:"page_count"`
}

// ErrorResponse is the JSON body for failed requests
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}
