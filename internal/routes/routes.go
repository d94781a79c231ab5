package routes

import (
	"github.com/gorilla/mux"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/handlers"
)

// Handlers groups everything the router needs
type Handlers struct {
	Document *handlers.DocumentHandler
	Chat     *handlers.ChatHandler
	Health   *handlers.HealthHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	router.HandleFunc("/health", h.Health.Health).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/documents/upload", h.Document.UploadDocument).Methods("POST")
	api.HandleFunc("/chat/ask", h.Chat.Ask).Methods("POST")
	api.HandleFunc("/sessions/{id}/messages", h.Chat.SessionMessages).Methods("GET")
}
