// Package main Document Chat API Server
//
//	@title			Document Chat API
//	@version		1.0
//	@description	Upload a PDF and ask questions answered both from the document and from the model alone
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	_ "github.com/shivay-couchbase/openai-azure-rag-couchbase/docs" // swagger docs registration
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("Listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
