package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/config"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/db"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/handlers"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/routes"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/services"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer loads configuration, establishes the shared connections and
// wires the full pipeline. Configuration and connection failures are fatal:
// the service cannot run without its storage.
func NewServer() (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connections are memoized process-wide and shared by every request;
	// they are torn down only at process exit.
	registry := db.NewConnectionRegistry()

	cluster, err := registry.Cluster(ctx, db.CouchbaseConfig{
		Host:        cfg.Couchbase.Host,
		AdminPort:   cfg.Couchbase.AdminPort,
		QueryPort:   cfg.Couchbase.QueryPort,
		SearchPort:  cfg.Couchbase.SearchPort,
		Username:    cfg.Couchbase.Username,
		Password:    cfg.Couchbase.Password,
		Bucket:      cfg.Couchbase.Bucket,
		Scope:       cfg.Couchbase.Scope,
		Collection:  cfg.Couchbase.Collection,
		SearchIndex: cfg.Couchbase.SearchIndex,
		Timeout:     cfg.Couchbase.Timeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Printf("Couchbase connected: %s (bucket=%s index=%s)",
		cfg.Couchbase.Host, cfg.Couchbase.Bucket, cfg.Couchbase.SearchIndex)

	cache, err := registry.Cache(ctx, db.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	logger.Printf("Redis connected: %s:%d (db=%d)", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)

	embedder, err := services.NewAzureEmbedder(cfg.Azure)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	chatModel, err := services.NewAzureChatModel(cfg.Azure)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	logger.Printf("Azure OpenAI ready (chat=%s embedding=%s)",
		cfg.Azure.ChatDeployment, cfg.Azure.EmbeddingDeployment)

	vectorRepo := repositories.NewCouchbaseVectorRepository(cluster)
	answerCache := repositories.NewRedisAnswerCache(cache.GetClient(), cfg.RAG.CacheTTL)
	transcripts := repositories.NewRedisTranscriptRepository(cache.GetClient(), cfg.RAG.CacheTTL)

	ingestionService := services.NewIngestionService(vectorRepo, embedder, cfg.RAG,
		log.New(os.Stdout, "[INGEST] ", log.LstdFlags))
	retrievalService := services.NewRetrievalService(vectorRepo, embedder, cfg.RAG.TopK,
		log.New(os.Stdout, "[RETRIEVE] ", log.LstdFlags))
	chatService := services.NewChatService(retrievalService, chatModel, answerCache, transcripts,
		log.New(os.Stdout, "[CHAT] ", log.LstdFlags))

	h := &routes.Handlers{
		Document: handlers.NewDocumentHandler(ingestionService, logger),
		Chat:     handlers.NewChatHandler(chatService, transcripts, logger),
		Health:   handlers.NewHealthHandler(vectorRepo, cache, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Port)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           corsMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout: answers stream to the client over SSE
	}, nil
}
