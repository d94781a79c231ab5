package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/db"
	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/repositories"
)

// HealthHandler reports service liveness and backing-store reachability
type HealthHandler struct {
	vectorRepo repositories.VectorRepository
	cache      *db.RedisClient
	logger     *log.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(vectorRepo repositories.VectorRepository, cache *db.RedisClient, logger *log.Logger) *HealthHandler {
	return &HealthHandler{
		vectorRepo: vectorRepo,
		cache:      cache,
		logger:     logger,
	}
}

// Health checks the service and its connections
// @Summary Health check
// @Description Report liveness of the service, the vector store and the cache
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{
		"service":   "ok",
		"couchbase": "ok",
		"redis":     "ok",
	}
	healthy := true

	if err := h.vectorRepo.Ping(ctx); err != nil {
		h.logger.Printf("Couchbase health check failed: %v", err)
		status["couchbase"] = err.Error()
		healthy = false
	}
	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Printf("Redis health check failed: %v", err)
		status["redis"] = err.Error()
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	sendJSON(w, code, status)
}
