package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// ConnectionRegistry memoizes cluster and cache handles per parameter set.
// It is constructed once at process start and shared by every component that
// needs a connection: the first call for a given configuration dials and
// verifies the connection, later calls with an equal configuration return
// the same live handle. Handles are safe for concurrent use and live until
// process exit.
type ConnectionRegistry struct {
	mu       sync.Mutex
	clusters map[string]*CouchbaseClient
	caches   map[string]*RedisClient
}

// NewConnectionRegistry creates an empty registry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		clusters: make(map[string]*CouchbaseClient),
		caches:   make(map[string]*RedisClient),
	}
}

// Cluster returns the memoized Couchbase handle for the given parameters,
// establishing and verifying it on first use. A failed connect attempt is
// not memoized and surfaces as a ConnectionError.
func (r *ConnectionRegistry) Cluster(ctx context.Context, config CouchbaseConfig) (*CouchbaseClient, error) {
	key := fmt.Sprintf("%+v", config)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clusters[key]; ok {
		return client, nil
	}

	client := NewCouchbaseClient(config)
	if err := client.Heartbeat(ctx); err != nil {
		client.Close()
		return nil, models.NewConnectionError("couchbase", err)
	}

	r.clusters[key] = client
	return client, nil
}

// Cache returns the memoized Redis handle for the given parameters,
// establishing and verifying it on first use
func (r *ConnectionRegistry) Cache(ctx context.Context, config RedisConfig) (*RedisClient, error) {
	key := fmt.Sprintf("%+v", config)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.caches[key]; ok {
		return client, nil
	}

	client := NewRedisClient(config)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, models.NewConnectionError("redis", err)
	}

	r.caches[key] = client
	return client, nil
}

// Close tears down every held connection. Only called at process exit.
func (r *ConnectionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clusters {
		client.Close()
	}
	for _, client := range r.caches {
		_ = client.Close()
	}
	r.clusters = make(map[string]*CouchbaseClient)
	r.caches = make(map[string]*RedisClient)
}
