package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CouchbaseClient wraps HTTP calls to the Couchbase REST services: the query
// service for N1QL upserts and the search service for FTS vector queries.
// This avoids pinning the service to a particular SDK release while the
// vector search API is still moving.
type CouchbaseClient struct {
	adminURL   string
	queryURL   string
	searchURL  string
	username   string
	password   string
	bucket     string
	scope      string
	collection string
	index      string
	httpClient *http.Client
}

// CouchbaseConfig holds connection parameters for the cluster
type CouchbaseConfig struct {
	Host        string
	AdminPort   int
	QueryPort   int
	SearchPort  int
	Username    string
	Password    string
	Bucket      string
	Scope       string // default: "_default"
	Collection  string // default: "_default"
	SearchIndex string
	Timeout     time.Duration
}

// IndexEntry is one (text, embedding, metadata) triple persisted under the
// search index
type IndexEntry struct {
	ID         string    `json:"-"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkIndex int       `json:"chunk_index"`
	PageNumber int       `json:"page_number"`
}

// SearchHit is one ranked result from a vector query
type SearchHit struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Fields map[string]interface{} `json:"fields"`
}

// SearchResponse represents the response from a vector query
type SearchResponse struct {
	Hits      []SearchHit `json:"hits"`
	TotalHits int         `json:"total_hits"`
}

// NewCouchbaseClient creates a new Couchbase REST client
func NewCouchbaseClient(config CouchbaseConfig) *CouchbaseClient {
	if config.AdminPort == 0 {
		config.AdminPort = 8091
	}
	if config.QueryPort == 0 {
		config.QueryPort = 8093
	}
	if config.SearchPort == 0 {
		config.SearchPort = 8094
	}
	if config.Scope == "" {
		config.Scope = "_default"
	}
	if config.Collection == "" {
		config.Collection = "_default"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &CouchbaseClient{
		adminURL:   fmt.Sprintf("http://%s:%d", config.Host, config.AdminPort),
		queryURL:   fmt.Sprintf("http://%s:%d", config.Host, config.QueryPort),
		searchURL:  fmt.Sprintf("http://%s:%d", config.Host, config.SearchPort),
		username:   config.Username,
		password:   config.Password,
		bucket:     config.Bucket,
		scope:      config.Scope,
		collection: config.Collection,
		index:      config.SearchIndex,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Heartbeat checks if the cluster is alive and the credentials are accepted
func (c *CouchbaseClient) Heartbeat(ctx context.Context) error {
	url := fmt.Sprintf("%s/pools", c.adminURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create heartbeat request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("heartbeat rejected: bad credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat failed with status: %d", resp.StatusCode)
	}

	return nil
}

// keyspace returns the fully qualified backtick-quoted keyspace
func (c *CouchbaseClient) keyspace() string {
	return fmt.Sprintf("`%s`.`%s`.`%s`", c.bucket, c.scope, c.collection)
}

// queryServiceResponse is the envelope returned by the N1QL query service
type queryServiceResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"errors"`
}

// UpsertEntries writes index entries through the query service. Entries with
// an already-used key are overwritten, everything else is appended.
func (c *CouchbaseClient) UpsertEntries(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]string, 0, len(entries))
	args := make([]interface{}, 0, len(entries)*2)
	for i, entry := range entries {
		values = append(values, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, entry.ID, entry)
	}

	statement := fmt.Sprintf("UPSERT INTO %s (KEY, VALUE) VALUES %s",
		c.keyspace(), strings.Join(values, ", "))

	payload := map[string]interface{}{
		"statement": statement,
		"args":      args,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal query request: %w", err)
	}

	url := fmt.Sprintf("%s/query/service", c.queryURL)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upsert failed (status %d): %s", resp.StatusCode, string(body))
	}

	var queryResp queryServiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if queryResp.Status != "success" {
		if len(queryResp.Errors) > 0 {
			return fmt.Errorf("upsert failed: [%d] %s", queryResp.Errors[0].Code, queryResp.Errors[0].Msg)
		}
		return fmt.Errorf("upsert failed with status: %s", queryResp.Status)
	}

	return nil
}

// VectorSearch runs a k-nearest-neighbours query against the search index
// and returns hits ranked by similarity descending
func (c *CouchbaseClient) VectorSearch(ctx context.Context, embedding []float32, k int) (*SearchResponse, error) {
	payload := map[string]interface{}{
		"size":   k,
		"fields": []string{"text", "document_id", "filename", "chunk_index", "page_number"},
		"query":  map[string]interface{}{"match_none": map[string]interface{}{}},
		"knn": []map[string]interface{}{
			{
				"field":  "embedding",
				"vector": embedding,
				"k":      k,
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/api/bucket/%s/scope/%s/index/%s/query",
		c.searchURL, c.bucket, c.scope, c.index)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vector search failed (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp struct {
		Hits      []SearchHit `json:"hits"`
		TotalHits int         `json:"total_hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &SearchResponse{
		Hits:      searchResp.Hits,
		TotalHits: searchResp.TotalHits,
	}, nil
}

// CountIndex returns the number of entries currently indexed
func (c *CouchbaseClient) CountIndex(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/api/bucket/%s/scope/%s/index/%s/count",
		c.searchURL, c.bucket, c.scope, c.index)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("count failed (status %d): %s", resp.StatusCode, string(body))
	}

	var countResp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return countResp.Count, nil
}

// Close closes idle HTTP connections
func (c *CouchbaseClient) Close() {
	c.httpClient.CloseIdleConnections()
}
