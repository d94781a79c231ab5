package models

import "fmt"

// ====================================================================
// CONFIGURATION ERRORS
// ====================================================================

// ConfigurationError reports a missing or invalid startup setting.
// These are fatal: the server refuses to start without a complete
// configuration.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
}

// MissingConfigError builds a ConfigurationError for an unset required key
func MissingConfigError(key string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: "required value is not set"}
}

// InvalidConfigError builds a ConfigurationError for a present but
// unusable value
func InvalidConfigError(key, reason string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: reason}
}

// ====================================================================
// CONNECTION ERRORS
// ====================================================================

// ConnectionError reports a failed liveness check against an external
// service (Couchbase cluster, Redis cache)
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a ConnectionError for the given target
func NewConnectionError(target string, err error) *ConnectionError {
	return &ConnectionError{Target: target, Err: err}
}

// ====================================================================
// PIPELINE ERRORS
// ====================================================================

// IngestionError reports a document that could not be accepted: empty
// upload, unreadable bytes, or no extractable text
type IngestionError struct {
	Filename string
	Err      error
	Message  string
}

func (e *IngestionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ingestion failed for %s: %s", e.Filename, e.Message)
	}
	return fmt.Sprintf("ingestion failed for %s: %v", e.Filename, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError creates an IngestionError. Message takes precedence
// over the wrapped error when both are set.
func NewIngestionError(filename string, err error, message string) *IngestionError {
	return &IngestionError{Filename: filename, Err: err, Message: message}
}

// IndexingError reports an embedding or vector store failure while
// indexing an accepted document
type IndexingError struct {
	Operation string
	Err       error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing operation %s failed: %v", e.Operation, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}

// NewIndexingError creates an IndexingError for the given operation
func NewIndexingError(operation string, err error) *IndexingError {
	return &IndexingError{Operation: operation, Err: err}
}

// RetrievalError reports a failed similarity search for a query
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for query %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// NewRetrievalError creates a RetrievalError for the given query
func NewRetrievalError(query string, err error) *RetrievalError {
	return &RetrievalError{Query: query, Err: err}
}

// GenerationError reports a model failure on one answer chain. The
// other chain keeps running.
type GenerationError struct {
	Chain string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on %s chain: %v", e.Chain, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a GenerationError for the given chain
func NewGenerationError(chain string, err error) *GenerationError {
	return &GenerationError{Chain: chain, Err: err}
}

// ====================================================================
// VALIDATION ERRORS
// ====================================================================

// ValidationError reports a rejected input value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}
