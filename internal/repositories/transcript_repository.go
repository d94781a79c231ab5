package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

const transcriptKeyPrefix = "transcript:"

// TranscriptRepository stores the append-only, role-tagged message sequence
// of one chat session. Transcripts are session-scoped and expire with the
// session; they do not survive restarts of the backing store by contract.
type TranscriptRepository interface {
	Append(ctx context.Context, sessionID string, msg models.TranscriptMessage) error
	History(ctx context.Context, sessionID string) ([]models.TranscriptMessage, error)
}

// RedisTranscriptRepository implements TranscriptRepository on a Redis list
// per session
type RedisTranscriptRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTranscriptRepository creates a Redis-backed transcript repository.
// Each append refreshes the session TTL.
func NewRedisTranscriptRepository(client *redis.Client, ttl time.Duration) *RedisTranscriptRepository {
	return &RedisTranscriptRepository{
		client: client,
		ttl:    ttl,
	}
}

// Append adds one message to the end of the session transcript
func (r *RedisTranscriptRepository) Append(ctx context.Context, sessionID string, msg models.TranscriptMessage) error {
	if sessionID == "" {
		return &models.ValidationError{Field: "session_id", Message: "session ID is required"}
	}

	msg.CreatedAt = time.Now()
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := transcriptKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transcript message: %w", err)
	}

	return nil
}

// History returns the full transcript in append order
func (r *RedisTranscriptRepository) History(ctx context.Context, sessionID string) ([]models.TranscriptMessage, error) {
	key := transcriptKeyPrefix + sessionID

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	messages := make([]models.TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
