package guidance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionTTL = 24 * time.Hour

// HistoryStore keeps the running transcript per session. It is consulted only
// when the caller does not supply conversation history itself.
type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]ConversationTurn, error)
	Save(ctx context.Context, sessionID string, history []ConversationTurn) error
}

// RedisHistoryStore stores transcripts in redis with a 24h TTL.
type RedisHistoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisHistoryStore(client *redis.Client, tracer trace.Tracer) *RedisHistoryStore {
	if client == nil {
		panic("guidance: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("busypreacher/session-history")
	}
	return &RedisHistoryStore{
		redis:  client,
		tracer: tracer,
	}
}

// Load returns the stored transcript, or nil when the session is unknown or
// expired.
func (s *RedisHistoryStore) Load(ctx context.Context, sessionID string) ([]ConversationTurn, error) {
	ctx, span := s.tracer.Start(ctx, "history.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("guidance: failed to load session history: %w", err)
	}

	var history []ConversationTurn
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("guidance: failed to decode session history: %w", err)
	}
	return history, nil
}

// Save overwrites the transcript for a session and refreshes its TTL.
func (s *RedisHistoryStore) Save(ctx context.Context, sessionID string, history []ConversationTurn) error {
	ctx, span := s.tracer.Start(ctx, "history.save")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("guidance: failed to marshal session history: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("guidance: failed to persist session history: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("guidance:session:%s", id)
}

// NoopHistoryStore is used when no redis deployment is configured. Sessions
// then rely entirely on caller-supplied history.
type NoopHistoryStore struct{}

func (NoopHistoryStore) Load(context.Context, string) ([]ConversationTurn, error) { return nil, nil }
func (NoopHistoryStore) Save(context.Context, string, []ConversationTurn) error   { return nil }

var _ HistoryStore = (*RedisHistoryStore)(nil)
var _ HistoryStore = NoopHistoryStore{}
