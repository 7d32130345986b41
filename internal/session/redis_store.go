package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/agency-chat/internal/chatbot"
)

// RedisStore keeps each transcript as a Redis list of JSON messages.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("agency.internal.session"),
	}
}

// Append pushes messages, trims the list to MaxMessages and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, sessionID string, messages ...chatbot.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "session.append")
	defer span.End()
	span.SetAttributes(attribute.Int("agency.session.messages", len(messages)))

	values := make([]any, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("session: marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := transcriptKey(sessionID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -MaxMessages, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: append transcript: %w", err)
	}
	return nil
}

// History returns up to limit of the newest messages, oldest first. limit <= 0 returns all.
func (s *RedisStore) History(ctx context.Context, sessionID string, limit int) ([]chatbot.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "session.history")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: load transcript: %w", err)
	}

	out := make([]chatbot.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var m chatbot.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("chatbot:session:%s", sessionID)
}
