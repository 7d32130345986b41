package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

const (
	activeEntriesKey = "chatbot:knowledge:active"
	botConfigKey     = "chatbot:config"
)

// RedisCache puts a read-through cache in front of a Repository. Reads used
// on every chat turn are cached; admin writes go to the backing store and
// drop the cached copies.
type RedisCache struct {
	Repository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisCache wraps repo with a Redis cache holding values for ttl.
func NewRedisCache(repo Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisCache {
	if repo == nil {
		panic("knowledge: repository cannot be nil")
	}
	if client == nil {
		panic("knowledge: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisCache{Repository: repo, client: client, ttl: ttl, logger: logger}
}

// KnowledgeBase serves active entries from cache, loading on miss.
// A Redis failure degrades to the backing store rather than failing the turn.
func (c *RedisCache) KnowledgeBase(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	hit, err := c.get(ctx, activeEntriesKey, &entries)
	if err != nil {
		c.logger.Warn("knowledge cache read failed", "key", activeEntriesKey, "error", err)
	}
	if hit {
		return entries, nil
	}

	entries, err = c.Repository.KnowledgeBase(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, activeEntriesKey, entries)
	return entries, nil
}

func (c *RedisCache) BotConfig(ctx context.Context) (BotConfig, error) {
	var cfg BotConfig
	hit, err := c.get(ctx, botConfigKey, &cfg)
	if err != nil {
		c.logger.Warn("bot config cache read failed", "key", botConfigKey, "error", err)
	}
	if hit {
		return cfg, nil
	}

	cfg, err = c.Repository.BotConfig(ctx)
	if err != nil {
		return BotConfig{}, err
	}
	c.set(ctx, botConfigKey, cfg)
	return cfg, nil
}

func (c *RedisCache) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	created, err := c.Repository.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, activeEntriesKey)
	return created, nil
}

func (c *RedisCache) Update(ctx context.Context, entry *Entry) (*Entry, error) {
	updated, err := c.Repository.Update(ctx, entry)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, activeEntriesKey)
	return updated, nil
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, activeEntriesKey)
	return nil
}

func (c *RedisCache) SaveBotConfig(ctx context.Context, cfg BotConfig) error {
	if err := c.Repository.SaveBotConfig(ctx, cfg); err != nil {
		return err
	}
	c.invalidate(ctx, botConfigKey)
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("knowledge: cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("knowledge: cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("knowledge cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("knowledge cache write failed", "key", key, "error", err)
	}
}

func (c *RedisCache) invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("knowledge cache invalidate failed", "key", key, "error", err)
	}
}
