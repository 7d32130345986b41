package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/internal/knowledge"
	"github.com/wolfman30/agency-chat/internal/leads"
	"github.com/wolfman30/agency-chat/internal/session"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildKnowledgeRepository picks Postgres when a pool is available, falling
// back to an in-memory store, and fronts it with the Redis cache when enabled.
func BuildKnowledgeRepository(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) knowledge.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	var repo knowledge.Repository
	if pool != nil {
		repo = knowledge.NewPostgresStore(pool)
		logger.Info("knowledge store: postgres")
	} else {
		repo = knowledge.NewMemoryStore()
		logger.Warn("knowledge store: in-memory (DATABASE_URL not set); admin edits are lost on restart")
	}
	if redisClient != nil && cfg != nil && cfg.KnowledgeCacheTTL > 0 {
		logger.Info("knowledge cache enabled", "ttl", cfg.KnowledgeCacheTTL.String())
		return knowledge.NewRedisCache(repo, redisClient, cfg.KnowledgeCacheTTL, logger)
	}
	return repo
}

// BuildChatSources returns where chat turns read knowledge and bot settings.
// A configured website backend takes precedence over the local repository.
func BuildChatSources(cfg *appconfig.Config, repo knowledge.Repository, logger *logging.Logger) (knowledge.Source, knowledge.ConfigSource) {
	if cfg != nil && cfg.BackendBaseURL != "" {
		if logger != nil {
			logger.Info("chat knowledge source: website backend", "base_url", cfg.BackendBaseURL)
		}
		remote := knowledge.NewRemoteSource(cfg.BackendBaseURL, cfg.BackendTimeout, nil)
		return remote, remote
	}
	return repo, repo
}

// BuildTranscriptStore returns the Redis transcript store when Redis is
// available, otherwise an in-process store.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) session.Store {
	if redisClient == nil {
		return session.NewMemoryStore()
	}
	ttl := session.DefaultTTL
	if cfg != nil && cfg.SessionTTL > 0 {
		ttl = cfg.SessionTTL
	}
	return session.NewRedisStore(redisClient, ttl)
}

// BuildLeadsRepository returns the Postgres repository when a pool is available.
func BuildLeadsRepository(pool *pgxpool.Pool) leads.Repository {
	if pool == nil {
		return leads.NewInMemoryRepository()
	}
	return leads.NewPostgresRepository(pool)
}
