package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/agency-chat/cmd/mainconfig"
	"github.com/wolfman30/agency-chat/internal/api/router"
	"github.com/wolfman30/agency-chat/internal/app/bootstrap"
	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/internal/knowledge"
	"github.com/wolfman30/agency-chat/internal/leads"
	"github.com/wolfman30/agency-chat/internal/observability/metrics"
	"github.com/wolfman30/agency-chat/internal/webchat"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agency-chat API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	app, err := buildApp(ctx, cfg, mainconfig.Loader(cfg), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// A chat turn may wait the full completion timeout before answering.
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// app is the assembled HTTP surface plus the resources it holds open.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, loadAWS bootstrap.AWSConfigLoader, logger *logging.Logger) (*app, error) {
	a := &app{}
	metricsHandler, chatMetrics := setupMetrics()
	healthChecks := map[string]router.HealthCheck{}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		healthChecks["redis"] = redisHealth(redisClient)
	}
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
		healthChecks["postgres"] = pool.Ping
	}

	llm, cleanup, err := bootstrap.BuildLLMClient(ctx, cfg, loadAWS, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, cleanup)

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, loadAWS, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	notifier := bootstrap.BuildLeadNotifier(sender, cfg, logger)

	knowledgeRepo := bootstrap.BuildKnowledgeRepository(pool, redisClient, cfg, logger)
	source, configSource := bootstrap.BuildChatSources(cfg, knowledgeRepo, logger)
	leadsRepo := bootstrap.BuildLeadsRepository(pool)
	transcripts, err := bootstrap.BuildArchivingTranscripts(ctx, bootstrap.BuildTranscriptStore(redisClient, cfg), cfg, loadAWS, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	chatService := bootstrap.BuildChatService(cfg, bootstrap.ChatDeps{
		Source:      source,
		ConfigSrc:   configSource,
		LLM:         llm,
		Transcripts: transcripts,
		Leads:       leads.NewChatSink(leadsRepo, notifier, logger),
		Metrics:     chatMetrics,
		Logger:      logger,
	})

	a.handler = router.New(&router.Config{
		Logger:             logger,
		WebchatHandler:     webchat.NewHandler(chatService, loadWidgetJS(cfg.WidgetJSPath, logger), cfg.CORSAllowedOrigins, logger),
		KnowledgeHandler:   knowledge.NewHandler(knowledgeRepo, logger),
		LeadsHandler:       leads.NewHandler(leadsRepo, notifier, logger),
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimitRPS:   cfg.ChatRateLimitRPS,
		ChatRateLimitBurst: cfg.ChatRateLimitBurst,
		HealthChecks:       healthChecks,
	})
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes are disabled")
	}
	return a, nil
}

func setupMetrics() (http.Handler, *metrics.ChatMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewChatMetrics(reg)
}

// connectPostgresPool returns nil when the URL is empty or the database is
// unreachable; callers fall back to in-memory stores.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres")
	return pool
}

func redisHealth(client *redis.Client) router.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// loadWidgetJS reads a widget override from disk; nil selects the bundled widget.
func loadWidgetJS(path string, logger *logging.Logger) []byte {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read widget override; serving bundled widget", "path", path, "error", err)
		return nil
	}
	return data
}
