package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/agency-chat/internal/http/middleware"
	"github.com/wolfman30/agency-chat/internal/knowledge"
	"github.com/wolfman30/agency-chat/internal/leads"
	"github.com/wolfman30/agency-chat/internal/webchat"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	WebchatHandler     *webchat.Handler
	KnowledgeHandler   *knowledge.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Per-IP limit on the chat routes; zero disables it.
	ChatRateLimitRPS   float64
	ChatRateLimitBurst int

	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.KnowledgeHandler != nil {
			public.Get("/chatbot/knowledge", cfg.KnowledgeHandler.PublicKnowledge)
			public.Get("/chatbot/config", cfg.KnowledgeHandler.PublicConfig)
		}
		if cfg.LeadsHandler != nil {
			public.Post("/leads/web", cfg.LeadsHandler.CreateWebLead)
		}
	})

	if cfg.WebchatHandler != nil {
		r.Group(func(chat chi.Router) {
			if cfg.ChatRateLimitRPS > 0 {
				chat.Use(httpmiddleware.RateLimit(cfg.ChatRateLimitRPS, cfg.ChatRateLimitBurst))
			}
			chat.Post("/chatbot/chat", cfg.WebchatHandler.HandleChat)
			chat.Get("/chatbot/history", cfg.WebchatHandler.HandleHistory)
			chat.Get("/chat/ws", cfg.WebchatHandler.HandleWebSocket)
		})
		r.With(middleware.Compress(5)).Get("/chat/widget.js", cfg.WebchatHandler.HandleWidgetJS)
	}

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.KnowledgeHandler != nil {
				admin.Route("/knowledge", func(kb chi.Router) {
					kb.Get("/", cfg.KnowledgeHandler.ListEntries)
					kb.Post("/", cfg.KnowledgeHandler.CreateEntry)
					kb.Get("/{id}", cfg.KnowledgeHandler.GetEntry)
					kb.Put("/{id}", cfg.KnowledgeHandler.UpdateEntry)
					kb.Delete("/{id}", cfg.KnowledgeHandler.DeleteEntry)
				})
				admin.Get("/chatbot/config", cfg.KnowledgeHandler.GetConfig)
				admin.Put("/chatbot/config", cfg.KnowledgeHandler.SaveConfig)
			}
			if cfg.LeadsHandler != nil {
				admin.Get("/leads", cfg.LeadsHandler.ListLeads)
				admin.Get("/leads/{id}", cfg.LeadsHandler.GetLead)
			}
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		response := map[string]any{"status": "ok"}
		if len(checks) > 0 {
			deps := make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(ctx); err != nil {
					deps[name] = err.Error()
					status = http.StatusServiceUnavailable
					response["status"] = "degraded"
					continue
				}
				deps[name] = "ok"
			}
			response["dependencies"] = deps
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}
}
