package knowledge

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// Handler serves the widget's knowledge/config reads and the admin console CRUD.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a knowledge handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// PublicKnowledge handles GET /chatbot/knowledge.
func (h *Handler) PublicKnowledge(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.KnowledgeBase(r.Context())
	if err != nil {
		h.logger.Error("failed to load knowledge base", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "knowledge": []Entry{}})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "knowledge": entries})
}

// PublicConfig handles GET /chatbot/config. It always answers with a usable config.
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.BotConfig(r.Context())
	if err != nil {
		h.logger.Warn("failed to load bot config, serving defaults", "error", err)
		cfg = DefaultBotConfig()
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "config": cfg})
}

// ListEntries handles GET /admin/knowledge.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Category: q.Get("category"),
		Limit:    100,
	}
	if active, err := strconv.ParseBool(q.Get("active")); err == nil {
		filter.ActiveOnly = active
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	entries, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list knowledge entries", "error", err)
		http.Error(w, "failed to list knowledge entries", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// GetEntry handles GET /admin/knowledge/{id}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "failed to load knowledge entry")
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// CreateEntry handles POST /admin/knowledge.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.repo.Create(r.Context(), &entry)
	if err != nil {
		h.writeStoreError(w, err, "failed to create knowledge entry")
		return
	}
	h.logger.Info("knowledge entry created", "id", created.ID, "category", created.Category)
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateEntry handles PUT /admin/knowledge/{id}.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	entry.ID = chi.URLParam(r, "id")
	updated, err := h.repo.Update(r.Context(), &entry)
	if err != nil {
		h.writeStoreError(w, err, "failed to update knowledge entry")
		return
	}
	h.logger.Info("knowledge entry updated", "id", updated.ID)
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteEntry handles DELETE /admin/knowledge/{id}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "failed to delete knowledge entry")
		return
	}
	h.logger.Info("knowledge entry deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetConfig handles GET /admin/chatbot/config.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.BotConfig(r.Context())
	if err != nil {
		h.logger.Error("failed to load bot config", "error", err)
		http.Error(w, "failed to load bot config", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// SaveConfig handles PUT /admin/chatbot/config.
func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg BotConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.repo.SaveBotConfig(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save bot config", "error", err)
		http.Error(w, "failed to save bot config", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg.WithDefaults())
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
