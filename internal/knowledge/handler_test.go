package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(repo, logging.New("error"))
	r := chi.NewRouter()
	r.Get("/chatbot/knowledge", h.PublicKnowledge)
	r.Get("/chatbot/config", h.PublicConfig)
	r.Get("/admin/knowledge", h.ListEntries)
	r.Post("/admin/knowledge", h.CreateEntry)
	r.Get("/admin/knowledge/{id}", h.GetEntry)
	r.Put("/admin/knowledge/{id}", h.UpdateEntry)
	r.Delete("/admin/knowledge/{id}", h.DeleteEntry)
	r.Get("/admin/chatbot/config", h.GetConfig)
	r.Put("/admin/chatbot/config", h.SaveConfig)
	return r
}

func TestPublicKnowledgeOnlyActive(t *testing.T) {
	repo := NewMemoryStore(
		Entry{Question: "pricing", Answer: "a"},
		Entry{Question: "refunds", Answer: "b", IsActive: Bool(false)},
	)
	rec := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chatbot/knowledge", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success   bool    `json:"success"`
		Knowledge []Entry `json:"knowledge"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Knowledge, 1)
	assert.Equal(t, "pricing", resp.Knowledge[0].Question)
}

type brokenConfigRepo struct{ *MemoryStore }

func (brokenConfigRepo) BotConfig(context.Context) (BotConfig, error) {
	return BotConfig{}, assert.AnError
}

func TestPublicConfigServesDefaultsOnFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(brokenConfigRepo{NewMemoryStore()}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chatbot/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool      `json:"success"`
		Config  BotConfig `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Maya", resp.Config.BotName)
}

func TestAdminEntryLifecycle(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/knowledge",
		strings.NewReader(`{"category":"faq","question":"Do you run ads?","answer":"Yes, on Meta and Google.","priority":4}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/knowledge/"+created.ID,
		strings.NewReader(`{"category":"faq","question":"Do you run ads?","answer":"Yes.","priority":4,"is_active":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/knowledge/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Yes.", got.Answer)
	assert.False(t, got.Active())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/knowledge/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/knowledge/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCreateValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(NewMemoryStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/knowledge",
		strings.NewReader(`{"question":"","answer":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newTestRouter(NewMemoryStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/knowledge", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminConfigRoundTrip(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/chatbot/config",
		strings.NewReader(`{"bot_name":"Ava","auto_collect_lead":true,"custom_prompt":"Be brief."}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/chatbot/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg BotConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Ava", cfg.BotName)
	assert.Equal(t, "Be brief.", cfg.CustomPrompt)
}
