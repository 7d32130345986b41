package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

func TestSetupMetricsExposesChatMetrics(t *testing.T) {
	handler, chatMetrics := setupMetrics()
	if handler == nil || chatMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	chatMetrics.ObserveTurn("ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "agency_chat_turns_total") {
		t.Fatalf("expected chat turn counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestLoadWidgetJS(t *testing.T) {
	logger := logging.New("error")
	if got := loadWidgetJS("", logger); got != nil {
		t.Fatalf("expected nil for empty path")
	}
	if got := loadWidgetJS(filepath.Join(t.TempDir(), "missing.js"), logger); got != nil {
		t.Fatalf("expected nil for missing file")
	}

	path := filepath.Join(t.TempDir(), "widget.js")
	if err := os.WriteFile(path, []byte("// custom"), 0o600); err != nil {
		t.Fatalf("write widget: %v", err)
	}
	if got := string(loadWidgetJS(path, logger)); got != "// custom" {
		t.Fatalf("expected override contents, got %q", got)
	}
}

func TestBuildAppInMemory(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		LLMProvider:        appconfig.ProviderOpenAI,
		OpenAIAPIKey:       "sk-test",
		OpenAIModel:        "gpt-4o-mini",
		CompletionTimeout:  time.Second,
		EmailProvider:      "stub",
		ChatRateLimitRPS:   10,
		ChatRateLimitBurst: 10,
	}

	a, err := buildApp(context.Background(), cfg, nil, logger)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer a.Close()

	for _, path := range []string{"/health", "/chatbot/config", "/chatbot/knowledge", "/chat/widget.js", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		a.handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestBuildAppRejectsUnknownProvider(t *testing.T) {
	cfg := &appconfig.Config{LLMProvider: "unknown", EmailProvider: "stub"}
	if _, err := buildApp(context.Background(), cfg, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
