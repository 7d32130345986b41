package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	knowledgePath = "/chatbot/knowledge.php"
	configPath    = "/chatbot/config.php"

	maxRemoteBody = 2 << 20
)

// RemoteSource reads knowledge and settings from the website's PHP backend.
// Any non-200 status, success=false, or undecodable body is an error; callers
// decide how to degrade.
type RemoteSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteSource targets baseURL (scheme and host, optional path prefix).
func NewRemoteSource(baseURL string, timeout time.Duration, client *http.Client) *RemoteSource {
	if client == nil {
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

type knowledgeEnvelope struct {
	Success   bool    `json:"success"`
	Knowledge []Entry `json:"knowledge"`
	Error     string  `json:"error,omitempty"`
}

type configEnvelope struct {
	Success bool            `json:"success"`
	Config  json.RawMessage `json:"config"`
	Error   string          `json:"error,omitempty"`
}

func (s *RemoteSource) KnowledgeBase(ctx context.Context) ([]Entry, error) {
	var env knowledgeEnvelope
	if err := s.getJSON(ctx, knowledgePath, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("knowledge: %s reported failure: %s", knowledgePath, env.Error)
	}
	if env.Knowledge == nil {
		return []Entry{}, nil
	}
	return env.Knowledge, nil
}

func (s *RemoteSource) BotConfig(ctx context.Context) (BotConfig, error) {
	var env configEnvelope
	if err := s.getJSON(ctx, configPath, &env); err != nil {
		return BotConfig{}, err
	}
	if !env.Success || len(env.Config) == 0 || string(env.Config) == "null" {
		return BotConfig{}, fmt.Errorf("knowledge: %s reported failure: %s", configPath, env.Error)
	}
	cfg := DefaultBotConfig()
	if err := json.Unmarshal(env.Config, &cfg); err != nil {
		return BotConfig{}, fmt.Errorf("knowledge: decode %s config: %w", configPath, err)
	}
	return cfg.WithDefaults(), nil
}

func (s *RemoteSource) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("knowledge: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("knowledge: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRemoteBody))
		return fmt.Errorf("knowledge: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(dest); err != nil {
		return fmt.Errorf("knowledge: decode %s: %w", path, err)
	}
	return nil
}
