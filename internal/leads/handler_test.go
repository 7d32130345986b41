package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

type recordingNotifier struct {
	leads []*Lead
	err   error
}

func (n *recordingNotifier) NotifyNewLead(_ context.Context, lead *Lead) error {
	n.leads = append(n.leads, lead)
	return n.err
}

func TestCreateWebLead_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{}
	handler := NewHandler(repo, notifier, logging.Default())

	reqBody := CreateLeadRequest{
		Name:     "John Doe",
		Email:    "john@example.com",
		Phone:    "+1234567890",
		Location: "Austin, TX",
		Message:  "Interested in paid ads",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/leads/web", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateWebLead(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var lead Lead
	if err := json.NewDecoder(w.Body).Decode(&lead); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if lead.Name != reqBody.Name {
		t.Errorf("expected name %s, got %s", reqBody.Name, lead.Name)
	}
	if lead.Source != SourceWeb {
		t.Errorf("expected default source %q, got %q", SourceWeb, lead.Source)
	}
	if len(notifier.leads) != 1 || notifier.leads[0].ID != lead.ID {
		t.Errorf("expected notifier to receive the new lead, got %v", notifier.leads)
	}
}

func TestCreateWebLead_NotifierErrorIgnored(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), &recordingNotifier{err: errors.New("smtp down")}, nil)

	body := `{"name":"Jane","email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateWebLead(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestCreateWebLead_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"missing name":    `{"email":"a@b.com"}`,
		"missing contact": `{"name":"John Doe"}`,
		"bad email":       `{"name":"John Doe","email":"nope"}`,
		"invalid json":    `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			handler := NewHandler(NewInMemoryRepository(), nil, logging.Default())
			req := httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateWebLead(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

type failingRepository struct {
	Repository
}

func (f failingRepository) Create(context.Context, *CreateLeadRequest) (*Lead, error) {
	return nil, errors.New("boom")
}

func (f failingRepository) List(context.Context, ListLeadsFilter) ([]*Lead, error) {
	return nil, errors.New("boom")
}

func TestCreateWebLead_RepositoryError(t *testing.T) {
	handler := NewHandler(failingRepository{}, nil, logging.Default())

	payload := CreateLeadRequest{
		Name:  "Failing Repo",
		Email: "fail@example.com",
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/leads/web", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateWebLead(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestListLeads(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		if _, err := repo.Create(ctx, &CreateLeadRequest{Name: name, Email: name + "@example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := repo.UpsertBySession(ctx, ChatLead{SessionID: "s1", Name: "Chatty"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := NewHandler(repo, nil, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/leads?limit=2&source=web", nil)
	w := httptest.NewRecorder()

	handler.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || resp.Limit != 2 {
		t.Errorf("expected 2 leads with limit 2, got count=%d limit=%d", resp.Count, resp.Limit)
	}
	for _, l := range resp.Leads {
		if l.Source != SourceWeb {
			t.Errorf("expected only web leads, got %q", l.Source)
		}
	}
}

func TestListLeads_RepositoryError(t *testing.T) {
	handler := NewHandler(failingRepository{}, nil, logging.Default())
	w := httptest.NewRecorder()
	handler.ListLeads(w, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestGetLead(t *testing.T) {
	repo := NewInMemoryRepository()
	created, err := repo.Create(context.Background(), &CreateLeadRequest{Name: "Jane", Phone: "+15550100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/admin/leads/{id}", NewHandler(repo, nil, logging.Default()).GetLead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
