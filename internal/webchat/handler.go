package webchat

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wolfman30/agency-chat/internal/chatbot"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

//go:embed widget.js
var defaultWidgetJS []byte

const (
	maxRequestBytes = 64 << 10
	writeTimeout    = 10 * time.Second
	pongTimeout     = 60 * time.Second
)

// ChatService runs chat turns and reads stored session state.
type ChatService interface {
	Reply(ctx context.Context, req chatbot.ChatRequest) (*chatbot.ChatResponse, error)
	History(ctx context.Context, sessionID string) ([]chatbot.ChatMessage, error)
	LeadInfo(ctx context.Context, sessionID string) (chatbot.LeadInfo, error)
}

// Handler serves the chat widget's HTTP and WebSocket endpoints.
type Handler struct {
	chat     ChatService
	logger   *logging.Logger
	widgetJS []byte
	upgrader websocket.Upgrader
}

// InboundMessage is what the widget sends over the socket.
type InboundMessage struct {
	Type     string            `json:"type"` // "message", "ping"
	Text     string            `json:"text"`
	LeadInfo *chatbot.LeadInfo `json:"lead_info,omitempty"`
}

// OutboundMessage is what the widget receives over the socket.
type OutboundMessage struct {
	Type      string                `json:"type"` // "session", "history", "typing", "reply", "pong", "error"
	SessionID string                `json:"session_id,omitempty"`
	Text      string                `json:"text,omitempty"`
	Reply     *chatbot.ChatResponse `json:"reply,omitempty"`
	Messages  []chatbot.ChatMessage `json:"messages,omitempty"`
	LeadInfo  *chatbot.LeadInfo     `json:"lead_info,omitempty"`
}

// NewHandler creates a webchat handler. A nil widgetJS serves the bundled widget.
// allowedOrigins restricts WebSocket upgrades; empty allows any origin.
func NewHandler(chat ChatService, widgetJS []byte, allowedOrigins []string, logger *logging.Logger) *Handler {
	if chat == nil {
		panic("webchat: chat service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if len(widgetJS) == 0 {
		widgetJS = defaultWidgetJS
	}
	return &Handler{
		chat:     chat,
		logger:   logger,
		widgetJS: widgetJS,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleChat runs one chat turn: POST /chatbot/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatbot.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = generateSessionID()
	}

	resp, err := h.chat.Reply(r.Context(), req)
	switch {
	case errors.Is(err, chatbot.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "message is required"})
		return
	case r.Context().Err() != nil:
		// client went away; nothing to write
		return
	case err != nil:
		h.logger.Error("webchat: chat turn failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "failed to process message"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHistory returns the stored transcript: GET /chatbot/history?session=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "session parameter required"})
		return
	}

	msgs, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "failed to load history"})
		return
	}
	if msgs == nil {
		msgs = []chatbot.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sessionID,
		"messages":   msgs,
	})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}

// HandleWebSocket upgrades to a WebSocket; each inbound message runs one turn.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("webchat: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	h.serveWS(context.WithoutCancel(r.Context()), conn, sessionID)
}

// wsSession carries per-connection chat state between turns.
type wsSession struct {
	id      string
	lead    chatbot.LeadInfo
	history []chatbot.ChatMessage
}

func (h *Handler) serveWS(parent context.Context, conn *websocket.Conn, sessionID string) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	state := &wsSession{id: sessionID}
	hello := OutboundMessage{Type: "session", SessionID: sessionID}
	if lead, err := h.chat.LeadInfo(ctx, sessionID); err != nil {
		h.logger.Warn("webchat: lead lookup failed", "session_id", sessionID, "error", err)
	} else if !lead.IsEmpty() {
		state.lead = lead
		hello.LeadInfo = &lead
	}
	if err := h.send(conn, hello); err != nil {
		return
	}
	// history is always sent, empty for a fresh session, so the widget knows
	// when to show its greeting.
	msgs, err := h.chat.History(ctx, sessionID)
	if err != nil {
		h.logger.Warn("webchat: history lookup failed", "session_id", sessionID, "error", err)
	}
	state.history = msgs
	if err := h.send(conn, OutboundMessage{Type: "history", SessionID: sessionID, Messages: msgs}); err != nil {
		return
	}

	// The read loop owns reads; this goroutine owns writes. A closed socket
	// cancels ctx, which abandons the in-flight turn.
	inbound := make(chan InboundMessage, 8)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	go func() {
		defer cancel()
		defer close(inbound)
		for {
			var msg InboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)
	for msg := range inbound {
		switch msg.Type {
		case "ping":
			if err := h.send(conn, OutboundMessage{Type: "pong"}); err != nil {
				return
			}
		case "message":
			if strings.TrimSpace(msg.Text) == "" {
				continue
			}
			if !h.runTurn(ctx, conn, state, msg) {
				return
			}
		}
	}
}

// runTurn executes one chat turn and reports whether the connection is still usable.
func (h *Handler) runTurn(ctx context.Context, conn *websocket.Conn, state *wsSession, msg InboundMessage) bool {
	if msg.LeadInfo != nil {
		state.lead = chatbot.MergeLead(state.lead, *msg.LeadInfo)
	}
	if err := h.send(conn, OutboundMessage{Type: "typing"}); err != nil {
		return false
	}

	started := time.Now().UTC()
	resp, err := h.chat.Reply(ctx, chatbot.ChatRequest{
		SessionID:           state.id,
		Message:             msg.Text,
		LeadInfo:            state.lead,
		ConversationHistory: state.history,
	})
	if ctx.Err() != nil {
		h.logger.Info("webchat: turn abandoned", "session_id", state.id)
		return false
	}
	if err != nil {
		h.logger.Error("webchat: chat turn failed", "session_id", state.id, "error", err)
		return h.send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."}) == nil
	}

	state.lead = chatbot.MergeLead(state.lead, resp.LeadInfo)
	state.history = append(state.history,
		chatbot.ChatMessage{Role: chatbot.RoleUser, Content: strings.TrimSpace(msg.Text), Timestamp: started},
		resp.BotMessage(time.Now().UTC()),
	)
	return h.send(conn, OutboundMessage{Type: "reply", SessionID: state.id, Reply: resp}) == nil
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("webchat: write failed", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
