package chatbot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/agency-chat/internal/knowledge"
	"github.com/wolfman30/agency-chat/internal/observability/metrics"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

var chatTracer = otel.Tracer("agency.internal.chatbot")

const (
	defaultContactEmail = "hello@agency.example"
	defaultApology      = "I'm sorry, I'm having trouble responding right now."

	sourceKnowledge = "knowledge"
	sourceConfig    = "config"
)

// TranscriptStore keeps the per-session message history.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, messages ...ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
}

// LeadSink receives lead details captured during a chat.
type LeadSink interface {
	CaptureChatLead(ctx context.Context, sessionID string, lead LeadInfo) error
}

// LeadLookup returns the lead details already captured for a session.
type LeadLookup interface {
	ChatLead(ctx context.Context, sessionID string) (LeadInfo, error)
}

// ServiceConfig holds the per-deployment knobs of the chat pipeline.
type ServiceConfig struct {
	Provider        string
	Model           string
	MaxTokens       int32
	Temperature     *float32 // nil uses DefaultTemperature
	HistoryWindow   int
	ContactEmail    string
	ContactWhatsApp string
	Static          *StaticKnowledge
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

func WithTranscripts(store TranscriptStore) ServiceOption {
	return func(s *Service) { s.transcripts = store }
}

func WithLeadSink(sink LeadSink) ServiceOption {
	return func(s *Service) { s.leads = sink }
}

func WithLeadLookup(lookup LeadLookup) ServiceOption {
	return func(s *Service) { s.lookup = lookup }
}

func WithMetrics(m *metrics.ChatMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs the chat pipeline for one inbound message at a time.
type Service struct {
	knowledge   knowledge.Source
	config      knowledge.ConfigSource
	llm         LLMClient
	transcripts TranscriptStore
	leads       LeadSink
	lookup      LeadLookup
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
	builder     *ContextBuilder
	assembler   *PromptAssembler
	cfg         ServiceConfig
	now         func() time.Time
}

func NewService(src knowledge.Source, cfgSrc knowledge.ConfigSource, llm LLMClient, cfg ServiceConfig, opts ...ServiceOption) *Service {
	if src == nil {
		panic("chatbot: knowledge source cannot be nil")
	}
	if cfgSrc == nil {
		panic("chatbot: config source cannot be nil")
	}
	if llm == nil {
		panic("chatbot: completion client cannot be nil")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	if strings.TrimSpace(cfg.ContactEmail) == "" {
		cfg.ContactEmail = defaultContactEmail
	}
	static := DefaultStaticKnowledge()
	if cfg.Static != nil {
		static = *cfg.Static
	}

	s := &Service{
		knowledge: src,
		config:    cfgSrc,
		llm:       llm,
		logger:    logging.Default(),
		builder:   NewContextBuilder(static),
		assembler: NewPromptAssembler(cfg.HistoryWindow),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers one chat message. Completion failures are answered with the
// fallback envelope rather than an error. A cancelled ctx returns ctx.Err()
// and nothing is committed.
func (s *Service) Reply(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "chatbot.reply")
	defer span.End()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("agency.session_id", sessionID))

	history := s.loadHistory(ctx, sessionID, req.ConversationHistory)
	history = dropEcho(history, message)

	kbRes, cfgRes := s.fetchInputs(ctx)
	kb := kbRes.OrDefault(nil)
	botCfg := cfgRes.OrDefault(knowledge.DefaultBotConfig())

	lead := UpdateLead(req.LeadInfo, LastCollect(history), message)
	lead = CaptureInterest(lead, s.builder.DetectInterest(message))

	matchText := Match(message, kb)
	s.metrics.ObserveKnowledgeMatch(matchText != "")
	prompt := s.assembler.Assemble(botCfg, s.builder.Build(message, matchText), lead, history, message)

	resp := &ChatResponse{
		SessionID:        sessionID,
		BookingLink:      botCfg.BookingLink,
		KnowledgeMatched: matchText != "",
		LeadInfo:         lead,
	}

	out, err := s.complete(ctx, prompt)
	if ctx.Err() != nil {
		s.metrics.ObserveTurn("cancelled")
		span.SetStatus(codes.Error, "cancelled")
		return nil, ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("chat completion failed; using fallback reply",
			"session_id", sessionID,
			"error", err,
		)
		s.applyFallback(resp, botCfg)
		s.metrics.ObserveTurn("fallback")
	} else {
		directives := Postprocess(message, lead.Name != "")
		resp.Success = true
		resp.Message = out.Text
		resp.Suggestions = directives.Suggestions
		resp.ShowBooking = directives.ShowBooking
		resp.CollectInfo = NextCollectInfo(botCfg, lead, TurnCount(history))
		s.metrics.ObserveTurn("ok")
	}
	span.SetAttributes(
		attribute.Bool("agency.chat.knowledge_matched", resp.KnowledgeMatched),
		attribute.Bool("agency.chat.success", resp.Success),
	)

	s.commit(ctx, sessionID, message, resp, req.LeadInfo)
	return resp, nil
}

// History returns the stored transcript for a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	if s.transcripts == nil {
		return nil, nil
	}
	return s.transcripts.History(ctx, sessionID, 0)
}

// LeadInfo returns the lead captured so far for a session, empty when unknown.
func (s *Service) LeadInfo(ctx context.Context, sessionID string) (LeadInfo, error) {
	if s.lookup == nil || strings.TrimSpace(sessionID) == "" {
		return LeadInfo{}, nil
	}
	return s.lookup.ChatLead(ctx, sessionID)
}

func (s *Service) fetchInputs(ctx context.Context) (FetchResult[[]knowledge.Entry], FetchResult[knowledge.BotConfig]) {
	var (
		kbRes  FetchResult[[]knowledge.Entry]
		cfgRes FetchResult[knowledge.BotConfig]
		g      errgroup.Group
	)
	// Each fetch fails open on its own, so neither goroutine returns an error.
	g.Go(func() error {
		kb, err := s.knowledge.KnowledgeBase(ctx)
		kbRes = fetched(sourceKnowledge, kb, err)
		return nil
	})
	g.Go(func() error {
		cfg, err := s.config.BotConfig(ctx)
		cfgRes = fetched(sourceConfig, cfg, err)
		return nil
	})
	_ = g.Wait()

	if !kbRes.OK() {
		s.metrics.ObserveFetchFailure(sourceKnowledge)
		s.logger.Warn("knowledge fetch failed; using empty knowledge base", "error", kbRes.Err)
	}
	if !cfgRes.OK() {
		s.metrics.ObserveFetchFailure(sourceConfig)
		s.logger.Warn("config fetch failed; using default config", "error", cfgRes.Err)
	}
	return kbRes, cfgRes
}

func (s *Service) complete(ctx context.Context, prompt []LLMMessage) (LLMResponse, error) {
	ctx, span := chatTracer.Start(ctx, "chatbot.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("agency.llm.provider", s.cfg.Provider),
		attribute.Int("agency.llm.messages", len(prompt)),
	)

	start := time.Now()
	out, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.cfg.Model,
		Messages:    prompt,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	status := "ok"
	if err != nil {
		status = "error"
		var ce *CompletionError
		if errors.As(err, &ce) && ce.Timeout {
			status = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	} else if span.IsRecording() {
		span.SetAttributes(
			attribute.Int("agency.llm.input_tokens", int(out.Usage.InputTokens)),
			attribute.Int("agency.llm.output_tokens", int(out.Usage.OutputTokens)),
		)
	}
	s.metrics.ObserveCompletion(s.cfg.Provider, status, time.Since(start).Seconds())
	return out, err
}

func (s *Service) applyFallback(resp *ChatResponse, cfg knowledge.BotConfig) {
	text := strings.TrimSpace(cfg.FallbackMessage)
	if text == "" {
		text = defaultApology
	}
	contact := "You can reach our team directly at " + s.cfg.ContactEmail
	if wa := strings.TrimSpace(s.cfg.ContactWhatsApp); wa != "" {
		contact += " or on WhatsApp at " + wa
	}
	directives := FallbackDirectives()
	resp.Success = false
	resp.Message = text + " " + contact + "."
	resp.Suggestions = directives.Suggestions
	resp.ShowBooking = directives.ShowBooking
	resp.CollectInfo = CollectNone
}

func (s *Service) loadHistory(ctx context.Context, sessionID string, supplied []ChatMessage) []ChatMessage {
	if len(supplied) > 0 || s.transcripts == nil {
		return supplied
	}
	stored, err := s.transcripts.History(ctx, sessionID, 0)
	if err != nil {
		s.logger.Warn("failed to load chat history", "session_id", sessionID, "error", err)
		return nil
	}
	return stored
}

func (s *Service) commit(ctx context.Context, sessionID, message string, resp *ChatResponse, prior LeadInfo) {
	if s.transcripts != nil {
		now := s.now().UTC()
		userMsg := ChatMessage{Role: RoleUser, Content: message, Timestamp: now}
		if err := s.transcripts.Append(ctx, sessionID, userMsg, resp.BotMessage(now)); err != nil {
			s.logger.Error("failed to store chat turn", "session_id", sessionID, "error", err)
		}
	}
	if s.leads != nil && resp.LeadInfo != prior && !resp.LeadInfo.IsEmpty() {
		if err := s.leads.CaptureChatLead(ctx, sessionID, resp.LeadInfo); err != nil {
			s.logger.Error("failed to capture chat lead", "session_id", sessionID, "error", err)
		} else {
			s.metrics.ObserveLeadCaptured("chat")
		}
	}
}

// dropEcho removes a trailing user turn identical to the current message, for
// clients that append the message to history before sending it.
func dropEcho(history []ChatMessage, message string) []ChatMessage {
	if n := len(history); n > 0 {
		last := history[n-1]
		if !last.Role.IsBot() && strings.TrimSpace(last.Content) == message {
			return history[:n-1]
		}
	}
	return history
}
