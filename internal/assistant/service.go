package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/site-agent/internal/action"
	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/requestid"
	"github.com/p-blackswan/site-agent/internal/retry"
	"github.com/p-blackswan/site-agent/internal/site"
)

const (
	fallbackNoAction = "I wasn't sure what to change. Could you tell me a bit more about what you'd like?"
	fallbackFailed   = "I couldn't make that change. Could you rephrase it or give me more detail?"
)

// SiteStore loads and saves whole site snapshots.
type SiteStore interface {
	LoadContentModel(ctx context.Context, siteID string) (site.ContentModel, error)
	SaveContentModel(ctx context.Context, siteID string, model site.ContentModel) error
}

// ActionLog records the outcomes of each applied batch.
type ActionLog interface {
	RecordOutcomes(ctx context.Context, siteID, requestID string, outcomes []action.Outcome) error
}

// RoundTripRecorder observes model calls.
type RoundTripRecorder interface {
	RecordRoundTrip(status string, seconds float64)
}

// ChatRequest is one user turn against a site.
type ChatRequest struct {
	SiteID  string        `json:"siteId"`
	History []llm.Message `json:"history"`
	Message string        `json:"message"`
}

// ChatResult is what the caller shows the user.
type ChatResult struct {
	Reply    string            `json:"reply"`
	Outcomes []action.Outcome  `json:"outcomes"`
	Content  site.ContentModel `json:"content"`
	Saved    bool              `json:"saved"`
	Model    string            `json:"model,omitempty"`
}

// Service runs round trips. It holds no per-site state.
type Service struct {
	provider llm.Provider
	sites    SiteStore
	exec     *action.Executor
	log      ActionLog
	recorder RoundTripRecorder
	logger   zerolog.Logger

	retry        retry.Config
	timeout      time.Duration
	temperature  *float64
	historyLimit int
	defaults     site.StyleDefaults
}

// Option configures a Service.
type Option func(*Service)

func WithActionLog(l ActionLog) Option { return func(s *Service) { s.log = l } }

func WithRoundTripRecorder(r RoundTripRecorder) Option { return func(s *Service) { s.recorder = r } }

func WithRetry(cfg retry.Config) Option { return func(s *Service) { s.retry = cfg } }

// WithTimeout bounds each round trip, retries included.
func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

func WithTemperature(t *float64) Option { return func(s *Service) { s.temperature = t } }

// WithHistoryLimit keeps only the last n history messages. Zero keeps all.
func WithHistoryLimit(n int) Option { return func(s *Service) { s.historyLimit = n } }

func WithStyleDefaults(d site.StyleDefaults) Option { return func(s *Service) { s.defaults = d } }

// NewService wires a Service. provider is the only model client it uses.
func NewService(provider llm.Provider, sites SiteStore, exec *action.Executor, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		sites:    sites,
		exec:     exec,
		logger:   logger.With().Str("component", "assistant").Logger(),
		retry:    retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat loads the site, asks the model, applies the requested actions and
// saves the result when something changed. Transport and persistence
// failures are returned; per-action failures are reported in Outcomes.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if strings.TrimSpace(req.SiteID) == "" {
		return nil, fmt.Errorf("%w: site id is required", perrors.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", perrors.ErrInvalidInput)
	}
	for i, m := range req.History {
		if !llm.ValidRole(m.Role) {
			return nil, fmt.Errorf("%w: history[%d] has role %q", perrors.ErrInvalidInput, i, m.Role)
		}
	}

	reqID := requestid.FromContext(ctx)
	logger := s.logger.With().Str("site_id", req.SiteID).Str("request_id", reqID).Logger()

	snapshot, err := s.sites.LoadContentModel(ctx, req.SiteID)
	if err != nil {
		return nil, fmt.Errorf("load site: %w", err)
	}

	resp, err := s.complete(ctx, s.buildRequest(snapshot, req), logger)
	if err != nil {
		return nil, err
	}

	actions := make([]action.Action, 0, len(resp.ToolUses))
	for _, tu := range resp.ToolUses {
		actions = append(actions, action.FromToolUse(tu.ID, tu.Name, tu.Input))
	}
	next, outcomes := s.exec.Apply(snapshot, actions)

	result := &ChatResult{Outcomes: outcomes, Content: snapshot, Model: resp.Model}
	if action.AnyMutated(outcomes) {
		if err := s.sites.SaveContentModel(ctx, req.SiteID, next); err != nil {
			return nil, fmt.Errorf("save site: %w", err)
		}
		result.Content = next
		result.Saved = true
	}

	if s.log != nil && len(outcomes) > 0 {
		if err := s.log.RecordOutcomes(ctx, req.SiteID, reqID, outcomes); err != nil {
			logger.Warn().Err(err).Msg("Failed to record action outcomes")
		}
	}

	result.Reply = reply(resp.Text, outcomes)
	ok, failed := action.Counts(outcomes)
	logger.Info().
		Int("actions", len(outcomes)).
		Int("succeeded", ok).
		Int("failed", failed).
		Bool("saved", result.Saved).
		Msg("Chat round trip complete")
	return result, nil
}

func (s *Service) buildRequest(snapshot site.ContentModel, req ChatRequest) llm.CompletionRequest {
	history := req.History
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	// the conversation has to open with a user turn
	for len(history) > 0 && history[0].Role != llm.RoleUser {
		history = history[1:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.UserMessage(req.Message))

	return llm.CompletionRequest{
		SystemPrompt: BuildSystemInstructions(snapshot, s.defaults),
		Messages:     msgs,
		Tools:        s.exec.Registry().Schemas(),
		MaxTokens:    s.provider.MaxTokens(),
		Temperature:  s.temperature,
		Model:        s.provider.ModelID(),
	}
}

func (s *Service) complete(ctx context.Context, creq llm.CompletionRequest, logger zerolog.Logger) (*llm.CompletionResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cfg := s.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Model call failed, retrying")
	}

	start := time.Now()
	resp, err := retry.DoValue(ctx, cfg, func(ctx context.Context) (*llm.CompletionResponse, error) {
		return s.provider.Complete(ctx, creq)
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.recordRoundTrip("error", elapsed)
		logger.Error().Err(err).Msg("Model round trip failed")
		return nil, fmt.Errorf("%w: %w", perrors.ErrTransport, err)
	}
	s.recordRoundTrip("ok", elapsed)
	logger.Debug().
		Str("model", resp.Model).
		Str("stop_reason", resp.StopReason).
		Int("tool_uses", len(resp.ToolUses)).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("Model responded")
	return resp, nil
}

func (s *Service) recordRoundTrip(status string, seconds float64) {
	if s.recorder != nil {
		s.recorder.RecordRoundTrip(status, seconds)
	}
}

// reply picks the text shown to the user. Failed outcomes never appear in it.
func reply(text string, outcomes []action.Outcome) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	if summary := action.Summarize(outcomes); summary != "" {
		return summary
	}
	if len(outcomes) > 0 {
		return fallbackFailed
	}
	return fallbackNoAction
}
