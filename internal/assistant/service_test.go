package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/site-agent/internal/action"
	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/requestid"
	"github.com/p-blackswan/site-agent/internal/retry"
	"github.com/p-blackswan/site-agent/internal/site"
)

type memStore struct {
	mu      sync.Mutex
	sites   map[string]site.ContentModel
	saves   int
	saveErr error
	logged  map[string][]action.Outcome
}

func newMemStore(id string, m site.ContentModel) *memStore {
	return &memStore{sites: map[string]site.ContentModel{id: m}, logged: map[string][]action.Outcome{}}
}

func (s *memStore) LoadContentModel(_ context.Context, id string) (site.ContentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sites[id]
	if !ok {
		return site.ContentModel{}, perrors.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *memStore) SaveContentModel(_ context.Context, id string, m site.ContentModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.sites[id] = m.Clone()
	return nil
}

func (s *memStore) RecordOutcomes(_ context.Context, _ string, reqID string, outcomes []action.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logged[reqID] = append(s.logged[reqID], outcomes...)
	return nil
}

type roundTrips struct{ statuses []string }

func (r *roundTrips) RecordRoundTrip(status string, _ float64) { r.statuses = append(r.statuses, status) }

func snapshot() site.ContentModel {
	return site.ContentModel{
		Sections: []site.Section{{ID: "s1", Type: site.SectionHero, Title: "Welcome"}},
		Styles:   site.Styles{PrimaryColor: "#111111", SecondaryColor: "#ffffff"},
		Meta:     site.Meta{Title: site.String("Acme"), Description: site.String("")},
	}
}

func toolUse(id string, name action.Name, args string) llm.ToolUse {
	return llm.ToolUse{ID: id, Name: string(name), Input: json.RawMessage(args)}
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func newService(p llm.Provider, st *memStore, opts ...Option) *Service {
	exec := action.NewExecutor(action.DefaultRegistry(site.StyleDefaults{}), zerolog.Nop())
	opts = append([]Option{WithActionLog(st), WithRetry(fastRetry())}, opts...)
	return NewService(p, st, exec, zerolog.Nop(), opts...)
}

func TestChat_AppliesAndSaves(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{
		ToolUses: []llm.ToolUse{
			toolUse("t1", action.AddSection, `{"type":"testimonials","title":"What clients say"}`),
			toolUse("t2", action.UpdateColors, `{"secondaryColor":"#fafafa"}`),
		},
		StopReason: llm.StopReasonToolUse,
	})
	rec := &roundTrips{}
	svc := newService(p, st, WithRoundTripRecorder(rec))

	ctx := requestid.WithRequestID(context.Background(), "req-1")
	res, err := svc.Chat(ctx, ChatRequest{SiteID: "site-1", Message: "add testimonials and lighten the background"})
	require.NoError(t, err)

	assert.True(t, res.Saved)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, "t1", res.Outcomes[0].ActionID)
	assert.Len(t, st.sites["site-1"].Sections, 2)
	assert.Equal(t, "#fafafa", st.sites["site-1"].Styles.SecondaryColor)
	assert.Equal(t, res.Content, st.sites["site-1"])
	assert.Contains(t, res.Reply, "Added testimonials section")
	assert.Len(t, st.logged["req-1"], 2)
	assert.Equal(t, []string{"ok"}, rec.statuses)
	assert.Equal(t, "scripted", res.Model)
}

func TestChat_RequestCarriesSnapshotAndTools(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{Text: "Hello!"})
	temp := 0.2
	svc := newService(p, st, WithTemperature(&temp), WithHistoryLimit(2))

	history := []llm.Message{
		llm.UserMessage("first"),
		llm.AssistantMessage("one"),
		llm.UserMessage("second"),
		llm.AssistantMessage("two"),
	}
	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", History: history, Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", res.Reply)
	assert.False(t, res.Saved)

	reqs := p.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Contains(t, req.SystemPrompt, "id=s1 type=hero")
	assert.Len(t, req.Tools, len(action.Names))
	assert.Equal(t, &temp, req.Temperature)
	assert.Equal(t, p.MaxTokens(), req.MaxTokens)

	// limit 2 leaves [user second, assistant two], then the new turn
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "second", req.Messages[0].Content)
	assert.Equal(t, llm.UserMessage("hi"), req.Messages[2])
}

func TestChat_HistoryNeverStartsWithAssistant(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{Text: "ok"})
	svc := newService(p, st, WithHistoryLimit(1))

	_, err := svc.Chat(context.Background(), ChatRequest{
		SiteID:  "site-1",
		History: []llm.Message{llm.UserMessage("a"), llm.AssistantMessage("b")},
		Message: "c",
	})
	require.NoError(t, err)
	msgs := p.Requests()[0].Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, "c", msgs[0].Content)
}

func TestChat_FailureIsolationPersistsGoodActions(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{
		ToolUses: []llm.ToolUse{
			toolUse("t1", action.EditSection, `{"sectionId":"missing","title":"x"}`),
			toolUse("t2", action.UpdateColors, `{"primaryColor":"#222222"}`),
		},
	})
	svc := newService(p, st)

	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "go"})
	require.NoError(t, err)

	ok, failed := action.Counts(res.Outcomes)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.True(t, res.Saved)
	assert.Equal(t, "#222222", st.sites["site-1"].Styles.PrimaryColor)
	assert.NotContains(t, res.Reply, "SectionNotFound")
}

func TestChat_UnknownToolIsMalformed(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{
		ToolUses: []llm.ToolUse{toolUse("t1", "delete_site", `{}`)},
	})
	svc := newService(p, st)

	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "nuke it"})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, perrors.CodeMalformedAction, res.Outcomes[0].Code)
	assert.False(t, res.Saved)
	assert.Equal(t, 0, st.saves)
	assert.Equal(t, fallbackFailed, res.Reply)
}

func TestChat_InfoOnlyDoesNotSave(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{
		ToolUses: []llm.ToolUse{toolUse("t1", action.GetSiteInfo, ``)},
	})
	svc := newService(p, st)

	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "what's on my site?"})
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, 0, st.saves)
	assert.Contains(t, res.Reply, "1 section")
}

func TestChat_NoActionsFallback(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	svc := newService(llm.NewScriptedProvider(&llm.CompletionResponse{}), st)

	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "hmm"})
	require.NoError(t, err)
	assert.Equal(t, fallbackNoAction, res.Reply)
	assert.Empty(t, res.Outcomes)
}

func TestChat_RetriesRetryableTransportErrors(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider(&llm.CompletionResponse{Text: "done"}).
		FailNext(perrors.NewAPIError("anthropic", 529, "overloaded"))
	svc := newService(p, st)

	res, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "done", res.Reply)
	assert.Len(t, p.Requests(), 2)
}

func TestChat_TransportFailureLeavesSiteUntouched(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	p := llm.NewScriptedProvider().FailNext(perrors.NewAPIError("anthropic", 400, "bad request"))
	rec := &roundTrips{}
	svc := newService(p, st, WithRoundTripRecorder(rec))

	_, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrTransport)
	var apiErr *perrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Len(t, p.Requests(), 1, "non-retryable errors are not retried")
	assert.Equal(t, 0, st.saves)
	assert.Equal(t, snapshot(), st.sites["site-1"])
	assert.Equal(t, []string{"error"}, rec.statuses)
}

func TestChat_SaveFailurePropagates(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	st.saveErr = errors.New("disk full")
	p := llm.NewScriptedProvider(&llm.CompletionResponse{
		ToolUses: []llm.ToolUse{toolUse("t1", action.UpdateSEO, `{"title":"New"}`)},
	})
	svc := newService(p, st)

	_, err := svc.Chat(context.Background(), ChatRequest{SiteID: "site-1", Message: "rename"})
	assert.ErrorContains(t, err, "disk full")
}

func TestChat_InputValidation(t *testing.T) {
	st := newMemStore("site-1", snapshot())
	svc := newService(llm.NewScriptedProvider(), st)
	ctx := context.Background()

	_, err := svc.Chat(ctx, ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)

	_, err = svc.Chat(ctx, ChatRequest{SiteID: "site-1", Message: "  "})
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)

	_, err = svc.Chat(ctx, ChatRequest{SiteID: "site-1", Message: "hi", History: []llm.Message{{Role: "system", Content: "x"}}})
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)

	_, err = svc.Chat(ctx, ChatRequest{SiteID: "other", Message: "hi"})
	assert.ErrorIs(t, err, perrors.ErrNotFound)
}
