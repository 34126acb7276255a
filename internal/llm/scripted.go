package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedProvider replays canned responses in order. It records every
// request it receives. Used by tests and offline runs.
type ScriptedProvider struct {
	mu        sync.Mutex
	responses []*CompletionResponse
	errs      []error
	requests  []CompletionRequest
	model     string
}

// NewScriptedProvider returns a provider that answers with responses in turn.
func NewScriptedProvider(responses ...*CompletionResponse) *ScriptedProvider {
	return &ScriptedProvider{responses: responses, model: "scripted"}
}

// Enqueue appends responses to the script.
func (p *ScriptedProvider) Enqueue(responses ...*CompletionResponse) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, responses...)
	return p
}

// FailNext queues errors returned before any remaining response.
func (p *ScriptedProvider) FailNext(errs ...error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, errs...)
	return p
}

func (p *ScriptedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return nil, err
	}
	if len(p.responses) == 0 {
		return nil, fmt.Errorf("scripted provider: no response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	if resp.Model == "" {
		cp := *resp
		cp.Model = p.model
		resp = &cp
	}
	return resp, nil
}

// Requests returns the requests seen so far.
func (p *ScriptedProvider) Requests() []CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *ScriptedProvider) ModelID() string { return p.model }
func (p *ScriptedProvider) MaxTokens() int  { return defaultMaxTokens }
