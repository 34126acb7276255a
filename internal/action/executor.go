package action

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

// Recorder receives one call per applied action. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordAction(action string, success bool)
}

// Executor applies batches of actions to a content model.
type Executor struct {
	registry *Registry
	recorder Recorder
	logger   zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) { e.recorder = r }
}

// NewExecutor creates an executor dispatching through registry.
func NewExecutor(registry *Registry, logger zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		logger:   logger.With().Str("component", "action.executor").Logger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the handler registry (for tool schemas).
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Apply runs actions left to right against a private copy of model. Each
// action sees the result of every earlier successful action. A failing
// action is recorded and skipped; the batch always completes. The returned
// outcomes match actions one to one, in order. model itself is never
// modified.
func (e *Executor) Apply(model site.ContentModel, actions []Action) (site.ContentModel, []Outcome) {
	current := model.Clone()
	outcomes := make([]Outcome, 0, len(actions))

	for i, a := range actions {
		next, out := e.applyOne(current, a)
		if out.Success {
			current = next
		}
		outcomes = append(outcomes, out)

		ev := e.logger.Debug()
		if !out.Success {
			ev = e.logger.Info().Str("code", string(out.Code)).Str("error", out.Error)
		}
		ev.Int("index", i).Str("action", string(a.Name)).Bool("success", out.Success).Msg("action applied")

		if e.recorder != nil {
			e.recorder.RecordAction(string(a.Name), out.Success)
		}
	}
	return current, outcomes
}

func (e *Executor) applyOne(current site.ContentModel, a Action) (next site.ContentModel, out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Str("action", string(a.Name)).Msg("action handler panicked")
			out = failed(a, perrors.MalformedAction("handler panic: %v", r))
		}
	}()

	candidate := current.Clone()
	desc, err := e.registry.Apply(&candidate, a)
	if err != nil {
		return current, failed(a, err)
	}

	if introduced := site.Introduced(site.Validate(current), site.Validate(candidate)); len(introduced) > 0 {
		msgs := make([]string, len(introduced))
		for i, v := range introduced {
			msgs[i] = v.String()
		}
		return current, failed(a, perrors.ValidationFailed("%s", strings.Join(msgs, "; ")))
	}
	return candidate, succeeded(a, desc)
}

// AnySucceeded reports whether at least one outcome succeeded.
func AnySucceeded(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Success {
			return true
		}
	}
	return false
}

// AnyMutated reports whether at least one successful outcome came from an
// action other than get_site_info.
func AnyMutated(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Success && o.Action != GetSiteInfo {
			return true
		}
	}
	return false
}

// Summarize joins the descriptions of successful outcomes, one per line.
// Failed outcomes are left out.
func Summarize(outcomes []Outcome) string {
	var lines []string
	for _, o := range outcomes {
		if o.Success && o.Description != "" {
			lines = append(lines, o.Description)
		}
	}
	return strings.Join(lines, "\n")
}

// Counts returns the number of succeeded and failed outcomes.
func Counts(outcomes []Outcome) (ok, failedCount int) {
	for _, o := range outcomes {
		if o.Success {
			ok++
		} else {
			failedCount++
		}
	}
	return ok, failedCount
}

// FromToolUse converts a model tool call into an Action. Names outside the
// taxonomy are kept as-is and fail with MalformedAction when applied.
func FromToolUse(id, name string, input []byte) Action {
	return Action{ID: id, Name: Name(name), Arguments: input}
}

// String renders an action for logs.
func (a Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, string(a.Arguments))
}
