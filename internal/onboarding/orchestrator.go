package onboarding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/p-blackswan/site-agent/internal/action"
	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

// ValidationResult describes how close a step is to being complete.
type ValidationResult struct {
	Step            Step           `json:"step"`
	IsValid         bool           `json:"isValid"`
	MissingRequired []string       `json:"missingRequired"`
	Invalid         []FieldError   `json:"invalid,omitempty"`
	Suggestions     map[string]any `json:"suggestions"`
}

// TransitionRecorder observes transition attempts.
type TransitionRecorder interface {
	RecordTransition(step, result string)
}

// Orchestrator owns the State of one onboarding session. It is not safe for
// concurrent use.
type Orchestrator struct {
	state    State
	defaults DefaultsProvider
	recorder TransitionRecorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTransitionRecorder reports every transition attempt to r.
func WithTransitionRecorder(r TransitionRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// New starts a session at discovery.
func New(defaults DefaultsProvider, opts ...Option) *Orchestrator {
	o, _ := Restore(NewState(), defaults, opts...)
	return o
}

// Restore rebuilds an orchestrator from a saved state.
func Restore(state State, defaults DefaultsProvider, opts ...Option) (*Orchestrator, error) {
	if state.Step != StepGenerate && state.Step.index() < 0 {
		return nil, fmt.Errorf("%w: %q", perrors.ErrInvalidStep, state.Step)
	}
	if state.Answers == nil {
		state.Answers = map[string]any{}
	}
	if defaults == nil {
		defaults = BuiltinCatalog()
	}
	o := &Orchestrator{state: state.Clone(), defaults: defaults}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State { return o.state.Clone() }

// Step returns the current step.
func (o *Orchestrator) Step() Step { return o.state.Step }

// Answer merges answers into the session. It never changes the step.
func (o *Orchestrator) Answer(answers map[string]any) {
	for k, v := range answers {
		o.state.Answers[k] = v
	}
}

// Profile decodes the current answers.
func (o *Orchestrator) Profile() (Profile, error) {
	return DecodeProfile(o.state.Answers)
}

// Defaults returns the catalog entry for the current business type.
func (o *Orchestrator) Defaults() Defaults {
	bt, _ := o.state.Answers[FieldBusinessType].(string)
	return o.defaults.Lookup(bt)
}

// StartStep validates step against the current answers and proposes values
// for whatever the defaults can fill. It does not move the session.
func (o *Orchestrator) StartStep(step Step) ValidationResult {
	missing, invalid := Check(step, o.state.Answers)
	return ValidationResult{
		Step:            step,
		IsValid:         len(missing) == 0 && len(invalid) == 0,
		MissingRequired: missing,
		Invalid:         invalid,
		Suggestions:     o.suggest(step),
	}
}

func (o *Orchestrator) suggest(step Step) map[string]any {
	out := map[string]any{}
	d := o.Defaults()
	offer := func(field string, v any) {
		if !present(o.state.Answers, field) {
			out[field] = v
		}
	}
	switch step {
	case StepType:
		offer(FieldBusinessType, o.defaults.Types())
	case StepBranding:
		offer(FieldPrimaryColor, d.Colors.Primary)
		offer(FieldSecondaryColor, d.Colors.Secondary)
		offer(FieldAccentColor, d.Colors.Accent)
		offer(FieldHeadingFont, d.Fonts.Heading)
		offer(FieldBodyFont, d.Fonts.Body)
		out["sections"] = d.DefaultSections
	case StepTagline:
		name, _ := o.state.Answers[FieldBusinessName].(string)
		if t := d.Tagline(name); t != "" {
			offer(FieldTagline, t)
		}
	}
	return out
}

// RequiredQuestions returns the prompts for the current step.
func (o *Orchestrator) RequiredQuestions() []Question {
	return Questions(o.state.Step)
}

func (o *Orchestrator) fire(ev Event) error {
	from := o.state.Step
	next, err := Transition(o.state, ev)
	o.record(from, err)
	if err != nil {
		return err
	}
	o.state = next
	return nil
}

func (o *Orchestrator) record(step Step, err error) {
	if o.recorder == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, perrors.ErrStepIncomplete):
		result = "incomplete"
	case err != nil:
		result = "rejected"
	}
	o.recorder.RecordTransition(string(step), result)
}

// Advance moves to the next step when the current one is complete. On
// failure the error wraps ErrStepIncomplete and is an *IncompleteError.
func (o *Orchestrator) Advance() (Step, error) {
	if err := o.fire(EventAdvance); err != nil {
		return o.state.Step, err
	}
	return o.state.Step, nil
}

// Confirm moves from confirmation to generate once every step validates.
func (o *Orchestrator) Confirm() error {
	return o.fire(EventConfirm)
}

// EditRestart returns to the type step, keeping all answers.
func (o *Orchestrator) EditRestart() {
	_ = o.fire(EventEditRestart)
}

// GenerationActions builds the action batch that produces the initial site
// from the answers and the business-type defaults.
func (o *Orchestrator) GenerationActions() ([]action.Action, error) {
	p, err := o.Profile()
	if err != nil {
		return nil, err
	}
	d := o.defaults.Lookup(p.BusinessType)

	colors := map[string]string{
		"primaryColor":   orDefault(p.PrimaryColor, d.Colors.Primary),
		"secondaryColor": orDefault(p.SecondaryColor, d.Colors.Secondary),
		"accentColor":    orDefault(p.AccentColor, d.Colors.Accent),
	}
	fonts := map[string]string{
		"headingFont": orDefault(p.HeadingFont, d.Fonts.Heading),
		"bodyFont":    orDefault(p.BodyFont, d.Fonts.Body),
	}
	seo := map[string]string{
		"title":       p.BusinessName,
		"description": p.Description,
	}

	actions := []action.Action{
		action.New(action.UpdateColors, colors),
		action.New(action.UpdateFonts, fonts),
		action.New(action.UpdateSEO, seo),
	}
	for _, sd := range d.DefaultSections {
		args := map[string]any{"type": string(sd.Type), "title": sd.Title}
		switch sd.Type {
		case site.SectionHero:
			args["title"] = orDefault(p.BusinessName, sd.Title)
			if p.Tagline != "" {
				args["subtitle"] = p.Tagline
			}
		case site.SectionAbout:
			if p.Description != "" {
				args["content"] = p.Description
			}
		}
		actions = append(actions, action.New(action.AddSection, args))
	}
	for i := range actions {
		actions[i].ID = fmt.Sprintf("gen-%d", i+1)
	}
	return actions, nil
}

// InvalidSiteError reports a generated model that does not validate.
type InvalidSiteError struct {
	Violations []site.Violation
}

func (e *InvalidSiteError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "generated site is invalid: " + strings.Join(parts, "; ")
}

func (e *InvalidSiteError) Unwrap() error { return perrors.ErrInvalidInput }

// Generate builds the initial ContentModel by driving exec. It is only
// valid at the generate step. Answers edited after confirmation are checked
// again, and the result must be a valid model.
func (o *Orchestrator) Generate(exec *action.Executor) (site.ContentModel, []action.Outcome, error) {
	if o.state.Step != StepGenerate {
		return site.ContentModel{}, nil, fmt.Errorf("%w: generate requires a confirmed session, step is %s", perrors.ErrInvalidStep, o.state.Step)
	}
	if err := checkAnswered(o.state.Answers); err != nil {
		return site.ContentModel{}, nil, err
	}
	actions, err := o.GenerationActions()
	if err != nil {
		return site.ContentModel{}, nil, err
	}
	model, outcomes := exec.Apply(site.ContentModel{}, actions)
	if !action.AnySucceeded(outcomes) {
		return site.ContentModel{}, outcomes, fmt.Errorf("generate: no action succeeded")
	}
	if v := site.Validate(model); len(v) > 0 {
		return site.ContentModel{}, outcomes, &InvalidSiteError{Violations: v}
	}
	return model, outcomes, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
