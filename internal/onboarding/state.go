package onboarding

import (
	"fmt"
	"strings"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
)

// State is everything the flow knows about one session.
type State struct {
	Step    Step           `json:"step"`
	Answers map[string]any `json:"answers"`
}

// NewState returns a session at discovery with no answers.
func NewState() State {
	return State{Step: StepDiscovery, Answers: map[string]any{}}
}

// Clone copies the answers map. Values are shared.
func (s State) Clone() State {
	answers := make(map[string]any, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}
	return State{Step: s.Step, Answers: answers}
}

// Event is a caller request to move the flow.
type Event string

const (
	EventAdvance     Event = "advance"
	EventConfirm     Event = "confirm"
	EventEditRestart Event = "edit-restart"
)

// IncompleteError reports why a step cannot be left yet.
type IncompleteError struct {
	Step    Step
	Missing []string
	Invalid []FieldError
}

func (e *IncompleteError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, fe := range e.Invalid {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("step %s incomplete: %s", e.Step, strings.Join(parts, "; "))
}

func (e *IncompleteError) Unwrap() error { return perrors.ErrStepIncomplete }

// Check returns the required fields of step absent from answers, and the
// present answers of step whose format is wrong. Optional fields that are
// present are format-checked too.
func Check(step Step, answers map[string]any) (missing []string, invalid []FieldError) {
	missing = []string{}
	for _, f := range requiredFields[step] {
		if !present(answers, f) {
			missing = append(missing, f)
			continue
		}
		if fe := checkField(f, answers[f]); fe != nil {
			invalid = append(invalid, *fe)
		}
	}
	if step == StepBranding && present(answers, FieldAccentColor) {
		if fe := checkField(FieldAccentColor, answers[FieldAccentColor]); fe != nil {
			invalid = append(invalid, *fe)
		}
	}
	return missing, invalid
}

func checkStep(step Step, answers map[string]any) error {
	missing, invalid := Check(step, answers)
	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	return &IncompleteError{Step: step, Missing: missing, Invalid: invalid}
}

// checkAnswered checks every step before confirmation.
func checkAnswered(answers map[string]any) error {
	for _, st := range Steps {
		if st == StepConfirmation {
			break
		}
		if err := checkStep(st, answers); err != nil {
			return err
		}
	}
	return nil
}

// Transition applies ev to s and returns the resulting state. It never
// mutates s. Answers are carried over unchanged by every event.
func Transition(s State, ev Event) (State, error) {
	next := s.Clone()
	switch ev {
	case EventAdvance:
		switch s.Step {
		case StepConfirmation:
			return s, fmt.Errorf("%w: confirmation is left by confirm or edit-restart", perrors.ErrInvalidStep)
		case StepGenerate:
			return s, fmt.Errorf("%w: generate is terminal", perrors.ErrInvalidStep)
		}
		if s.Step.index() < 0 {
			return s, fmt.Errorf("%w: %q", perrors.ErrInvalidStep, s.Step)
		}
		if err := checkStep(s.Step, s.Answers); err != nil {
			return s, err
		}
		next.Step = s.Step.Next()
		return next, nil

	case EventConfirm:
		if s.Step != StepConfirmation {
			return s, fmt.Errorf("%w: confirm is only valid at confirmation, not %s", perrors.ErrInvalidStep, s.Step)
		}
		if err := checkAnswered(s.Answers); err != nil {
			return s, err
		}
		next.Step = StepGenerate
		return next, nil

	case EventEditRestart:
		next.Step = StepType
		return next, nil
	}
	return s, fmt.Errorf("%w: unknown event %q", perrors.ErrInvalidInput, ev)
}
