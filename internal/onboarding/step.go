// Package onboarding implements the discovery flow that collects business
// information before a site is generated. The flow is an explicit state
// machine: callers supply answers, ask for validation, and request
// transitions. It never advances on its own and holds no resources beyond
// its answers map.
package onboarding

import (
	"fmt"
	"strings"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
)

// Step is one stage of the onboarding flow.
type Step string

const (
	StepDiscovery    Step = "discovery"
	StepType         Step = "type"
	StepIdentity     Step = "identity"
	StepDescription  Step = "description"
	StepBranding     Step = "branding"
	StepTagline      Step = "tagline"
	StepConfirmation Step = "confirmation"
	StepGenerate     Step = "generate"
)

// Steps lists the collecting steps in order. StepGenerate is terminal and
// not part of the progression.
var Steps = []Step{
	StepDiscovery, StepType, StepIdentity, StepDescription,
	StepBranding, StepTagline, StepConfirmation,
}

var stepAliases = map[string]Step{
	"type-selection":        StepType,
	"identity-confirmation": StepIdentity,
}

// ParseStep accepts a step name or one of its long aliases.
func ParseStep(s string) (Step, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st, ok := stepAliases[s]; ok {
		return st, nil
	}
	st := Step(s)
	if st == StepGenerate || st.index() >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", perrors.ErrInvalidStep, s)
}

func (s Step) index() int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s, or "" if s is confirmation, generate or
// unknown.
func (s Step) Next() Step {
	i := s.index()
	if i < 0 || i+1 >= len(Steps) {
		return ""
	}
	return Steps[i+1]
}

// Before reports whether s comes strictly before other in the progression.
func (s Step) Before(other Step) bool {
	i, j := s.index(), other.index()
	return i >= 0 && j >= 0 && i < j
}
