package onboarding

import (
	"fmt"
	"strings"

	"github.com/p-blackswan/site-agent/internal/site"
)

// Answer keys.
const (
	FieldBusinessIdea   = "businessIdea"
	FieldBusinessType   = "businessType"
	FieldBusinessName   = "businessName"
	FieldDescription    = "description"
	FieldPrimaryColor   = "primaryColor"
	FieldSecondaryColor = "secondaryColor"
	FieldAccentColor    = "accentColor"
	FieldHeadingFont    = "headingFont"
	FieldBodyFont       = "bodyFont"
	FieldTagline        = "tagline"
)

var requiredFields = map[Step][]string{
	StepDiscovery:    {FieldBusinessIdea},
	StepType:         {FieldBusinessType},
	StepIdentity:     {FieldBusinessName},
	StepDescription:  {FieldDescription},
	StepBranding:     {FieldBusinessType, FieldPrimaryColor, FieldSecondaryColor, FieldHeadingFont, FieldBodyFont},
	StepTagline:      {FieldTagline},
	StepConfirmation: {},
}

var prompts = map[string]string{
	FieldBusinessIdea:   "Tell me a little about what you want this website to do.",
	FieldBusinessType:   "What kind of business is this?",
	FieldBusinessName:   "What is the name of your business?",
	FieldDescription:    "Describe your business in a sentence or two.",
	FieldPrimaryColor:   "Pick a primary brand color.",
	FieldSecondaryColor: "Pick a secondary color.",
	FieldHeadingFont:    "Which font should headings use?",
	FieldBodyFont:       "Which font should body text use?",
	FieldTagline:        "What tagline should appear on your homepage?",
}

// RequiredFields returns the answer keys that must be present before step
// is valid. The result is a fresh slice.
func RequiredFields(step Step) []string {
	return append([]string(nil), requiredFields[step]...)
}

// Question is one prompt the caller can put to the user.
type Question struct {
	Field  string `json:"field"`
	Prompt string `json:"prompt"`
}

// Questions returns the prompts for step's required fields, in order.
func Questions(step Step) []Question {
	fields := requiredFields[step]
	out := make([]Question, 0, len(fields))
	for _, f := range fields {
		out = append(out, Question{Field: f, Prompt: prompts[f]})
	}
	return out
}

// present reports whether answers holds a non-blank value for key.
func present(answers map[string]any, key string) bool {
	v, ok := answers[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// FieldError marks an answer that is present but unusable.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var colorFields = map[string]bool{
	FieldPrimaryColor:   true,
	FieldSecondaryColor: true,
	FieldAccentColor:    true,
}

// checkField returns a FieldError for a present answer with a bad format.
func checkField(key string, v any) *FieldError {
	if !colorFields[key] {
		return nil
	}
	s, ok := v.(string)
	if !ok || !site.IsHexColor(strings.TrimSpace(s)) {
		return &FieldError{Field: key, Message: fmt.Sprintf("%v is not a hex color", v)}
	}
	return nil
}
