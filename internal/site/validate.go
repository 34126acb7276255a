package site

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Violation is one broken invariant of a ContentModel.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// IsHexColor reports whether s is a #rgb, #rrggbb or #rrggbbaa color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// Validate returns every invariant violation in m. An empty result means the
// model is valid. Validate has no side effects.
func Validate(m ContentModel) []Violation {
	var out []Violation

	seen := make(map[string]bool, len(m.Sections))
	for i, s := range m.Sections {
		field := sectionField(i, s.ID)
		if s.ID == "" {
			out = append(out, Violation{Field: field + ".id", Message: "id is empty"})
		} else if seen[s.ID] {
			out = append(out, Violation{Field: field + ".id", Message: "duplicate id"})
		} else {
			seen[s.ID] = true
		}
		if !IsValidSectionType(s.Type) {
			out = append(out, Violation{
				Field:   field + ".type",
				Message: fmt.Sprintf("unknown section type %q", s.Type),
			})
		}
	}

	if !IsHexColor(m.Styles.PrimaryColor) {
		out = append(out, Violation{Field: "styles.primaryColor", Message: fmt.Sprintf("%q is not a hex color", m.Styles.PrimaryColor)})
	}
	if !IsHexColor(m.Styles.SecondaryColor) {
		out = append(out, Violation{Field: "styles.secondaryColor", Message: fmt.Sprintf("%q is not a hex color", m.Styles.SecondaryColor)})
	}
	if m.Styles.AccentColor != nil && *m.Styles.AccentColor != "" && !IsHexColor(*m.Styles.AccentColor) {
		out = append(out, Violation{Field: "styles.accentColor", Message: fmt.Sprintf("%q is not a hex color", *m.Styles.AccentColor)})
	}

	if m.Meta.Title == nil {
		out = append(out, Violation{Field: "meta.title", Message: "title is not defined"})
	}
	if m.Meta.Description == nil {
		out = append(out, Violation{Field: "meta.description", Message: "description is not defined"})
	}

	return out
}

// sectionField names a section by id so violations stay comparable across
// reorders. Sections without an id fall back to their position.
func sectionField(i int, id string) string {
	if id == "" {
		return fmt.Sprintf("sections[#%d]", i)
	}
	return fmt.Sprintf("sections[%s]", id)
}

// Introduced returns the violations in after that are not in before.
// Violations on sections without an id are matched without their position,
// so inserting or removing other sections does not make them look new.
func Introduced(before, after []Violation) []Violation {
	known := make(map[Violation]int, len(before))
	for _, v := range before {
		known[positionless(v)]++
	}
	var out []Violation
	for _, v := range after {
		k := positionless(v)
		if known[k] > 0 {
			known[k]--
			continue
		}
		out = append(out, v)
	}
	return out
}

func positionless(v Violation) Violation {
	const prefix = "sections[#"
	if !strings.HasPrefix(v.Field, prefix) {
		return v
	}
	end := strings.IndexByte(v.Field, ']')
	if end < 0 {
		return v
	}
	v.Field = prefix + v.Field[end:]
	return v
}
