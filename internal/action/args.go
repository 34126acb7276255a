package action

import (
	"bytes"
	"encoding/json"
	"strings"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

// decodeArgs unmarshals raw into v. Unknown keys are ignored; a payload that
// is not an object, or whose known keys carry the wrong JSON type, is
// malformed.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if raw[0] != '{' {
		return perrors.MalformedAction("arguments must be a JSON object")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return perrors.MalformedAction("decode arguments: %v", err)
	}
	return nil
}

// refArgs is embedded by actions that target an existing section. The short
// keys "id" and "type" are accepted as aliases.
type refArgs struct {
	SectionID   *string `json:"sectionId"`
	SectionType *string `json:"sectionType"`
	ID          *string `json:"id"`
	Type        *string `json:"type"`
}

func (a refArgs) ref() (SectionRef, error) {
	id := firstNonEmpty(a.SectionID, a.ID)
	if id != "" {
		return ByID(id), nil
	}
	typ := firstNonEmpty(a.SectionType, a.Type)
	if typ == "" {
		return SectionRef{}, perrors.MalformedAction("sectionId or sectionType is required")
	}
	t, err := parseSectionType(typ)
	if err != nil {
		return SectionRef{}, err
	}
	return ByType(t), nil
}

func parseSectionType(s string) (site.SectionType, error) {
	t, ok := site.ParseSectionType(s)
	if !ok {
		return "", perrors.InvalidSectionType("unknown section type %q", s)
	}
	return t, nil
}

func firstNonEmpty(ps ...*string) string {
	for _, p := range ps {
		if p != nil && strings.TrimSpace(*p) != "" {
			return strings.TrimSpace(*p)
		}
	}
	return ""
}

// sectionFields are the editable fields of a section. Nil means "not
// supplied".
type sectionFields struct {
	Title    *string      `json:"title"`
	Subtitle *string      `json:"subtitle"`
	Content  *string      `json:"content"`
	Items    *[]site.Item `json:"items"`
}

func (f sectionFields) empty() bool {
	return f.Title == nil && f.Subtitle == nil && f.Content == nil && f.Items == nil
}

// mergeInto copies supplied fields onto s and returns the names of the
// fields it changed.
func (f sectionFields) mergeInto(s *site.Section) []string {
	var changed []string
	if f.Title != nil {
		s.Title = *f.Title
		changed = append(changed, "title")
	}
	if f.Subtitle != nil {
		s.Subtitle = site.String(*f.Subtitle)
		changed = append(changed, "subtitle")
	}
	if f.Content != nil {
		s.Content = site.String(*f.Content)
		changed = append(changed, "content")
	}
	if f.Items != nil {
		s.Items = site.CloneItems(*f.Items)
		changed = append(changed, "items")
	}
	return changed
}

type addSectionArgs struct {
	Type *string `json:"type"`
	sectionFields
	Position *int `json:"position"`
}

type removeSectionArgs struct {
	refArgs
}

type editSectionArgs struct {
	refArgs
	sectionFields
}

type swapArgs struct {
	A string `json:"a"`
	B string `json:"b"`
}

type moveArgs struct {
	SectionID string `json:"sectionId"`
	To        *int   `json:"to"`
}

type reorderArgs struct {
	Order []string  `json:"order"`
	Swap  *swapArgs `json:"swap"`
	Move  *moveArgs `json:"move"`
}

type colorArgs struct {
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	AccentColor    *string `json:"accentColor"`
}

type fontArgs struct {
	HeadingFont *string `json:"headingFont"`
	BodyFont    *string `json:"bodyFont"`
}

type seoArgs struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
