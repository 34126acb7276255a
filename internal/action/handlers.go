package action

import (
	"encoding/json"
	"fmt"
	"strings"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/site"
)

type obj = map[string]interface{}

func sectionTypeEnum() []string {
	out := make([]string, len(site.SectionTypes))
	for i, t := range site.SectionTypes {
		out[i] = string(t)
	}
	return out
}

func refProperties() obj {
	return obj{
		"sectionId":   obj{"type": "string", "description": "Id of the target section (preferred)"},
		"sectionType": obj{"type": "string", "enum": sectionTypeEnum(), "description": "Type of the target section; the first section of this type is used"},
	}
}

func fieldProperties() obj {
	return obj{
		"title":    obj{"type": "string"},
		"subtitle": obj{"type": "string"},
		"content":  obj{"type": "string"},
		"items": obj{
			"type":        "array",
			"description": "Structured records; shape depends on the section type (e.g. quote/author/role for testimonials)",
			"items":       obj{"type": "object"},
		},
	}
}

func merge(maps ...obj) obj {
	out := obj{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func describe(s site.Section) string {
	if s.Title == "" {
		return string(s.Type) + " section"
	}
	return fmt.Sprintf("%s section %q", s.Type, s.Title)
}

// ---- add_section ----

type addSectionHandler struct{}

func (addSectionHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(AddSection),
		Description: "Add a new section to the site. It is appended at the end unless a position is given.",
		InputSchema: MustSchema(obj{
			"type": "object",
			"properties": merge(fieldProperties(), obj{
				"type":     obj{"type": "string", "enum": sectionTypeEnum()},
				"position": obj{"type": "integer", "minimum": 0, "description": "0-based index to insert at"},
			}),
			"required": []string{"type", "title"},
		}),
	}
}

func (addSectionHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args addSectionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.Type == nil || strings.TrimSpace(*args.Type) == "" {
		return "", perrors.MalformedAction("type is required")
	}
	t, err := parseSectionType(*args.Type)
	if err != nil {
		return "", err
	}
	if args.sectionFields.empty() {
		return "", perrors.MalformedAction("initial content is required (title, subtitle, content or items)")
	}

	s := site.Section{ID: site.NewSectionID(), Type: t}
	args.sectionFields.mergeInto(&s)

	pos := len(m.Sections)
	if args.Position != nil {
		pos = min(max(*args.Position, 0), len(m.Sections))
	}
	m.Sections = append(m.Sections, site.Section{})
	copy(m.Sections[pos+1:], m.Sections[pos:])
	m.Sections[pos] = s

	if pos == len(m.Sections)-1 {
		return fmt.Sprintf("Added %s", describe(s)), nil
	}
	return fmt.Sprintf("Added %s at position %d", describe(s), pos+1), nil
}

// ---- remove_section ----

type removeSectionHandler struct{}

func (removeSectionHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(RemoveSection),
		Description: "Remove one section, identified by id or by type.",
		InputSchema: MustSchema(obj{"type": "object", "properties": refProperties()}),
	}
}

func (removeSectionHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args removeSectionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	ref, err := args.ref()
	if err != nil {
		return "", err
	}
	i, err := ref.Resolve(*m)
	if err != nil {
		return "", err
	}
	removed := m.Sections[i]
	m.Sections = append(m.Sections[:i], m.Sections[i+1:]...)
	return fmt.Sprintf("Removed %s", describe(removed)), nil
}

// ---- edit_section ----

type editSectionHandler struct{}

func (editSectionHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(EditSection),
		Description: "Edit one section. Only the supplied fields change; omitted fields are kept.",
		InputSchema: MustSchema(obj{
			"type":       "object",
			"properties": merge(refProperties(), fieldProperties()),
		}),
	}
}

func (editSectionHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args editSectionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	ref, err := args.ref()
	if err != nil {
		return "", err
	}
	i, err := ref.Resolve(*m)
	if err != nil {
		return "", err
	}
	changed := args.sectionFields.mergeInto(&m.Sections[i])
	if len(changed) == 0 {
		return fmt.Sprintf("No changes to %s", describe(m.Sections[i])), nil
	}
	return fmt.Sprintf("Updated %s (%s)", describe(m.Sections[i]), strings.Join(changed, ", ")), nil
}

// ---- reorder_sections ----

type reorderHandler struct{}

func (reorderHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(ReorderSections),
		Description: "Reorder sections. Give exactly one of: order (every section id, in the new order), swap (two ids), or move (one id and its new 0-based index).",
		InputSchema: MustSchema(obj{
			"type": "object",
			"properties": obj{
				"order": obj{"type": "array", "items": obj{"type": "string"}},
				"swap": obj{
					"type":       "object",
					"properties": obj{"a": obj{"type": "string"}, "b": obj{"type": "string"}},
					"required":   []string{"a", "b"},
				},
				"move": obj{
					"type":       "object",
					"properties": obj{"sectionId": obj{"type": "string"}, "to": obj{"type": "integer", "minimum": 0}},
					"required":   []string{"sectionId", "to"},
				},
			},
		}),
	}
}

func (reorderHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args reorderArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	given := 0
	for _, set := range []bool{args.Order != nil, args.Swap != nil, args.Move != nil} {
		if set {
			given++
		}
	}
	if given != 1 {
		return "", perrors.MalformedAction("exactly one of order, swap or move is required")
	}

	switch {
	case args.Order != nil:
		return reorderByList(m, args.Order)
	case args.Swap != nil:
		return swapSections(m, args.Swap.A, args.Swap.B)
	default:
		return moveSection(m, args.Move)
	}
}

func reorderByList(m *site.ContentModel, order []string) (string, error) {
	if len(order) != len(m.Sections) {
		return "", perrors.InvalidOrder("got %d ids for %d sections", len(order), len(m.Sections))
	}
	byID := make(map[string]site.Section, len(m.Sections))
	for _, s := range m.Sections {
		byID[s.ID] = s
	}
	used := make(map[string]bool, len(order))
	next := make([]site.Section, 0, len(order))
	for _, id := range order {
		s, ok := byID[id]
		if !ok {
			return "", perrors.InvalidOrder("unknown section id %q", id)
		}
		if used[id] {
			return "", perrors.InvalidOrder("section id %q listed twice", id)
		}
		used[id] = true
		next = append(next, s)
	}
	m.Sections = next
	return "Reordered sections", nil
}

func swapSections(m *site.ContentModel, a, b string) (string, error) {
	i, j := m.IndexOf(a), m.IndexOf(b)
	if i < 0 || j < 0 {
		return "", perrors.InvalidOrder("swap needs two existing section ids, got %q and %q", a, b)
	}
	m.Sections[i], m.Sections[j] = m.Sections[j], m.Sections[i]
	return fmt.Sprintf("Swapped %s and %s", describe(m.Sections[j]), describe(m.Sections[i])), nil
}

func moveSection(m *site.ContentModel, mv *moveArgs) (string, error) {
	if mv.To == nil {
		return "", perrors.MalformedAction("move.to is required")
	}
	from := m.IndexOf(mv.SectionID)
	if from < 0 {
		return "", perrors.InvalidOrder("unknown section id %q", mv.SectionID)
	}
	to := *mv.To
	if to < 0 || to >= len(m.Sections) {
		return "", perrors.InvalidOrder("position %d out of range [0, %d)", to, len(m.Sections))
	}
	s := m.Sections[from]
	rest := append(m.Sections[:from:from], m.Sections[from+1:]...)
	next := make([]site.Section, 0, len(m.Sections))
	next = append(next, rest[:to]...)
	next = append(next, s)
	next = append(next, rest[to:]...)
	m.Sections = next
	return fmt.Sprintf("Moved %s to position %d", describe(s), to+1), nil
}

// ---- update_colors / update_fonts / update_seo ----

type colorsHandler struct{}

func (colorsHandler) Schema() llm.ToolSchema {
	hex := obj{"type": "string", "pattern": "^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$"}
	return llm.ToolSchema{
		Name:        string(UpdateColors),
		Description: "Update site colors. Only the supplied colors change. Colors are hex strings like #1a2b3c.",
		InputSchema: MustSchema(obj{
			"type":       "object",
			"properties": obj{"primaryColor": hex, "secondaryColor": hex, "accentColor": hex},
		}),
	}
}

func (colorsHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args colorArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	var changed []string
	if args.PrimaryColor != nil {
		m.Styles.PrimaryColor = strings.TrimSpace(*args.PrimaryColor)
		changed = append(changed, "primary "+m.Styles.PrimaryColor)
	}
	if args.SecondaryColor != nil {
		m.Styles.SecondaryColor = strings.TrimSpace(*args.SecondaryColor)
		changed = append(changed, "secondary "+m.Styles.SecondaryColor)
	}
	if args.AccentColor != nil {
		m.Styles.AccentColor = site.String(strings.TrimSpace(*args.AccentColor))
		changed = append(changed, "accent "+*m.Styles.AccentColor)
	}
	if len(changed) == 0 {
		return "No color changes requested", nil
	}
	return "Updated colors: " + strings.Join(changed, ", "), nil
}

type fontsHandler struct{}

func (fontsHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(UpdateFonts),
		Description: "Update site fonts by family name. Only the supplied fonts change.",
		InputSchema: MustSchema(obj{
			"type": "object",
			"properties": obj{
				"headingFont": obj{"type": "string"},
				"bodyFont":    obj{"type": "string"},
			},
		}),
	}
}

func (fontsHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args fontArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	var changed []string
	if args.HeadingFont != nil {
		m.Styles.HeadingFont = site.String(strings.TrimSpace(*args.HeadingFont))
		changed = append(changed, "heading "+*m.Styles.HeadingFont)
	}
	if args.BodyFont != nil {
		m.Styles.BodyFont = site.String(strings.TrimSpace(*args.BodyFont))
		changed = append(changed, "body "+*m.Styles.BodyFont)
	}
	if len(changed) == 0 {
		return "No font changes requested", nil
	}
	return "Updated fonts: " + strings.Join(changed, ", "), nil
}

type seoHandler struct{}

func (seoHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(UpdateSEO),
		Description: "Update the SEO title and/or description.",
		InputSchema: MustSchema(obj{
			"type": "object",
			"properties": obj{
				"title":       obj{"type": "string"},
				"description": obj{"type": "string"},
			},
		}),
	}
}

func (seoHandler) Apply(m *site.ContentModel, raw json.RawMessage) (string, error) {
	var args seoArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	var changed []string
	if args.Title != nil {
		m.Meta.Title = site.String(*args.Title)
		changed = append(changed, "title")
	}
	if args.Description != nil {
		m.Meta.Description = site.String(*args.Description)
		changed = append(changed, "description")
	}
	if len(changed) == 0 {
		return "No SEO changes requested", nil
	}
	return "Updated SEO " + strings.Join(changed, " and "), nil
}

// ---- get_site_info ----

type infoHandler struct {
	defaults site.StyleDefaults
}

func (infoHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        string(GetSiteInfo),
		Description: "Describe the current sections, styles and SEO metadata without changing anything.",
		InputSchema: MustSchema(obj{"type": "object", "properties": obj{}}),
	}
}

func (h infoHandler) Apply(m *site.ContentModel, _ json.RawMessage) (string, error) {
	return DescribeSite(*m, h.defaults), nil
}

// DescribeSite renders a compact, human-readable summary of m.
func DescribeSite(m site.ContentModel, defaults site.StyleDefaults) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The site has %d section(s)", len(m.Sections))
	if len(m.Sections) > 0 {
		b.WriteString(":")
		for i, s := range m.Sections {
			fmt.Fprintf(&b, "\n%d. %s (id %s)", i+1, describe(s), s.ID)
		}
	}
	st := m.Styles.Resolve(defaults)
	fmt.Fprintf(&b, "\nColors: primary %s, secondary %s, accent %s", st.PrimaryColor, st.SecondaryColor, orNone(st.AccentColor))
	fmt.Fprintf(&b, "\nFonts: heading %s, body %s", orNone(st.HeadingFont), orNone(st.BodyFont))
	fmt.Fprintf(&b, "\nSEO title: %s", quoteOrUnset(m.Meta.Title))
	fmt.Fprintf(&b, "\nSEO description: %s", quoteOrUnset(m.Meta.Description))
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func quoteOrUnset(p *string) string {
	if p == nil {
		return "(unset)"
	}
	return fmt.Sprintf("%q", *p)
}
