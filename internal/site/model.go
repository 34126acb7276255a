// Package site defines the canonical content model of a website: ordered
// sections, styles and SEO metadata. It holds data and validation predicates
// only; mutation lives in the action package.
package site

import (
	"strings"

	"github.com/google/uuid"
)

// SectionType names a kind of content block.
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionAbout        SectionType = "about"
	SectionFeatures     SectionType = "features"
	SectionServices     SectionType = "services"
	SectionTestimonials SectionType = "testimonials"
	SectionTeam         SectionType = "team"
	SectionPricing      SectionType = "pricing"
	SectionContact      SectionType = "contact"
	SectionCTA          SectionType = "cta"
	SectionGallery      SectionType = "gallery"
	SectionFAQ          SectionType = "faq"
	SectionBlog         SectionType = "blog"
	SectionNewsletter   SectionType = "newsletter"
	SectionStats        SectionType = "stats"
	SectionPortfolio    SectionType = "portfolio"
	SectionFooter       SectionType = "footer"
)

// SectionTypes lists every accepted section type in a stable order.
var SectionTypes = []SectionType{
	SectionHero, SectionAbout, SectionFeatures, SectionServices,
	SectionTestimonials, SectionTeam, SectionPricing, SectionContact,
	SectionCTA, SectionGallery, SectionFAQ, SectionBlog,
	SectionNewsletter, SectionStats, SectionPortfolio, SectionFooter,
}

var validSectionTypes = func() map[SectionType]bool {
	m := make(map[SectionType]bool, len(SectionTypes))
	for _, t := range SectionTypes {
		m[t] = true
	}
	return m
}()

// IsValidSectionType reports whether t is in the section type enumeration.
func IsValidSectionType(t SectionType) bool {
	return validSectionTypes[t]
}

// ParseSectionType normalizes s and reports whether it names a known type.
func ParseSectionType(s string) (SectionType, bool) {
	t := SectionType(strings.ToLower(strings.TrimSpace(s)))
	return t, validSectionTypes[t]
}

// Item is one structured record inside a section. Its shape depends on the
// section type and is passed through without interpretation.
type Item map[string]any

// Section is one ordered content block.
type Section struct {
	ID       string      `json:"id"`
	Type     SectionType `json:"type"`
	Title    string      `json:"title"`
	Subtitle *string     `json:"subtitle,omitempty"`
	Content  *string     `json:"content,omitempty"`
	Items    []Item      `json:"items,omitempty"`
}

// Styles holds the site's colors and fonts. Optional fields are nil when the
// site relies on caller-supplied defaults.
type Styles struct {
	PrimaryColor   string  `json:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor"`
	AccentColor    *string `json:"accentColor,omitempty"`
	HeadingFont    *string `json:"headingFont,omitempty"`
	BodyFont       *string `json:"bodyFont,omitempty"`
}

// StyleDefaults supplies fallbacks for the optional style fields.
type StyleDefaults struct {
	AccentColor string `json:"accentColor" yaml:"accent"`
	HeadingFont string `json:"headingFont" yaml:"headingFont"`
	BodyFont    string `json:"bodyFont" yaml:"bodyFont"`
}

// ResolvedStyles is Styles with every optional field filled in.
type ResolvedStyles struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	HeadingFont    string `json:"headingFont"`
	BodyFont       string `json:"bodyFont"`
}

// Resolve fills unset optional fields from d.
func (s Styles) Resolve(d StyleDefaults) ResolvedStyles {
	return ResolvedStyles{
		PrimaryColor:   s.PrimaryColor,
		SecondaryColor: s.SecondaryColor,
		AccentColor:    valueOr(s.AccentColor, d.AccentColor),
		HeadingFont:    valueOr(s.HeadingFont, d.HeadingFont),
		BodyFont:       valueOr(s.BodyFont, d.BodyFont),
	}
}

// Meta is the SEO metadata. A nil field is absent; an empty string is an
// explicit empty value.
type Meta struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ContentModel is the editable state of one site.
type ContentModel struct {
	Sections []Section `json:"sections"`
	Styles   Styles    `json:"styles"`
	Meta     Meta      `json:"meta"`
}

// OutlineEntry is the compact view of a section used in prompts.
type OutlineEntry struct {
	ID    string      `json:"id"`
	Type  SectionType `json:"type"`
	Title string      `json:"title"`
}

// NewSectionID returns a fresh section identifier.
func NewSectionID() string {
	return uuid.New().String()
}

// String returns a pointer to s. Handy for optional fields.
func String(s string) *string {
	return &s
}

// SectionIDs returns the section ids in render order.
func (m ContentModel) SectionIDs() []string {
	ids := make([]string, len(m.Sections))
	for i, s := range m.Sections {
		ids[i] = s.ID
	}
	return ids
}

// Outline returns id, type and title of each section in render order.
func (m ContentModel) Outline() []OutlineEntry {
	out := make([]OutlineEntry, len(m.Sections))
	for i, s := range m.Sections {
		out[i] = OutlineEntry{ID: s.ID, Type: s.Type, Title: s.Title}
	}
	return out
}

// IndexOf returns the position of the section with the given id, or -1.
func (m ContentModel) IndexOf(id string) int {
	for i, s := range m.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of m. Item maps are copied one level deep, and
// nested values inside items are shared.
func (m ContentModel) Clone() ContentModel {
	out := ContentModel{
		Styles: Styles{
			PrimaryColor:   m.Styles.PrimaryColor,
			SecondaryColor: m.Styles.SecondaryColor,
			AccentColor:    clonePtr(m.Styles.AccentColor),
			HeadingFont:    clonePtr(m.Styles.HeadingFont),
			BodyFont:       clonePtr(m.Styles.BodyFont),
		},
		Meta: Meta{
			Title:       clonePtr(m.Meta.Title),
			Description: clonePtr(m.Meta.Description),
		},
	}
	if m.Sections != nil {
		out.Sections = make([]Section, len(m.Sections))
		for i, s := range m.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Subtitle = clonePtr(s.Subtitle)
	out.Content = clonePtr(s.Content)
	out.Items = CloneItems(s.Items)
	return out
}

// CloneItems copies an item list and each item map.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		cp := make(Item, len(it))
		for k, v := range it {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
