package onboarding

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-blackswan/site-agent/internal/site"
)

// GenericType is the catalog key used when a business type is unknown.
const GenericType = "generic"

//go:embed catalog.yaml
var builtinCatalog []byte

// ColorDefaults is the suggested palette for a business type.
type ColorDefaults struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
	Accent    string `yaml:"accent" json:"accent"`
}

// FontDefaults is the suggested font pairing for a business type.
type FontDefaults struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

// SectionDefault is one section the generated site starts with.
type SectionDefault struct {
	Type  site.SectionType `yaml:"type" json:"type"`
	Title string           `yaml:"title" json:"title"`
}

// Defaults is everything suggested for one business type.
type Defaults struct {
	BusinessType    string           `yaml:"-" json:"businessType"`
	Label           string           `yaml:"label" json:"label"`
	Aliases         []string         `yaml:"aliases" json:"aliases,omitempty"`
	Colors          ColorDefaults    `yaml:"colors" json:"colors"`
	Fonts           FontDefaults     `yaml:"fonts" json:"fonts"`
	DefaultSections []SectionDefault `yaml:"sections" json:"defaultSections"`
	Taglines        []string         `yaml:"taglines" json:"taglines,omitempty"`
}

// StyleDefaults converts the entry into fallbacks for optional styles.
func (d Defaults) StyleDefaults() site.StyleDefaults {
	return site.StyleDefaults{
		AccentColor: d.Colors.Accent,
		HeadingFont: d.Fonts.Heading,
		BodyFont:    d.Fonts.Body,
	}
}

// Tagline returns the first suggested tagline with the business name filled in.
func (d Defaults) Tagline(name string) string {
	if len(d.Taglines) == 0 {
		return ""
	}
	if name == "" {
		name = "us"
	}
	return strings.ReplaceAll(d.Taglines[0], "{name}", name)
}

// DefaultsProvider looks up suggestions by business type. Implementations
// must be pure and deterministic.
type DefaultsProvider interface {
	Lookup(businessType string) Defaults
	Types() []string
}

// Catalog is a DefaultsProvider backed by a YAML document.
type Catalog struct {
	entries map[string]Defaults
	aliases map[string]string
}

// BuiltinCatalog returns the catalog compiled into the binary.
func BuiltinCatalog() *Catalog {
	c, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("onboarding: builtin catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]Defaults
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if _, ok := raw[GenericType]; !ok {
		return nil, fmt.Errorf("catalog has no %q entry", GenericType)
	}

	c := &Catalog{entries: make(map[string]Defaults, len(raw)), aliases: make(map[string]string)}
	for key, d := range raw {
		key = normalizeType(key)
		d.BusinessType = key
		if err := validateDefaults(d); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", key, err)
		}
		c.entries[key] = d
		for _, a := range d.Aliases {
			c.aliases[normalizeType(a)] = key
		}
	}
	return c, nil
}

func validateDefaults(d Defaults) error {
	for name, col := range map[string]string{"primary": d.Colors.Primary, "secondary": d.Colors.Secondary, "accent": d.Colors.Accent} {
		if !site.IsHexColor(col) {
			return fmt.Errorf("%s color %q is not a hex color", name, col)
		}
	}
	if d.Fonts.Heading == "" || d.Fonts.Body == "" {
		return fmt.Errorf("heading and body fonts are required")
	}
	if len(d.DefaultSections) == 0 {
		return fmt.Errorf("at least one section is required")
	}
	for _, s := range d.DefaultSections {
		if !site.IsValidSectionType(s.Type) {
			return fmt.Errorf("unknown section type %q", s.Type)
		}
	}
	return nil
}

func normalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

// Lookup returns the entry for businessType, resolving aliases, or the
// generic entry when nothing matches.
func (c *Catalog) Lookup(businessType string) Defaults {
	key := normalizeType(businessType)
	if d, ok := c.entries[key]; ok {
		return d
	}
	if canonical, ok := c.aliases[key]; ok {
		return c.entries[canonical]
	}
	return c.entries[GenericType]
}

// Types returns the catalog's business types, sorted, without the generic
// fallback.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		if k != GenericType {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
