package site

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() ContentModel {
	return ContentModel{
		Sections: []Section{
			{ID: "s1", Type: SectionHero, Title: "Welcome", Subtitle: String("Hi"), Content: String("Body")},
			{ID: "s2", Type: SectionTestimonials, Title: "Clients", Items: []Item{
				{"quote": "Great", "author": "Ana", "role": "CEO"},
			}},
		},
		Styles: Styles{PrimaryColor: "#111111", SecondaryColor: "#fff"},
		Meta:   Meta{Title: String("Acme"), Description: String("")},
	}
}

func TestValidate_ValidModel(t *testing.T) {
	assert.Empty(t, Validate(validModel()))
}

func TestValidate_DuplicateIDs(t *testing.T) {
	m := validModel()
	m.Sections[1].ID = "s1"

	v := Validate(m)
	require.Len(t, v, 1)
	assert.Equal(t, "sections[s1].id", v[0].Field)
	assert.Contains(t, v[0].Message, "duplicate")
}

func TestValidate_UnknownType(t *testing.T) {
	m := validModel()
	m.Sections[0].Type = "carousel"

	v := Validate(m)
	require.Len(t, v, 1)
	assert.Equal(t, "sections[s1].type", v[0].Field)
}

func TestValidate_BadColors(t *testing.T) {
	m := validModel()
	m.Styles.PrimaryColor = "red"
	m.Styles.SecondaryColor = ""
	m.Styles.AccentColor = String("#12345")

	v := Validate(m)
	fields := make([]string, 0, len(v))
	for _, x := range v {
		fields = append(fields, x.Field)
	}
	assert.ElementsMatch(t, []string{"styles.primaryColor", "styles.secondaryColor", "styles.accentColor"}, fields)
}

func TestValidate_MetaMustBeDefined(t *testing.T) {
	m := validModel()
	m.Meta = Meta{}

	v := Validate(m)
	require.Len(t, v, 2)
	assert.Equal(t, "meta.title", v[0].Field)
	assert.Equal(t, "meta.description", v[1].Field)
}

func TestIsHexColor(t *testing.T) {
	for _, ok := range []string{"#fff", "#FFFFFF", "#a1b2c3", "#a1b2c3ff"} {
		assert.True(t, IsHexColor(ok), ok)
	}
	for _, bad := range []string{"fff", "#ffff", "#gggggg", "", "rgb(0,0,0)"} {
		assert.False(t, IsHexColor(bad), bad)
	}
}

func TestIntroduced(t *testing.T) {
	before := []Violation{{Field: "meta.title", Message: "title is not defined"}}
	after := []Violation{
		{Field: "meta.title", Message: "title is not defined"},
		{Field: "sections[x].type", Message: "unknown section type \"y\""},
	}
	assert.Equal(t, after[1:], Introduced(before, after))
	assert.Empty(t, Introduced(after, before))
}

func TestClone_IsDeep(t *testing.T) {
	m := validModel()
	c := m.Clone()

	*c.Sections[0].Subtitle = "changed"
	c.Sections[1].Items[0]["quote"] = "changed"
	*c.Meta.Title = "changed"
	c.Sections = append(c.Sections, Section{ID: "s3", Type: SectionFAQ})

	assert.Equal(t, "Hi", *m.Sections[0].Subtitle)
	assert.Equal(t, "Great", m.Sections[1].Items[0]["quote"])
	assert.Equal(t, "Acme", *m.Meta.Title)
	assert.Len(t, m.Sections, 2)
}

func TestStyles_Resolve(t *testing.T) {
	s := Styles{PrimaryColor: "#111111", SecondaryColor: "#ffffff", HeadingFont: String("Inter")}
	r := s.Resolve(StyleDefaults{AccentColor: "#ff0000", HeadingFont: "Lora", BodyFont: "Roboto"})

	assert.Equal(t, "#ff0000", r.AccentColor)
	assert.Equal(t, "Inter", r.HeadingFont)
	assert.Equal(t, "Roboto", r.BodyFont)
}

func TestContentModel_JSONKeepsEmptyMeta(t *testing.T) {
	b, err := json.Marshal(validModel())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"description":""`)

	var back ContentModel
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.Meta.Description)
	assert.Equal(t, "", *back.Meta.Description)
	assert.Equal(t, []string{"s1", "s2"}, back.SectionIDs())
}

func TestNewSectionID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewSectionID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestParseSectionType(t *testing.T) {
	typ, ok := ParseSectionType("  FAQ ")
	assert.True(t, ok)
	assert.Equal(t, SectionFAQ, typ)

	_, ok = ParseSectionType("carousel")
	assert.False(t, ok)
}

func TestIntroduced_IgnoresPositionOfUnnamedSections(t *testing.T) {
	before := []Violation{{Field: "sections[#2].id", Message: "id is empty"}}
	shifted := []Violation{{Field: "sections[#3].id", Message: "id is empty"}}
	assert.Empty(t, Introduced(before, shifted))

	second := append(shifted, Violation{Field: "sections[#0].id", Message: "id is empty"})
	assert.Len(t, Introduced(before, second), 1)
}
