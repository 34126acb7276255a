package action

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

func newTestExecutor() *Executor {
	return NewExecutor(DefaultRegistry(site.StyleDefaults{HeadingFont: "Inter", BodyFont: "Inter"}), zerolog.Nop())
}

func baseModel() site.ContentModel {
	return site.ContentModel{
		Sections: []site.Section{
			{ID: "s1", Type: site.SectionHero, Title: "Welcome", Subtitle: site.String("Old sub"), Content: site.String("Hero body")},
			{ID: "s2", Type: site.SectionAbout, Title: "About us"},
			{ID: "s3", Type: site.SectionContact, Title: "Contact"},
		},
		Styles: site.Styles{PrimaryColor: "#111111", SecondaryColor: "#eeeeee"},
		Meta:   site.Meta{Title: site.String("Acme"), Description: site.String("")},
	}
}

func act(name Name, args string) Action {
	return Action{Name: name, Arguments: json.RawMessage(args)}
}

type countingRecorder struct {
	ok, failed int
}

func (r *countingRecorder) RecordAction(_ string, success bool) {
	if success {
		r.ok++
	} else {
		r.failed++
	}
}

func TestApply_AddSectionAppendsWithFreshID(t *testing.T) {
	e := newTestExecutor()
	m := site.ContentModel{
		Sections: []site.Section{{ID: "s1", Type: site.SectionHero}},
		Styles:   site.Styles{PrimaryColor: "#111111", SecondaryColor: "#ffffff"},
		Meta:     site.Meta{Title: site.String(""), Description: site.String("")},
	}

	got, outcomes := e.Apply(m, []Action{act(AddSection, `{"type":"testimonials","title":"What clients say"}`)})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success, outcomes[0].Error)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, site.SectionTestimonials, got.Sections[1].Type)
	assert.Equal(t, "What clients say", got.Sections[1].Title)
	assert.NotEmpty(t, got.Sections[1].ID)
	assert.NotEqual(t, "s1", got.Sections[1].ID)
	assert.Len(t, m.Sections, 1, "input snapshot must not change")
}

func TestApply_AddSectionTwiceCreatesTwoSections(t *testing.T) {
	e := newTestExecutor()
	a := act(AddSection, `{"type":"hero","title":"Second hero"}`)

	got, outcomes := e.Apply(baseModel(), []Action{a, a})

	assert.True(t, outcomes[0].Success)
	assert.True(t, outcomes[1].Success)
	require.Len(t, got.Sections, 5)
	assert.NotEqual(t, got.Sections[3].ID, got.Sections[4].ID)
	assert.Empty(t, site.Validate(got))
}

func TestApply_AddSectionAtPosition(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{
		act(AddSection, `{"type":"faq","title":"FAQ","position":1}`),
		act(AddSection, `{"type":"cta","title":"Go","position":99}`),
	})

	require.True(t, outcomes[0].Success)
	require.True(t, outcomes[1].Success)
	assert.Equal(t, site.SectionFAQ, got.Sections[1].Type)
	assert.Equal(t, site.SectionCTA, got.Sections[4].Type)
	assert.Contains(t, outcomes[0].Description, "position 2")
}

func TestApply_AddSectionInvalidType(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{act(AddSection, `{"type":"carousel","title":"x"}`)})

	assert.False(t, outcomes[0].Success)
	assert.Equal(t, perrors.CodeInvalidSectionType, outcomes[0].Code)
	assert.Equal(t, baseModel(), got)
}

func TestApply_AddSectionRequiresContent(t *testing.T) {
	e := newTestExecutor()

	_, outcomes := e.Apply(baseModel(), []Action{
		act(AddSection, `{"type":"faq"}`),
		act(AddSection, `{"title":"no type"}`),
	})

	assert.Equal(t, perrors.CodeMalformedAction, outcomes[0].Code)
	assert.Equal(t, perrors.CodeMalformedAction, outcomes[1].Code)
}

func TestApply_RemoveMissingIDLeavesModelUnchanged(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()
	a := act(RemoveSection, `{"sectionId":"nope"}`)

	got, outcomes := e.Apply(m, []Action{a})
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Success)
	assert.Equal(t, perrors.CodeSectionNotFound, outcomes[0].Code)
	assert.Equal(t, m, got)

	again, outcomes2 := e.Apply(got, []Action{a})
	assert.False(t, outcomes2[0].Success)
	assert.Equal(t, got, again)
}

func TestApply_RemoveByTypeTakesFirstMatch(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()
	m.Sections = append(m.Sections, site.Section{ID: "s4", Type: site.SectionAbout, Title: "More about"})

	got, outcomes := e.Apply(m, []Action{act(RemoveSection, `{"sectionType":"about"}`)})

	require.True(t, outcomes[0].Success)
	assert.Equal(t, []string{"s1", "s3", "s4"}, got.SectionIDs())
	assert.Contains(t, outcomes[0].Description, "About us")
}

func TestApply_EditMergesFields(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{act(EditSection, `{"sectionType":"hero","subtitle":"New sub"}`)})

	require.True(t, outcomes[0].Success)
	hero := got.Sections[0]
	assert.Equal(t, "Welcome", hero.Title)
	assert.Equal(t, "Hero body", *hero.Content)
	assert.Equal(t, "New sub", *hero.Subtitle)
	assert.Contains(t, outcomes[0].Description, "subtitle")
}

func TestApply_EditItemsReplacesList(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{
		act(EditSection, `{"id":"s2","items":[{"title":"Fast","icon":"bolt"}]}`),
	})

	require.True(t, outcomes[0].Success)
	require.Len(t, got.Sections[1].Items, 1)
	assert.Equal(t, "bolt", got.Sections[1].Items[0]["icon"])
	assert.Equal(t, "About us", got.Sections[1].Title)
}

func TestApply_EditUnknownSection(t *testing.T) {
	e := newTestExecutor()

	_, outcomes := e.Apply(baseModel(), []Action{act(EditSection, `{"sectionType":"pricing","title":"x"}`)})

	assert.Equal(t, perrors.CodeSectionNotFound, outcomes[0].Code)
}

func TestApply_ReorderPermutation(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()

	got, outcomes := e.Apply(m, []Action{act(ReorderSections, `{"order":["s3","s1","s2"]}`)})
	require.True(t, outcomes[0].Success)
	assert.Equal(t, []string{"s3", "s1", "s2"}, got.SectionIDs())

	back, outcomes := e.Apply(got, []Action{act(ReorderSections, `{"order":["s1","s2","s3"]}`)})
	require.True(t, outcomes[0].Success)
	assert.Equal(t, m, back)
}

func TestApply_ReorderRejectsBadSets(t *testing.T) {
	e := newTestExecutor()
	cases := map[string]string{
		"missing id":   `{"order":["s1","s2"]}`,
		"duplicate id": `{"order":["s1","s1","s2"]}`,
		"unknown id":   `{"order":["s1","s2","s9"]}`,
		"bad swap":     `{"swap":{"a":"s1","b":"s9"}}`,
		"bad move":     `{"move":{"sectionId":"s1","to":3}}`,
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			got, outcomes := e.Apply(baseModel(), []Action{act(ReorderSections, args)})
			assert.False(t, outcomes[0].Success)
			assert.Equal(t, perrors.CodeInvalidOrder, outcomes[0].Code)
			assert.Equal(t, baseModel(), got)
		})
	}
}

func TestApply_ReorderRequiresExactlyOneInstruction(t *testing.T) {
	e := newTestExecutor()

	_, outcomes := e.Apply(baseModel(), []Action{
		act(ReorderSections, `{}`),
		act(ReorderSections, `{"order":["s1","s2","s3"],"swap":{"a":"s1","b":"s2"}}`),
	})

	assert.Equal(t, perrors.CodeMalformedAction, outcomes[0].Code)
	assert.Equal(t, perrors.CodeMalformedAction, outcomes[1].Code)
}

func TestApply_SwapAndMove(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{
		act(ReorderSections, `{"swap":{"a":"s1","b":"s3"}}`),
		act(ReorderSections, `{"move":{"sectionId":"s1","to":0}}`),
	})

	require.True(t, outcomes[0].Success)
	require.True(t, outcomes[1].Success)
	assert.Equal(t, []string{"s1", "s3", "s2"}, got.SectionIDs())
}

func TestApply_LaterActionSeesEarlierResult(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{
		act(AddSection, `{"type":"testimonials","title":"Clients"}`),
		act(EditSection, `{"sectionType":"testimonials","subtitle":"Kind words"}`),
	})

	require.True(t, outcomes[0].Success)
	require.True(t, outcomes[1].Success)
	assert.Equal(t, "Kind words", *got.Sections[3].Subtitle)
}

func TestApply_FailureIsolation(t *testing.T) {
	rec := &countingRecorder{}
	e := NewExecutor(DefaultRegistry(site.StyleDefaults{}), zerolog.Nop(), WithRecorder(rec))

	got, outcomes := e.Apply(baseModel(), []Action{
		act(EditSection, `{"sectionId":"missing-id","title":"x"}`),
		act(UpdateColors, `{"primaryColor":"#abcdef"}`),
	})

	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Success)
	assert.True(t, outcomes[1].Success)
	assert.Equal(t, "#abcdef", got.Styles.PrimaryColor)
	assert.Equal(t, 1, rec.ok)
	assert.Equal(t, 1, rec.failed)
}

func TestApply_UpdateColorsMerges(t *testing.T) {
	e := newTestExecutor()
	m := site.ContentModel{
		Styles: site.Styles{PrimaryColor: "#111111"},
		Meta:   site.Meta{Title: site.String(""), Description: site.String("")},
	}

	got, outcomes := e.Apply(m, []Action{act(UpdateColors, `{"secondaryColor":"#ffffff","shadowColor":"#000"}`)})

	require.True(t, outcomes[0].Success, outcomes[0].Error)
	assert.Equal(t, site.Styles{PrimaryColor: "#111111", SecondaryColor: "#ffffff"}, got.Styles)
}

func TestApply_InvalidColorFailsValidation(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{act(UpdateColors, `{"primaryColor":"blue"}`)})

	assert.False(t, outcomes[0].Success)
	assert.Equal(t, perrors.CodeValidationFailed, outcomes[0].Code)
	assert.Contains(t, outcomes[0].Error, "styles.primaryColor")
	assert.Equal(t, "#111111", got.Styles.PrimaryColor)
}

func TestApply_FontsAndSEO(t *testing.T) {
	e := newTestExecutor()

	got, outcomes := e.Apply(baseModel(), []Action{
		act(UpdateFonts, `{"headingFont":"Playfair Display"}`),
		act(UpdateSEO, `{"description":"Best widgets in town"}`),
	})

	require.True(t, outcomes[0].Success)
	require.True(t, outcomes[1].Success)
	assert.Equal(t, "Playfair Display", *got.Styles.HeadingFont)
	assert.Nil(t, got.Styles.BodyFont)
	assert.Equal(t, "Acme", *got.Meta.Title)
	assert.Equal(t, "Best widgets in town", *got.Meta.Description)
}

func TestApply_GetSiteInfoDoesNotMutate(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()

	got, outcomes := e.Apply(m, []Action{act(GetSiteInfo, ``)})

	require.True(t, outcomes[0].Success)
	assert.Equal(t, m, got)
	assert.Contains(t, outcomes[0].Description, "3 section(s)")
	assert.Contains(t, outcomes[0].Description, "heading Inter")
	assert.False(t, AnyMutated(outcomes))
	assert.True(t, AnySucceeded(outcomes))
}

func TestApply_MalformedArguments(t *testing.T) {
	e := newTestExecutor()

	_, outcomes := e.Apply(baseModel(), []Action{
		act(UpdateColors, `{"primaryColor":42}`),
		act(EditSection, `["s1"]`),
		act("delete_everything", `{}`),
	})

	for _, o := range outcomes {
		assert.False(t, o.Success)
		assert.Equal(t, perrors.CodeMalformedAction, o.Code)
	}
}

func TestApply_PreexistingViolationsDoNotBlockEdits(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()
	m.Meta.Description = nil

	got, outcomes := e.Apply(m, []Action{act(EditSection, `{"sectionId":"s2","title":"Our story"}`)})

	require.True(t, outcomes[0].Success, outcomes[0].Error)
	assert.Equal(t, "Our story", got.Sections[1].Title)
}

func TestApply_EmptyBatch(t *testing.T) {
	e := newTestExecutor()
	got, outcomes := e.Apply(baseModel(), nil)
	assert.Empty(t, outcomes)
	assert.Equal(t, baseModel(), got)
	assert.False(t, AnySucceeded(outcomes))
}

func TestSummarize_OmitsFailures(t *testing.T) {
	outcomes := []Outcome{
		{Action: AddSection, Success: true, Description: "Added faq section"},
		{Action: EditSection, Success: false, Description: "Could not edit_section", Error: "boom"},
		{Action: UpdateColors, Success: true, Description: "Updated colors"},
	}
	assert.Equal(t, "Added faq section\nUpdated colors", Summarize(outcomes))

	ok, bad := Counts(outcomes)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, bad)
}

func TestFromToolUse(t *testing.T) {
	a := FromToolUse("tu_1", "add_section", []byte(`{"type":"faq"}`))
	assert.Equal(t, AddSection, a.Name)
	assert.Equal(t, "tu_1", a.ID)
	assert.Equal(t, `add_section({"type":"faq"})`, a.String())
}

func TestApply_UnnamedSectionDoesNotBlockShiftingEdits(t *testing.T) {
	e := newTestExecutor()
	m := baseModel()
	m.Sections[2].ID = ""

	got, outcomes := e.Apply(m, []Action{
		act(AddSection, `{"type":"faq","title":"Questions","position":0}`),
		act(RemoveSection, `{"sectionId":"s1"}`),
	})

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success, outcomes[0].Error)
	assert.True(t, outcomes[1].Success, outcomes[1].Error)
	require.Len(t, got.Sections, 3)
	assert.Equal(t, site.SectionFAQ, got.Sections[0].Type)
	assert.Equal(t, "", got.Sections[2].ID)
}
