package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/site"
)

type fakeHandler struct {
	name string
}

func (f fakeHandler) Schema() llm.ToolSchema {
	return llm.ToolSchema{Name: f.name, Description: "fake", InputSchema: MustSchema(map[string]interface{}{"type": "object"})}
}

func (f fakeHandler) Apply(_ *site.ContentModel, _ json.RawMessage) (string, error) {
	return "ok", nil
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeHandler{name: "dup"})
	assert.Panics(t, func() {
		r.Register(fakeHandler{name: "dup"})
	})
}

func TestDefaultRegistry_SchemasCoverTaxonomy(t *testing.T) {
	r := DefaultRegistry(site.StyleDefaults{})
	schemas := r.Schemas()
	require.Len(t, schemas, len(Names))

	for i, s := range schemas {
		assert.Equal(t, string(Names[i]), s.Name)
		assert.NotEmpty(t, s.Description)

		var schema map[string]interface{}
		require.NoError(t, json.Unmarshal(s.InputSchema, &schema), s.Name)
		assert.Equal(t, "object", schema["type"])
	}
}

func TestAddSectionSchema_EnumeratesTypes(t *testing.T) {
	h, ok := DefaultRegistry(site.StyleDefaults{}).Get(AddSection)
	require.True(t, ok)

	var schema struct {
		Properties map[string]struct {
			Enum []string `json:"enum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(h.Schema().InputSchema, &schema))
	assert.Len(t, schema.Properties["type"].Enum, len(site.SectionTypes))
	assert.Contains(t, schema.Required, "type")
}

func TestSectionRef_Resolve(t *testing.T) {
	m := baseModel()

	i, err := ByID("s3").Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	i, err = ByType(site.SectionAbout).Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = ByType(site.SectionFAQ).Resolve(m)
	assert.Error(t, err)

	_, err = SectionRef{}.Resolve(m)
	assert.Error(t, err)
}

func TestRefArgs_IDWinsOverType(t *testing.T) {
	ref, err := refArgs{SectionID: site.String("s2"), SectionType: site.String("hero")}.ref()
	require.NoError(t, err)
	assert.Equal(t, ByID("s2"), ref)

	_, err = refArgs{SectionType: site.String("nope")}.ref()
	assert.Error(t, err)
}

func TestNew_MarshalsArguments(t *testing.T) {
	a := New(UpdateSEO, map[string]string{"title": "Acme"})
	assert.Equal(t, UpdateSEO, a.Name)
	assert.JSONEq(t, `{"title":"Acme"}`, string(a.Arguments))

	assert.Panics(t, func() {
		New(UpdateSEO, map[string]any{"title": make(chan int)})
	})
}
