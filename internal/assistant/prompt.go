// Package assistant runs one conversational round trip against a site: it
// describes the current snapshot to the model, applies the actions the model
// asks for and persists the result.
package assistant

import (
	"fmt"
	"strings"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/site"
)

// BuildSystemInstructions describes m to the model. It is rebuilt for every
// request so the model always sees the snapshot the actions will run against.
func BuildSystemInstructions(m site.ContentModel, defaults site.StyleDefaults) string {
	var b strings.Builder
	b.WriteString("You are a website editor. You change the user's site by calling the tools you are given; ")
	b.WriteString("describing a change in prose does not make it.\n")

	b.WriteString("\nCurrent sections, top to bottom:\n")
	if len(m.Sections) == 0 {
		b.WriteString("(none)\n")
	}
	for i, e := range m.Outline() {
		fmt.Fprintf(&b, "%d. id=%s type=%s title=%q\n", i+1, e.ID, e.Type, e.Title)
	}

	st := m.Styles.Resolve(defaults)
	b.WriteString("\nStyles:\n")
	fmt.Fprintf(&b, "- primaryColor: %s\n", valueOrUnset(st.PrimaryColor))
	fmt.Fprintf(&b, "- secondaryColor: %s\n", valueOrUnset(st.SecondaryColor))
	fmt.Fprintf(&b, "- accentColor: %s\n", valueOrUnset(st.AccentColor))
	fmt.Fprintf(&b, "- headingFont: %s\n", valueOrUnset(st.HeadingFont))
	fmt.Fprintf(&b, "- bodyFont: %s\n", valueOrUnset(st.BodyFont))

	b.WriteString("\nSEO:\n")
	fmt.Fprintf(&b, "- title: %s\n", quotedOrUnset(m.Meta.Title))
	fmt.Fprintf(&b, "- description: %s\n", quotedOrUnset(m.Meta.Description))

	types := make([]string, len(site.SectionTypes))
	for i, t := range site.SectionTypes {
		types[i] = string(t)
	}
	fmt.Fprintf(&b, "\nAllowed section types: %s\n", strings.Join(types, ", "))

	b.WriteString("\nRules:\n")
	b.WriteString("- Refer to existing sections by id. Use a section type only when there is a single section of that type.\n")
	fmt.Fprintf(&b, "- %s must list every current section id exactly once.\n", action.ReorderSections)
	b.WriteString("- Colors are hex values such as #1e3a8a.\n")
	fmt.Fprintf(&b, "- Use %s when you need to look at the site before changing it.\n", action.GetSiteInfo)
	b.WriteString("- After calling tools, reply with one or two sentences about what changed.")
	return b.String()
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func quotedOrUnset(p *string) string {
	if p == nil {
		return "(unset)"
	}
	return fmt.Sprintf("%q", *p)
}
