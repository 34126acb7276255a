package action

import (
	"fmt"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

type refKind int

const (
	refByID refKind = iota + 1
	refByType
)

// SectionRef points at one section, either by id or by type. A by-type
// reference resolves to the first section of that type in render order.
type SectionRef struct {
	kind refKind
	id   string
	typ  site.SectionType
}

// ByID references the section with the given id.
func ByID(id string) SectionRef {
	return SectionRef{kind: refByID, id: id}
}

// ByType references the first section of the given type.
func ByType(t site.SectionType) SectionRef {
	return SectionRef{kind: refByType, typ: t}
}

func (r SectionRef) String() string {
	switch r.kind {
	case refByID:
		return fmt.Sprintf("id %q", r.id)
	case refByType:
		return fmt.Sprintf("type %q", r.typ)
	default:
		return "empty reference"
	}
}

// Resolve returns the index of the referenced section in m.
func (r SectionRef) Resolve(m site.ContentModel) (int, error) {
	switch r.kind {
	case refByID:
		if i := m.IndexOf(r.id); i >= 0 {
			return i, nil
		}
	case refByType:
		for i, s := range m.Sections {
			if s.Type == r.typ {
				return i, nil
			}
		}
	default:
		return -1, perrors.MalformedAction("section reference requires sectionId or sectionType")
	}
	return -1, perrors.SectionNotFound("no section with %s", r)
}
