// Package action defines the closed set of mutations an AI response may
// request against a site.ContentModel, and the executor that applies a batch
// of them in order.
package action

import (
	"encoding/json"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
)

// Name identifies an action in the taxonomy.
type Name string

const (
	AddSection      Name = "add_section"
	RemoveSection   Name = "remove_section"
	EditSection     Name = "edit_section"
	ReorderSections Name = "reorder_sections"
	UpdateColors    Name = "update_colors"
	UpdateFonts     Name = "update_fonts"
	UpdateSEO       Name = "update_seo"
	GetSiteInfo     Name = "get_site_info"
)

// Names lists the taxonomy in declaration order.
var Names = []Name{
	AddSection, RemoveSection, EditSection, ReorderSections,
	UpdateColors, UpdateFonts, UpdateSEO, GetSiteInfo,
}

// Action is one requested mutation. Arguments is the raw payload as issued by
// the model; it is decoded by the handler registered for Name.
type Action struct {
	ID        string          `json:"id,omitempty"`
	Name      Name            `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// New builds an Action from a Go value, marshalling it as the arguments.
// It panics if args cannot be marshalled, like MustSchema.
func New(name Name, args any) Action {
	return Action{Name: name, Arguments: MustSchema(args)}
}

// Outcome is the result of one submitted action.
type Outcome struct {
	ActionID    string       `json:"actionId,omitempty"`
	Action      Name         `json:"action"`
	Success     bool         `json:"success"`
	Description string       `json:"description"`
	Error       string       `json:"error,omitempty"`
	Code        perrors.Code `json:"code,omitempty"`
}

func succeeded(a Action, desc string) Outcome {
	return Outcome{ActionID: a.ID, Action: a.Name, Success: true, Description: desc}
}

func failed(a Action, err error) Outcome {
	code := perrors.CodeOf(err)
	if code == "" {
		code = perrors.CodeMalformedAction
	}
	return Outcome{
		ActionID:    a.ID,
		Action:      a.Name,
		Success:     false,
		Description: "Could not " + string(a.Name),
		Error:       err.Error(),
		Code:        code,
	}
}
