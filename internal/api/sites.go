package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/assistant"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/requestid"
	"github.com/p-blackswan/site-agent/internal/site"
)

// CreateSiteRequest is the body of POST /api/v1/sites.
type CreateSiteRequest struct {
	Name    string            `json:"name"`
	Content site.ContentModel `json:"content"`
}

// ValidateResponse lists the invariant violations of a site.
type ValidateResponse struct {
	Valid      bool             `json:"valid"`
	Violations []site.Violation `json:"violations"`
}

// ApplyRequest is the body of POST /api/v1/sites/:id/actions.
type ApplyRequest struct {
	Actions []action.Action `json:"actions"`
}

// ApplyResponse reports a directly applied batch.
type ApplyResponse struct {
	Content  site.ContentModel `json:"content"`
	Outcomes []action.Outcome  `json:"outcomes"`
	Summary  string            `json:"summary"`
	Saved    bool              `json:"saved"`
}

// ChatBody is the body of POST /api/v1/sites/:id/chat.
type ChatBody struct {
	History []llm.Message `json:"history"`
	Message string        `json:"message"`
}

// createSite handles POST /api/v1/sites.
func (s *Server) createSite(c *fiber.Ctx) error {
	var req CreateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if v := site.Validate(req.Content); len(v) > 0 {
		return problemJSON(c, ProblemDetail{
			Type: "invalid_content", Title: "Unprocessable Entity", Status: fiber.StatusUnprocessableEntity,
			Detail: "The content model is not valid", Violations: v,
		})
	}

	created, err := s.deps.Store.CreateSite(c.UserContext(), strings.TrimSpace(req.Name), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// getSite handles GET /api/v1/sites/:id.
func (s *Server) getSite(c *fiber.Ctx) error {
	st, err := s.deps.Store.GetSite(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(st)
}

// deleteSite handles DELETE /api/v1/sites/:id.
func (s *Server) deleteSite(c *fiber.Ctx) error {
	if err := s.deps.Store.DeleteSite(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validateSite handles POST /api/v1/sites/:id/validate.
func (s *Server) validateSite(c *fiber.Ctx) error {
	m, err := s.deps.Store.LoadContentModel(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	v := site.Validate(m)
	if v == nil {
		v = []site.Violation{}
	}
	return c.JSON(ValidateResponse{Valid: len(v) == 0, Violations: v})
}

// applyActions handles POST /api/v1/sites/:id/actions. It runs the same
// executor as the chat route, without a model in the loop.
func (s *Server) applyActions(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	ctx := c.UserContext()
	siteID := c.Params("id")
	m, err := s.deps.Store.LoadContentModel(ctx, siteID)
	if err != nil {
		return errorResponse(c, err)
	}

	next, outcomes := s.deps.Executor.Apply(m, req.Actions)
	resp := ApplyResponse{Content: m, Outcomes: outcomes, Summary: action.Summarize(outcomes)}
	if action.AnyMutated(outcomes) {
		if err := s.deps.Store.SaveContentModel(ctx, siteID, next); err != nil {
			return errorResponse(c, err)
		}
		resp.Content = next
		resp.Saved = true
	}
	if len(outcomes) > 0 {
		if err := s.deps.Store.RecordOutcomes(ctx, siteID, requestid.FromContext(ctx), outcomes); err != nil {
			s.logger.Warn().Err(err).Str("site_id", siteID).Msg("Failed to record action outcomes")
		}
	}
	if resp.Outcomes == nil {
		resp.Outcomes = []action.Outcome{}
	}
	return c.JSON(resp)
}

// listActions handles GET /api/v1/sites/:id/actions.
func (s *Server) listActions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	siteID := c.Params("id")
	if _, err := s.deps.Store.GetSite(ctx, siteID); err != nil {
		return errorResponse(c, err)
	}
	logged, err := s.deps.Store.ListOutcomes(ctx, siteID, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"actions": logged})
}

// chat handles POST /api/v1/sites/:id/chat.
func (s *Server) chat(c *fiber.Ctx) error {
	if s.deps.Assistant == nil {
		return problemResponse(c, fiber.StatusServiceUnavailable,
			"chat_disabled", "Service Unavailable",
			"No model provider is configured")
	}
	var body ChatBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}

	res, err := s.deps.Assistant.Chat(c.UserContext(), assistant.ChatRequest{
		SiteID:  c.Params("id"),
		History: body.History,
		Message: body.Message,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(res)
}

// listCatalog handles GET /api/v1/catalog.
func (s *Server) listCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"types": s.deps.Catalog.Types()})
}

// getDefaults handles GET /api/v1/catalog/:type.
func (s *Server) getDefaults(c *fiber.Ctx) error {
	return c.JSON(s.deps.Catalog.Lookup(c.Params("type")))
}
