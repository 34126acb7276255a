package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/onboarding"
	"github.com/p-blackswan/site-agent/internal/store"
)

// SessionResponse is the view of an onboarding session returned by every
// session route.
type SessionResponse struct {
	ID        string                `json:"id"`
	Step      onboarding.Step       `json:"step"`
	Answers   map[string]any        `json:"answers"`
	Questions []onboarding.Question `json:"questions"`
}

// AnswersRequest is the body of POST /onboarding and PATCH .../answers.
type AnswersRequest struct {
	Answers map[string]any `json:"answers"`
}

// GenerateResponse reports the site created from a session.
type GenerateResponse struct {
	Site     *store.Site      `json:"site"`
	Outcomes []action.Outcome `json:"outcomes"`
}

func (s *Server) orchestratorOptions() []onboarding.Option {
	if s.deps.Metrics == nil {
		return nil
	}
	return []onboarding.Option{onboarding.WithTransitionRecorder(s.deps.Metrics)}
}

func (s *Server) loadOrchestrator(c *fiber.Ctx) (*onboarding.Orchestrator, error) {
	sess, err := s.deps.Store.LoadSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	return onboarding.Restore(sess.State, s.deps.Catalog, s.orchestratorOptions()...)
}

func (s *Server) saveAndRespond(c *fiber.Ctx, id string, o *onboarding.Orchestrator, status int) error {
	if err := s.deps.Store.SaveSession(c.UserContext(), id, o.State()); err != nil {
		return err
	}
	st := o.State()
	return c.Status(status).JSON(SessionResponse{
		ID:        id,
		Step:      st.Step,
		Answers:   st.Answers,
		Questions: o.RequiredQuestions(),
	})
}

// createSession handles POST /api/v1/onboarding. The body is optional.
func (s *Server) createSession(c *fiber.Ctx) error {
	var req AnswersRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
	}
	o := onboarding.New(s.deps.Catalog, s.orchestratorOptions()...)
	o.Answer(req.Answers)
	return s.saveAndRespond(c, uuid.NewString(), o, fiber.StatusCreated)
}

// getSession handles GET /api/v1/onboarding/:id.
func (s *Server) getSession(c *fiber.Ctx) error {
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	st := o.State()
	return c.JSON(SessionResponse{ID: c.Params("id"), Step: st.Step, Answers: st.Answers, Questions: o.RequiredQuestions()})
}

// patchAnswers handles PATCH /api/v1/onboarding/:id/answers.
func (s *Server) patchAnswers(c *fiber.Ctx) error {
	var req AnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	o.Answer(req.Answers)
	return s.saveAndRespond(c, c.Params("id"), o, fiber.StatusOK)
}

// startStep handles GET /api/v1/onboarding/:id/steps/:step.
func (s *Server) startStep(c *fiber.Ctx) error {
	step, err := onboarding.ParseStep(c.Params("step"))
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_step", "Bad Request", err.Error())
	}
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(o.StartStep(step))
}

// questions handles GET /api/v1/onboarding/:id/questions.
func (s *Server) questions(c *fiber.Ctx) error {
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"step": o.Step(), "questions": o.RequiredQuestions()})
}

// advance handles POST /api/v1/onboarding/:id/advance.
func (s *Server) advance(c *fiber.Ctx) error {
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if _, err := o.Advance(); err != nil {
		return errorResponse(c, err)
	}
	return s.saveAndRespond(c, c.Params("id"), o, fiber.StatusOK)
}

// restart handles POST /api/v1/onboarding/:id/restart.
func (s *Server) restart(c *fiber.Ctx) error {
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	o.EditRestart()
	return s.saveAndRespond(c, c.Params("id"), o, fiber.StatusOK)
}

// confirm handles POST /api/v1/onboarding/:id/confirm.
func (s *Server) confirm(c *fiber.Ctx) error {
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := o.Confirm(); err != nil {
		return errorResponse(c, err)
	}
	return s.saveAndRespond(c, c.Params("id"), o, fiber.StatusOK)
}

// generate handles POST /api/v1/onboarding/:id/generate. The session is
// discarded once the site exists.
func (s *Server) generate(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	o, err := s.loadOrchestrator(c)
	if err != nil {
		return errorResponse(c, err)
	}

	model, outcomes, err := o.Generate(s.deps.Executor)
	if err != nil {
		return errorResponse(c, err)
	}
	profile, err := o.Profile()
	if err != nil {
		return err
	}

	created, err := s.deps.Store.CreateSite(ctx, profile.BusinessName, model)
	if err != nil {
		return err
	}
	if err := s.deps.Store.RecordOutcomes(ctx, created.ID, requestIDOf(c), outcomes); err != nil {
		s.logger.Warn().Err(err).Str("site_id", created.ID).Msg("Failed to record generation outcomes")
	}
	if err := s.deps.Store.DeleteSession(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to discard onboarding session")
	}

	s.logger.Info().Str("session_id", id).Str("site_id", created.ID).Int("sections", len(model.Sections)).Msg("Site generated from onboarding")
	return c.Status(fiber.StatusCreated).JSON(GenerateResponse{Site: created, Outcomes: outcomes})
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}
