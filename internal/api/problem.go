package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/onboarding"
	"github.com/p-blackswan/site-agent/internal/site"
)

// ProblemDetail follows RFC 7807 for error responses.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Missing    []string                `json:"missing,omitempty"`
	Invalid    []onboarding.FieldError `json:"invalid,omitempty"`
	Violations []site.Violation        `json:"violations,omitempty"`
}

// problemResponse returns an RFC 7807 Problem Detail error response.
func problemResponse(c *fiber.Ctx, status int, errType, title, detail string) error {
	return problemJSON(c, ProblemDetail{Type: errType, Title: title, Status: status, Detail: detail})
}

func problemJSON(c *fiber.Ctx, p ProblemDetail) error {
	p.Instance = c.Path()
	return c.Status(p.Status).JSON(p, "application/problem+json")
}

// errorResponse maps domain errors to problem documents.
func errorResponse(c *fiber.Ctx, err error) error {
	var (
		inc     *onboarding.IncompleteError
		invalid *onboarding.InvalidSiteError
	)
	switch {
	case errors.As(err, &inc):
		return problemJSON(c, ProblemDetail{
			Type: "step_incomplete", Title: "Unprocessable Entity", Status: fiber.StatusUnprocessableEntity,
			Detail: err.Error(), Missing: inc.Missing, Invalid: inc.Invalid,
		})
	case errors.As(err, &invalid):
		return problemJSON(c, ProblemDetail{
			Type: "invalid_content", Title: "Unprocessable Entity", Status: fiber.StatusUnprocessableEntity,
			Detail: err.Error(), Violations: invalid.Violations,
		})
	case errors.Is(err, perrors.ErrNotFound):
		return problemResponse(c, fiber.StatusNotFound, "not_found", "Not Found", err.Error())
	case errors.Is(err, perrors.ErrInvalidInput):
		return problemResponse(c, fiber.StatusBadRequest, "invalid_input", "Bad Request", err.Error())
	case errors.Is(err, perrors.ErrInvalidStep):
		return problemResponse(c, fiber.StatusConflict, "invalid_step", "Conflict", err.Error())
	case errors.Is(err, perrors.ErrTransport):
		return problemResponse(c, fiber.StatusBadGateway, "upstream_unavailable", "Bad Gateway",
			"The assistant is unavailable right now. Please try again.")
	}
	return err
}

func badBody(c *fiber.Ctx, err error) error {
	return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request",
		"Invalid request body: "+err.Error())
}

func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		if code == fiber.StatusInternalServerError {
			return problemResponse(c, code, "internal_error", "Internal Server Error", "An internal error occurred")
		}
		return problemResponse(c, code, "http_error", utils.StatusMessage(code), err.Error())
	}
}
