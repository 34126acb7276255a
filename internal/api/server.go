// Package api exposes sites, the chat round trip and onboarding sessions
// over HTTP.
package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/assistant"
	"github.com/p-blackswan/site-agent/internal/health"
	"github.com/p-blackswan/site-agent/internal/metrics"
	"github.com/p-blackswan/site-agent/internal/onboarding"
	"github.com/p-blackswan/site-agent/internal/requestid"
	"github.com/p-blackswan/site-agent/internal/store"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	CORSOrigins string
}

// Deps are the collaborators the handlers use. Assistant may be nil, in
// which case the chat route answers 503.
type Deps struct {
	Store     *store.Store
	Executor  *action.Executor
	Assistant *assistant.Service
	Catalog   onboarding.DefaultsProvider
	Checker   *health.Checker
	Metrics   *metrics.Metrics
}

// Server is the API Fiber application.
type Server struct {
	app    *fiber.App
	deps   Deps
	logger zerolog.Logger
	config ServerConfig
}

// NewServer creates and configures a new API server.
func NewServer(cfg ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "api").Logger()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	if deps.Catalog == nil {
		deps.Catalog = onboarding.BuiltinCatalog()
	}
	if deps.Checker == nil {
		deps.Checker = health.NewChecker(logger)
	}

	s := &Server{app: app, deps: deps, logger: logger, config: cfg}
	s.setupMiddleware(cfg)
	s.setupRoutes()
	return s
}

func isProbe(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

func (s *Server) setupMiddleware(cfg ServerConfig) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(func(c *fiber.Ctx) error {
		reqID := requestid.Ensure(c.Get(requestid.Header))
		c.Set(requestid.Header, reqID)
		c.Locals("request_id", reqID)
		c.SetUserContext(requestid.WithRequestID(c.UserContext(), reqID))
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
		}))
	}

	if cfg.RateLimit.RPS > 0 {
		s.app.Use(NewRateLimitMiddleware(cfg.RateLimit))
	}

	s.app.Use(NewAuthMiddleware(cfg.Auth, s.logger))

	s.app.Use(func(c *fiber.Ctx) error {
		if isProbe(c.Path()) {
			return c.Next()
		}
		err := c.Next()
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("ip", c.IP()).
			Str("request_id", requestid.FromContext(c.UserContext())).
			Msg("api request")
		return err
	})
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", health.LivenessHandler())
	s.app.Get("/readyz", s.deps.Checker.ReadinessHandler())
	if s.deps.Metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.deps.Metrics.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	v1.Post("/sites", s.createSite)
	v1.Get("/sites/:id", s.getSite)
	v1.Delete("/sites/:id", s.deleteSite)
	v1.Post("/sites/:id/validate", s.validateSite)
	v1.Post("/sites/:id/actions", s.applyActions)
	v1.Get("/sites/:id/actions", s.listActions)
	v1.Post("/sites/:id/chat", s.chat)

	v1.Get("/catalog", s.listCatalog)
	v1.Get("/catalog/:type", s.getDefaults)

	v1.Post("/onboarding", s.createSession)
	v1.Get("/onboarding/:id", s.getSession)
	v1.Patch("/onboarding/:id/answers", s.patchAnswers)
	v1.Get("/onboarding/:id/steps/:step", s.startStep)
	v1.Get("/onboarding/:id/questions", s.questions)
	v1.Post("/onboarding/:id/advance", s.advance)
	v1.Post("/onboarding/:id/restart", s.restart)
	v1.Post("/onboarding/:id/confirm", s.confirm)
	v1.Post("/onboarding/:id/generate", s.generate)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("API server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("API server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}
