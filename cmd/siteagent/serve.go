package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/api"
	"github.com/p-blackswan/site-agent/internal/assistant"
	"github.com/p-blackswan/site-agent/internal/config"
	"github.com/p-blackswan/site-agent/internal/health"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/metrics"
	"github.com/p-blackswan/site-agent/internal/onboarding"
	"github.com/p-blackswan/site-agent/internal/retry"
	"github.com/p-blackswan/site-agent/internal/store"
)

const retentionInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Loads configuration from the environment, opens the SQLite store and serves the site and onboarding API until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Environment, cfg.LogLevel)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("http_addr", cfg.HTTPAddr).
		Str("auth_mode", cfg.AuthMode).
		Bool("llm_enabled", cfg.LLMEnabled()).
		Msg("starting site agent")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	catalog := onboarding.BuiltinCatalog()
	if cfg.DefaultsCatalog != "" {
		catalog, err = onboarding.LoadCatalog(cfg.DefaultsCatalog)
		if err != nil {
			return err
		}
		logger.Info().Str("path", cfg.DefaultsCatalog).Strs("types", catalog.Types()).Msg("Loaded defaults catalog")
	}

	m := metrics.New()
	defaults := cfg.StyleDefaults()
	exec := action.NewExecutor(action.DefaultRegistry(defaults), logger, action.WithRecorder(m))

	checker := health.NewChecker(logger)
	checker.Register("sqlite", health.PingCheck(st))

	var svc *assistant.Service
	if cfg.LLMEnabled() {
		provider := llm.NewAnthropicProvider(cfg.AnthropicAPIKey,
			llm.WithModel(cfg.AnthropicModel),
			llm.WithMaxTokens(cfg.LLMMaxTokens),
			llm.WithLogger(logger),
		)
		rc := retry.DefaultConfig()
		rc.MaxAttempts = cfg.LLMRetries
		svc = assistant.NewService(provider, st, exec, logger,
			assistant.WithActionLog(st),
			assistant.WithRoundTripRecorder(m),
			assistant.WithRetry(rc),
			assistant.WithTimeout(cfg.LLMTimeout),
			assistant.WithTemperature(cfg.LLMTemperature),
			assistant.WithHistoryLimit(cfg.HistoryLimit),
			assistant.WithStyleDefaults(defaults),
		)
		logger.Info().Str("model", provider.ModelID()).Msg("Model provider initialized")
	} else {
		logger.Info().Msg("ANTHROPIC_API_KEY not set, chat endpoint disabled")
	}

	srv := api.NewServer(api.ServerConfig{
		ListenAddr:  cfg.HTTPAddr,
		Auth:        api.AuthConfig{Mode: cfg.AuthMode, APIKey: cfg.APIKey, JWTSecret: cfg.JWTSecret},
		RateLimit:   api.RateLimitConfig{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		CORSOrigins: strings.Join(cfg.CORSOriginList(), ","),
	}, api.Deps{
		Store:     st,
		Executor:  exec,
		Assistant: svc,
		Catalog:   catalog,
		Checker:   checker,
		Metrics:   m,
	}, logger)

	go runRetention(ctx, st, m, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("API server shutdown failed")
	}
	return nil
}

func runRetention(ctx context.Context, st *store.Store, m *metrics.Metrics, logger zerolog.Logger) {
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.RunRetention(ctx); err != nil {
				m.RecordError("store", "retention")
				logger.Warn().Err(err).Msg("retention pass failed")
				continue
			}
			if size, err := st.DBSizeBytes(); err == nil {
				logger.Debug().Int64("db_bytes", size).Msg("retention pass done")
			}
		}
	}
}

