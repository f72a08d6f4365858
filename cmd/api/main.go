package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bingoart/internal/artgen"
	"bingoart/internal/bgremove"
	"bingoart/internal/http/handlers"
	httpapi "bingoart/internal/http/httpapi"
	"bingoart/internal/infra"
	"bingoart/internal/infra/credentials"
	"bingoart/internal/providers/scenario"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.HasScenarioCredentials() && cfg.DatabaseURL != "" {
		loadStoredCredentials(ctx, cfg, logger)
	}
	if !cfg.HasScenarioCredentials() {
		if cfg.RequireCredentials {
			logger.Fatal().Strs("missing", cfg.MissingCredentials()).Msg("scenario credentials are required")
		}
		logger.Warn().Strs("missing", cfg.MissingCredentials()).Msg("scenario credentials not configured; generation endpoints will fail")
	}

	clientLogger := logger.With().Str("component", "scenario").Logger()
	client, err := scenario.NewClient(scenario.Options{
		APIKey:          cfg.ScenarioAPIKey,
		APISecret:       cfg.ScenarioAPISecret,
		BaseURL:         cfg.ScenarioBaseURL,
		PollInterval:    cfg.PollInterval,
		PollTimeout:     cfg.PollTimeout,
		MaxPollAttempts: cfg.PollMaxAttempts,
		Logger:          &clientLogger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build scenario client")
	}

	removerLogger := logger.With().Str("component", "bgremove").Logger()
	remover := bgremove.New(bgremove.Options{
		Authorize: client.Authorize,
		Segmenter: bgremove.NewChromaKey(cfg.ChromaSimilarity, cfg.ChromaBlend),
		Logger:    &removerLogger,
	})

	svc := artgen.NewService(client, remover, artgen.SettingsFromConfig(cfg), &logger)
	router := httpapi.NewRouter(handlers.NewApp(svc, &logger), httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// loadStoredCredentials fills the missing key pair from integration_tokens.
// Lookup failures only warn; the env stays authoritative.
func loadStoredCredentials(ctx context.Context, cfg *infra.Config, logger infra.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("credential database unavailable")
		return
	}
	defer pool.Close()

	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	pair, err := store.ScenarioKeyPair(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load stored scenario credentials")
		return
	}
	if cfg.ScenarioAPIKey == "" {
		cfg.ScenarioAPIKey = strings.TrimSpace(pair.Key)
	}
	if cfg.ScenarioAPISecret == "" {
		cfg.ScenarioAPISecret = strings.TrimSpace(pair.Secret)
	}
	if cfg.HasScenarioCredentials() {
		logger.Info().Msg("scenario credentials loaded from database")
	}
}
