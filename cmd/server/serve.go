package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobtrack-ai/jobtrack-api/internal/config"
	"github.com/jobtrack-ai/jobtrack-api/internal/handler"
	"github.com/jobtrack-ai/jobtrack-api/internal/middleware"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
	"github.com/jobtrack-ai/jobtrack-api/internal/server"
	"github.com/jobtrack-ai/jobtrack-api/internal/service"
	"github.com/jobtrack-ai/jobtrack-api/internal/storage"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting JobTrack API")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ─────────────────────────────────────────
	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Error().Err(err).Msg("Failed to apply schema")
		return err
	}
	log.Info().Msg("Database connected")

	// ── Storage ──────────────────────────────────────────
	files, closeFiles, err := newFileStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize resume storage")
		return err
	}
	defer closeFiles()

	// ── Repositories ─────────────────────────────────────
	userRepo := repository.NewUserRepo(pool)
	appRepo := repository.NewApplicationRepo(pool)
	resumeRepo := repository.NewResumeRepo(pool)

	// ── Services ─────────────────────────────────────────
	gen, err := service.NewGenerator(ctx, service.AIOptions{
		Provider:      cfg.AIProvider,
		GroqAPIKey:    cfg.GroqAPIKey,
		GroqBaseURL:   cfg.GroqBaseURL,
		GroqModel:     cfg.GroqModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		ClaudeAPIKey:  cfg.ClaudeAPIKey,
		ClaudeBaseURL: cfg.ClaudeBaseURL,
		ClaudeModel:   cfg.ClaudeModel,
		Timeout:       cfg.AITimeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize AI provider")
		return err
	}
	if gen == nil {
		log.Warn().Str("provider", cfg.AIProvider).Msg("No AI API key configured, extraction and matching will use fallbacks")
	}

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens, service.LogMailer{}, service.AuthOptions{
		RequireEmailVerification: cfg.RequireEmailVerification,
		AppBaseURL:               cfg.AppBaseURL,
	})
	extractor := service.NewExtractor(gen)
	matchService := service.NewResumeMatchService(resumeRepo, appRepo, files, service.NewMatcher(gen))

	// ── Middleware ────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	defer rateLimiter.Stop()

	// ── Router ───────────────────────────────────────────
	r := server.NewRouter(
		server.Options{
			Env:            cfg.Env,
			AllowedOrigins: cfg.AllowedOrigins,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		server.Handlers{
			Auth:         handler.NewAuthHandler(authService),
			Applications: handler.NewApplicationHandler(appRepo),
			Extract:      handler.NewExtractHandler(extractor),
			Resumes:      handler.NewResumeHandler(resumeRepo, files, matchService, cfg.MaxUploadBytes),
		},
		middleware.NewAuthMiddleware(tokens),
		rateLimiter,
	)

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().Str("port", cfg.Port).Msg("JobTrack API server running")

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

// newFileStore picks Cloud Storage when a bucket is configured, local disk otherwise
func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, func(), error) {
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.StorageBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("bucket", cfg.StorageBucket).Msg("Storing resumes in Cloud Storage")
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close storage client")
			}
		}, nil
	}

	local, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("dir", cfg.UploadDir).Msg("Storing resumes on local disk")
	return local, func() {}, nil
}
