package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/Blurjp/pathavana/app/db"
	appLogger "github.com/Blurjp/pathavana/app/logger"
	"github.com/Blurjp/pathavana/app/observability/metrics"
	"github.com/Blurjp/pathavana/app/tracer"
	"github.com/Blurjp/pathavana/config"
	"github.com/Blurjp/pathavana/internal/api/auth"
	generativeAI "github.com/Blurjp/pathavana/internal/api/generative_ai"
	"github.com/Blurjp/pathavana/internal/api/hints"
	"github.com/Blurjp/pathavana/internal/api/itinerary"
	"github.com/Blurjp/pathavana/internal/api/session"
	"github.com/Blurjp/pathavana/internal/router"
)

// @title           Pathavana API
// @version         1.0
// @description     Conversational travel planning: sessions, hint pipeline, itineraries.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Assistant LLM ---
	var aiClient generativeAI.AssistantClient
	aiClient, err = generativeAI.NewAIClient(ctx, cfg.Gemini.Model)
	if err != nil {
		logger.Warn("Gemini client unavailable, chat replies will use template fallbacks", slog.Any("error", err))
		aiClient = generativeAI.NewDisabledClient(err.Error())
	}

	// --- Hint pipeline ---
	kb := hints.NewDestinationKB()
	pipeline := hints.NewPipeline(
		hints.NewEntityExtractor(kb, logger),
		hints.NewStateTracker(),
		hints.NewGenerator(kb, logger, cfg.Assistant.MaxHints, nil),
		logger,
	)

	// --- Repositories, services, handlers ---
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewServiceImpl(authRepo, cfg.JWT, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	sessionRepo := session.NewPostgresRepository(pool, logger)
	sessionService := session.NewService(sessionRepo, pipeline, aiClient, metrics.Get(), cfg.Assistant.SessionTTL, logger)
	sessionHandler := session.NewHandlerImpl(sessionService, logger)

	itineraryRepo := itinerary.NewPostgresRepository(pool, logger)
	itineraryService := itinerary.NewService(itineraryRepo, sessionService, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)

	// Background sweep of sessions past their TTL.
	go expireSessionsLoop(ctx, sessionRepo, logger)

	// --- Router ---
	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		SessionHandler:         sessionHandler,
		ItineraryHandler:       itineraryHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	// --- HTTP server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	logger.Info("Application shut down complete.")
}

// expireSessionsLoop flips active sessions past expires_at to expired every
// few minutes until shutdown.
func expireSessionsLoop(ctx context.Context, repo session.Repository, logger *slog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := repo.ExpireSessions(ctx)
			if err != nil {
				logger.Warn("Session expiry sweep failed", slog.Any("error", err))
				continue
			}
			if count > 0 {
				logger.Info("Expired idle travel sessions", slog.Int64("count", count))
			}
		}
	}
}

// setupLogger configures the application logger per run mode.
func setupLogger(mode string) *slog.Logger {
	var logger *slog.Logger
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
