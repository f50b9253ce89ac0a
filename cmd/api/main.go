package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/msclatvia/wellbeing-backend/internal/adapters/primary/http"
	mw "github.com/msclatvia/wellbeing-backend/internal/adapters/primary/http/middleware"
	"github.com/msclatvia/wellbeing-backend/internal/adapters/primary/websocket"
	"github.com/msclatvia/wellbeing-backend/internal/adapters/secondary/csvstore"
	"github.com/msclatvia/wellbeing-backend/internal/adapters/secondary/gsheets"
	"github.com/msclatvia/wellbeing-backend/internal/adapters/secondary/storecache"
	"github.com/msclatvia/wellbeing-backend/internal/config"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
	"github.com/msclatvia/wellbeing-backend/internal/core/services"
	"github.com/msclatvia/wellbeing-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Response Store (Secondary Adapter)
	ctx := context.Background()
	var store ports.ResponseRepository
	switch cfg.Store.Backend {
	case config.StoreBackendSheets:
		store, err = gsheets.New(ctx, gsheets.Config{
			SpreadsheetID:   cfg.Store.SpreadsheetID,
			Worksheet:       cfg.Store.Worksheet,
			CredentialsFile: cfg.Store.CredentialsFile,
		})
		if err != nil {
			logger.Error("failed to initialize sheets store", "error", err)
			os.Exit(1)
		}
	default:
		store = csvstore.New(cfg.Store.CSVPath)
	}

	if err := store.Ping(ctx); err != nil {
		logger.Error("response store ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("response store ready", "backend", cfg.Store.Backend)

	// Reads go through a short-lived cache so dashboard fan-out does not
	// hammer the backing store.
	cachedStore := storecache.Wrap(store, cfg.Store.StaleAfter)

	// 4. Initialize Real-time Hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// 5. Initialize Rate Limiters
	var generalRateLimiter, submitRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		submitRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.SubmitRPS,
			BurstSize:         cfg.RateLimit.SubmitBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Services (Core)
	surveyService := services.NewSurveyService(cachedStore, hub, logger)
	dashboardService := services.NewDashboardService(cachedStore, logger)
	exportService := services.NewExportService(cachedStore, logger)

	// Handlers (Primary Adapters)
	surveyHandler := httpAdapter.NewSurveyHandler(surveyService, errorHandler, logger)
	questionHandler := httpAdapter.NewQuestionHandler()
	dashboardHandler := httpAdapter.NewDashboardHandler(dashboardService, errorHandler, logger)
	exportHandler := httpAdapter.NewExportHandler(exportService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(cachedStore, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
		MaxAge:         cfg.CORS.MaxAge,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Submission route with stricter rate limiting
		r.Group(func(r chi.Router) {
			if submitRateLimiter != nil {
				r.Use(submitRateLimiter.Middleware)
			}
			r.Route("/responses", surveyHandler.RegisterRoutes)
		})

		r.Route("/questions", questionHandler.RegisterRoutes)
		r.Route("/dashboard", dashboardHandler.RegisterRoutes)
		r.Route("/export", exportHandler.RegisterRoutes)

		// WebSocket route for dashboard refresh events
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
