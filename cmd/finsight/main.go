package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"

	"finsight/internal/auth"
	"finsight/internal/backend"
	"finsight/internal/cache"
	"finsight/internal/config"
	"finsight/internal/extract"
	apphttp "finsight/internal/http"
	"finsight/internal/insight"
	"finsight/internal/llm"
	"finsight/internal/log"
	"finsight/internal/widget"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var fbApp *firebase.App
	if backend.NeedsFirebase(cfg) {
		var err error
		fbApp, err = backend.NewFirebaseApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize Firebase", "error", err, "project_id", cfg.FirebaseProjectID)
			os.Exit(1)
		}
	}

	var verifier auth.TokenVerifier
	switch cfg.AuthMode {
	case "static":
		verifier = auth.ParseStatic(cfg.StaticTokens)
		logger.Warn("Static token authentication enabled; do not use in production")
	default:
		v, err := auth.NewFirebaseVerifier(ctx, fbApp)
		if err != nil {
			logger.Error("Failed to initialize token verifier", "error", err)
			os.Exit(1)
		}
		verifier = v
	}

	backendCfg, err := backend.FromAppConfig(cfg, fbApp)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	var (
		insights  *insight.Service
		extractor *extract.Extractor
		board     *widget.Board
	)
	cacheManager := cache.NewManager(logger)
	if cfg.GeminiAPIKey != "" {
		gen, err := llm.NewClient(ctx, llm.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			logger.Error("Failed to initialize text generation client", "error", err)
			os.Exit(1)
		}
		insights = insight.NewService(gen, cfg.AITimeout)
		extractor = extract.New(gen, cfg.AITimeout)
		board = widget.NewBoard(widget.Config{
			MaxUsers: cfg.WidgetMaxUsers,
			TTL:      cfg.WidgetTTL,
			Timeout:  cfg.AITimeout,
		}, result.Reports.InsightLoader(insights), log.WithComponent(logger, log.ComponentWidget))
		cacheManager.Register(board.Cache())
		cacheManager.StartCleanup(5 * time.Minute)
		logger.Info("AI features enabled", log.FieldModel, cfg.GeminiModel)
	} else {
		logger.Info("AI features disabled - no GEMINI_API_KEY provided")
	}
	defer cacheManager.Stop()

	var ready func(ctx context.Context) error
	if result.SQLite != nil {
		ready = result.SQLite.Ping
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Records:             result.Records,
		Reports:             result.Reports,
		Verifier:            verifier,
		Insight:             insights,
		Extractor:           extractor,
		Board:               board,
		Logger:              logger,
		Ready:               ready,
		AIRequestsPerMinute: cfg.AIRateLimit,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		CORSOrigins:         cfg.CORSOrigins,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = cfg.AITimeout + 30*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting finsight server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"auth_mode", cfg.AuthMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	if board != nil {
		board.Wait()
	}
	logger.Info("Server stopped gracefully")
}
