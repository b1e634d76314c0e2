package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/api/router"
	appconfig "github.com/douggil74/busy-preacher-mvp-sub000/internal/config"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/guidance"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/moderation"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/notify"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/observability/metrics"
	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting busy-preacher guidance API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Moderation store: postgres in deployed environments, in-memory in dev.
	var modStore moderation.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(context.Background()); err != nil {
			logger.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		modStore = moderation.NewPostgresStore(db)
	} else {
		logger.Warn("no DATABASE_URL set, moderation log kept in memory")
		modStore = moderation.NewMemoryStore()
	}

	// Session history: redis when configured, otherwise caller-supplied only.
	var historyStore guidance.HistoryStore = guidance.NoopHistoryStore{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		historyStore = guidance.NewRedisHistoryStore(redisClient, nil)
	}

	// Generation: OpenAI primary with optional Gemini fallback.
	primary, err := guidance.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		logger.Error("failed to create openai client", "error", err)
		os.Exit(1)
	}
	var llm guidance.LLMClient = primary
	if cfg.GeminiAPIKey != "" {
		gemini, err := guidance.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		llm = guidance.NewFallbackLLMClient(primary, gemini, logger)
	}

	var sender notify.Sender
	if sg := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("no SENDGRID_API_KEY set, escalation alerts go to the log only")
		sender = notify.NewLogSender(logger)
	}

	dispatcher := notify.NewDispatcher(sender, modStore, notify.DispatcherConfig{
		Recipient: cfg.PastorEmail,
		BaseURL:   cfg.PublicBaseURL,
	}, logger)

	retriever := guidance.NewHTTPSermonRetriever(
		cfg.SermonSearchURL,
		cfg.SermonSearchLimit,
		cfg.SermonSearchThreshold,
		cfg.SermonSearchTimeout,
		logger,
	)
	if !retriever.Enabled() {
		logger.Warn("no SERMON_SEARCH_URL set, replies run without sermon context")
	}

	registry := prometheus.NewRegistry()
	guidanceMetrics := metrics.NewGuidanceMetrics(registry)

	svc, err := guidance.NewService(guidance.ServiceOptions{
		LLM:               llm,
		Retriever:         retriever,
		Alerter:           dispatcher,
		History:           historyStore,
		Metrics:           guidanceMetrics,
		Logger:            logger,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		logger.Error("failed to build guidance service", "error", err)
		os.Exit(1)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		GuidanceHandler:    guidance.NewHandler(svc, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight escalation emails and moderation inserts finish.
	dispatcher.Wait()

	logger.Info("server stopped")
}
