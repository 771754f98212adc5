package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mindwell/internal/auth"
	"mindwell/internal/config"
	"mindwell/internal/db"
	"mindwell/internal/escalation"
	"mindwell/internal/events"
	"mindwell/internal/handlers"
	"mindwell/internal/insights"
	"mindwell/internal/llm"
	"mindwell/internal/middleware"
	"mindwell/internal/realtime"
	"mindwell/internal/router"
	"mindwell/internal/sentiment"
	"mindwell/internal/state"
	"mindwell/internal/validator"
	"mindwell/internal/workers"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	authService, err := auth.NewService(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init auth")
	}

	hub := realtime.NewHub()
	sentimentAnalyzer := sentiment.NewAnalyzer()
	stateManager := state.NewManager(redisClient, logger)
	escalationManager := escalation.NewManager(cfg.DefaultRegion, cfg.HandoffURL, logger)
	responseValidator := validator.New()
	insightsAnalyzer := insights.NewAnalyzer()

	llmStore := llm.NewStore(store, cfg.MasterKey)
	llmFactory := llm.NewFactory()
	llmRouter := llm.NewRouter(llmFactory, llmStore, sentimentAnalyzer)
	llmService := llm.NewService(llmRouter, llmStore)
	queue := llm.NewQueue(redisClient)
	workerScheduler := llm.NewWorkerScheduler(queue, llmService, store, hub)
	healthMonitor := &llm.HealthMonitor{Router: llmRouter, Store: llmStore}
	healthScheduler := llm.NewHealthScheduler(healthMonitor)

	pool := workers.NewPool(4, logger)
	publisher := events.NewPublisher(splitBrokers(cfg.KafkaBrokers), cfg.CrisisTopic, logger)

	api := &handlers.API{
		Store:           store,
		Auth:            authService,
		Hub:             hub,
		State:           stateManager,
		Sentiment:       sentimentAnalyzer,
		Escalation:      escalationManager,
		Validator:       responseValidator,
		Insights:        insightsAnalyzer,
		LLM:             llmService,
		LLMStore:        llmStore,
		Queue:           queue,
		WorkerScheduler: workerScheduler,
		HealthScheduler: healthScheduler,
		Pool:            pool,
		Events:          publisher,
		Log:             logger,
		DefaultRegion:   cfg.DefaultRegion,
	}

	limiter := middleware.NewRateLimiter(60, time.Minute)
	rt := router.New(api, authService, limiter, cfg.FrontendOrigin, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rt,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	pool.Stop()
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close event publisher")
	}
}

func splitBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
