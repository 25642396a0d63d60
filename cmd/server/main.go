package main

import (
	"context"
	stdlog "log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/auth"
	"github.com/storyboarder/ai-service/internal/client"
	"github.com/storyboarder/ai-service/internal/config"
	"github.com/storyboarder/ai-service/internal/handler"
	"github.com/storyboarder/ai-service/internal/logger"
	"github.com/storyboarder/ai-service/internal/middleware"
	"github.com/storyboarder/ai-service/internal/router"
	"github.com/storyboarder/ai-service/internal/server"
	"github.com/storyboarder/ai-service/internal/service"
	ws "github.com/storyboarder/ai-service/internal/websocket"
	"github.com/storyboarder/ai-service/internal/worker"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		stdlog.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Provider clients
	var (
		geminiText client.TextCompleter
		openaiText client.TextCompleter
		images     client.ImageGenerator
	)
	if cfg.Mock.Providers {
		log.Info("mock providers enabled")
		geminiText = client.MockTextCompleter{}
		openaiText = client.MockTextCompleter{}
		images = client.MockImageGenerator{}
	} else {
		openaiClient := client.NewOpenAIClient(&cfg.OpenAI, log)
		geminiClient, err := client.NewGeminiClient(ctx, &cfg.Gemini, cfg.OpenAI.TextTimeout, log)
		if err != nil {
			log.Fatal("failed to create gemini client", zap.Error(err))
		}
		if !openaiClient.IsConfigured() {
			log.Warn("OPENAI_API_KEY not set, OpenAI calls will fail")
		}
		if !geminiClient.IsConfigured() {
			log.Warn("GEMINI_API_KEY not set, Gemini calls will fail")
		}
		geminiText = geminiClient
		openaiText = openaiClient
		images = openaiClient
	}

	// R2 archiving (optional)
	var archiver service.Archiver
	if cfg.R2.Configured() {
		r2Client, err := client.NewR2Client(ctx, &cfg.R2)
		if err != nil {
			log.Warn("R2 client not initialized, panels keep provider URLs", zap.Error(err))
		} else {
			archiver = service.NewImageArchiver(r2Client, nil)
		}
	} else {
		log.Info("R2 storage not configured, panels keep provider URLs")
	}

	// Service auth (optional)
	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.Enabled {
		var verifier auth.TokenVerifier
		if cfg.Auth.Issuer != "" {
			jwksVerifier, err := auth.NewJWKSVerifier(ctx, auth.JWKSConfig{
				Issuer:   cfg.Auth.Issuer,
				Audience: cfg.Auth.Audience,
				Scope:    cfg.Auth.Scope,
			})
			if err != nil {
				log.Warn("JWKS verifier not initialized", zap.Error(err))
			} else {
				defer jwksVerifier.Close()
				verifier = jwksVerifier
			}
		}
		authMiddleware = middleware.NewAuthMiddleware(verifier, cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	r := router.New(geminiText, openaiText, images, log)
	suggestionService := service.NewShotSuggestionService(r, log)
	panelService := service.NewPanelService(r, archiver, log)

	// Storyboard jobs: Redis + asynq when enabled, in process otherwise
	var (
		redisClient *redis.Client
		store       service.JobStore
		queue       service.Enqueuer
		localQueue  *worker.LocalQueue
		asynqClient *asynq.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis not available", zap.Error(err))
		}
		asynqClient = asynq.NewClient(redisOpt(cfg))
		defer asynqClient.Close()

		store = service.NewRedisJobStore(redisClient)
		queue = asynqClient
	} else {
		log.Info("redis disabled, storyboard jobs run in process")
		localQueue = worker.NewLocalQueue(cfg.Storyboard.WorkerConcurrency, log)
		store = service.NewMemoryJobStore()
		queue = localQueue
	}

	storyboardService := service.NewStoryboardService(store, queue, cfg.Storyboard.MaxRetry, log)
	pipeline := worker.NewPipeline(suggestionService, panelService, cfg.Storyboard.PanelParallelism, cfg.Storyboard.PanelInterval, log)
	storyboardWorker := worker.NewStoryboardWorker(storyboardService, pipeline, hub, log)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeStoryboard, storyboardWorker.ProcessTask)

	var workerServer *asynq.Server
	if localQueue != nil {
		localQueue.SetHandler(mux)
	} else {
		workerServer = newWorkerServer(cfg, log)
		go func() {
			if err := workerServer.Run(mux); err != nil {
				log.Error("asynq worker error", zap.Error(err))
			}
		}()
	}

	validate := handler.NewValidator()
	app := server.New(server.Deps{
		Config:      cfg,
		AI:          handler.NewAIHandler(suggestionService, panelService, validate),
		Storyboards: handler.NewStoryboardHandler(storyboardService, validate),
		Health: handler.NewHealthHandler(map[string]bool{
			"gemini": geminiText.IsConfigured(),
			"openai": openaiText.IsConfigured(),
			"redis":  cfg.Redis.Enabled,
			"r2":     archiver != nil,
			"auth":   authMiddleware != nil,
		}),
		Auth:        authMiddleware,
		RateLimiter: middleware.NewRateLimiter(redisClient, log),
		Hub:         hub,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
	if err := app.Listen(addr); err != nil {
		log.Error("server error", zap.Error(err))
	}

	if workerServer != nil {
		workerServer.Shutdown()
	}
	if localQueue != nil {
		localQueue.Shutdown()
	}
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func newWorkerServer(cfg *config.Config, log *zap.Logger) *asynq.Server {
	asynqLogLevel := asynq.InfoLevel
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug":
		asynqLogLevel = asynq.DebugLevel
	case "warn":
		asynqLogLevel = asynq.WarnLevel
	case "error":
		asynqLogLevel = asynq.ErrorLevel
	}

	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: cfg.Storyboard.WorkerConcurrency,
		Queues: map[string]int{
			service.QueueStoryboard: 1,
		},
		Logger:   log.Named("asynq").Sugar(),
		LogLevel: asynqLogLevel,
	})
}
