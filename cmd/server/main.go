package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/originhub/originhub-api/internal/config"
	"github.com/originhub/originhub-api/internal/database"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/handlers"
	"github.com/originhub/originhub-api/internal/llm"
	"github.com/originhub/originhub-api/internal/logging"
	"github.com/originhub/originhub-api/internal/middleware"
	"github.com/originhub/originhub-api/internal/repository"
	"github.com/originhub/originhub-api/internal/routes"
	"github.com/originhub/originhub-api/internal/search"
	"github.com/originhub/originhub-api/internal/services"
	"github.com/originhub/originhub-api/internal/webhook"
	"gorm.io/gorm"
)

// Delivery ids are kept well past the provider's retry schedule so late
// redeliveries are still recognised.
const webhookRetention = 7 * 24 * time.Hour

func main() {
	// Structured logging (JSON to stdout)
	stdout := logging.Setup(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !logging.SetLevel(cfg.LogLevel) {
		slog.Warn("unknown LOG_LEVEL, keeping info", "level", cfg.LogLevel)
	}

	// Database (degraded mode when it never answers)
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	ready := true
	if err := database.WaitForReady(context.Background(), sqlDB, cfg.DBWaitInterval, cfg.DBWaitTimeout); err != nil {
		ready = false
		slog.Error("starting in degraded mode", "error", err)
	}

	var pgLogHandler atomic.Pointer[logging.PGHandler]
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Migrations, the PG log sink and retention cleanup need the schema, so they
	// start once the database answers.
	startPersistence := func() error {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("database migrated")

		// PostgreSQL log handler (ERROR+ async batch)
		logs := repository.NewSystemLogRepository(db)
		h := logging.NewPGHandler(logs, 5*time.Second)
		pgLogHandler.Store(h)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, h)))

		retention := time.Duration(cfg.LogRetentionDays) * 24 * time.Hour
		go logging.RunCleanup(bgCtx, logs, retention, 24*time.Hour)
		go logging.RunCleanup(bgCtx, repository.NewWebhookEventRepository(db), webhookRetention, 24*time.Hour)
		return nil
	}

	if ready {
		if err := startPersistence(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	} else {
		go func() {
			err := database.RetryUntilReady(bgCtx, sqlDB, cfg.DBWaitInterval, cfg.DBWaitTimeout, startPersistence)
			if err != nil && bgCtx.Err() == nil {
				slog.Error("deferred migration failed", "error", err)
			}
		}()
	}

	// Search index pipeline
	queue, indexer := setupSearch(cfg)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		search.NewWorker(queue, indexer).Run(workerCtx)
	}()

	// Repositories and services
	ideaRepo := repository.NewIdeaRepository(db)
	userRepo := repository.NewUserRepository(db)

	ideasService := services.NewIdeasService(ideaRepo, userRepo, search.NewPublisher(queue))
	commentService := services.NewCommentService(repository.NewCommentRepository(db), ideaRepo)
	userSync := services.NewUserSyncService(userRepo, repository.NewWebhookEventRepository(db))

	completer := llm.NewClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	if !completer.IsAvailable() {
		slog.Info("OPENAI_API_KEY not set, chat uses fallback replies")
	}
	chatService := services.NewChatService(repository.NewChatRepository(db), completer)

	verifier, err := webhook.NewVerifier(cfg.ClerkWebhookSecret)
	if err != nil {
		slog.Error("invalid CLERK_WEBHOOK_SECRET", "error", err)
		os.Exit(1)
	}
	if !verifier.Configured() {
		slog.Warn("CLERK_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, routes.Handlers{
		Health:   handlers.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, db) }),
		Ideas:    handlers.NewIdeasHandler(ideasService),
		Comments: handlers.NewCommentHandler(commentService),
		Chat:     handlers.NewChatHandler(chatService),
		Webhook:  handlers.NewWebhookHandler(verifier, userSync),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "database_ready", ready)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stopWorker()
	<-workerDone
	closeSearch(queue, indexer)

	stopBackground()
	if h := pgLogHandler.Load(); h != nil {
		slog.SetDefault(slog.New(stdout))
		h.Stop()
	}
	sentry.Flush(2 * time.Second)

	closeDB(db)
	slog.Info("server stopped")
}

// setupSearch picks the Redis queue and Meilisearch indexer when configured,
// falling back to an in-process queue and a no-op indexer.
func setupSearch(cfg *config.Config) (search.Queue, search.Indexer) {
	var queue search.Queue = search.NewChannelQueue(1024)
	if cfg.RedisURL != "" {
		rq, err := search.NewRedisQueue(cfg.RedisURL)
		if err != nil {
			slog.Error("redis unavailable, using in-process index queue", "error", err)
		} else {
			queue = rq
			slog.Info("index queue on redis")
		}
	}

	var indexer search.Indexer = search.Noop{}
	if cfg.MeiliURL != "" {
		indexer = search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey)
		slog.Info("search index on meilisearch", "url", cfg.MeiliURL)
	}
	return queue, indexer
}

func closeSearch(queue search.Queue, indexer search.Indexer) {
	if c, ok := queue.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Error("index queue close error", "error", err)
		}
	}
	if m, ok := indexer.(*search.Meili); ok {
		m.Close()
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message, Detail: message})
}
