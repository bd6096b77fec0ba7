package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/common/logger"
	"crewdesk.app/core/common/otel"
	"crewdesk.app/core/core/config"
	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/cache"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/http/middleware"
	httprouter "crewdesk.app/core/internal/http/router"
	"crewdesk.app/core/internal/queue"
	"crewdesk.app/core/internal/service"
	"crewdesk.app/core/internal/storage"
	"crewdesk.app/core/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "crewdesk core starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(id.NodeServer); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	jobProducer := queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())
	defer jobProducer.Close()

	stores := store.NewStores(database.Querier())

	kv := cache.NewRedisKV(redisClient)
	workspaces := cache.NewWorkspaceStore(stores.Workspaces(), kv, cfg.Cache.TTL)
	users := cache.NewUserStore(stores.Users(), kv, cfg.Cache.TTL)

	authzEngine := authz.NewEngine(
		stores.Memberships(),
		stores.Projects(),
		stores.Tasks(),
		users,
		cfg.Comments.EditWindow,
	)

	// Handler order matters: the audit row lands before anything fans out.
	resolver := event.NewResolver(stores.Projects(), stores.Tasks())
	bus := event.NewBus()
	bus.Subscribe(event.NewAuditHandler(resolver, stores.EventLogs()))
	bus.Subscribe(event.NewFanoutHandler(resolver, jobProducer))
	bus.Subscribe(event.NewBroadcastHandler(event.NewRedisPublisher(redisClient)))

	files, err := storage.NewLocalFileStore(cfg.Attachments.DataDir, cfg.Attachments.MaxBytes)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize attachment storage", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(
		workspaces,
		users,
		stores,
		service.NewTxRunner(database),
		authzEngine,
		bus,
		files,
		cfg.Attachments,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}
