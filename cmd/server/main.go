package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/cardboard/internal/api"
	"github.com/mcoot/cardboard/internal/config"
	"github.com/mcoot/cardboard/internal/factory"
	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/realtime"
	"github.com/mcoot/cardboard/internal/services/policy"
	redisstorage "github.com/mcoot/cardboard/internal/storage/redis"
	"github.com/mcoot/cardboard/internal/telemetry"
)

const hubCleanupInterval = time.Minute

func main() {
	// Load configuration from environment
	env, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, env.OTelEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	// Build factory config
	rt := realtime.DefaultConfig()
	rt.MessageRate = env.MessageRate
	rt.MessageBurst = env.MessageBurst
	rt.AllowedOrigin = env.AllowedOrigin

	cfg := factory.Config{
		Logger:           logger,
		ArchiveType:      env.Archive,
		PolicyConfig:     policy.Config{BcryptCost: env.BcryptCost},
		DefaultSessionID: model.SessionID(env.DefaultSession),
		Realtime:         rt,
	}

	// Configure Redis if the archive lives there
	if env.Archive == config.ArchiveRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		redisCfg.ArchiveTTL = env.ArchiveTTL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close error", slog.String("error", err.Error()))
		}
	}()

	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()
	go app.Engine.Run(engineCtx)
	go app.HubManager.RunCleanup(engineCtx, hubCleanupInterval)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		Engine:        app.Engine,
		Websocket:     app.Websocket,
		Metrics:       metrics.Handler(app.MetricsRegistry),
		AllowedOrigin: env.AllowedOrigin,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = env.Host
	serverConfig.Port = env.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.HubManager.CloseAll)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("archive", env.Archive),
		slog.String("default_session", env.DefaultSession),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			stopEngine()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	stopEngine()
	logger.Info("server stopped")
}
