package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/cardboard/internal/dependencies/clock"
	"github.com/mcoot/cardboard/internal/dependencies/random"
	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/realtime"
	"github.com/mcoot/cardboard/internal/services/engine"
	"github.com/mcoot/cardboard/internal/services/policy"
	"github.com/mcoot/cardboard/internal/services/registry"
	"github.com/mcoot/cardboard/internal/services/turn"
	"github.com/mcoot/cardboard/internal/storage"
	"github.com/mcoot/cardboard/internal/storage/memory"
	redisstorage "github.com/mcoot/cardboard/internal/storage/redis"
)

// Archive type constants
const (
	ArchiveTypeMemory = "memory"
	ArchiveTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Sessions storage.SessionStore
	Archive  storage.CardArchive

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	UUID   uuid.UUID

	// Services
	Registry *registry.Controller
	Turns    *turn.Controller
	Policy   *policy.Service
	Engine   *engine.Engine

	// Transport
	HubManager *realtime.HubManager
	Websocket  *realtime.Handler

	// Metrics
	MetricsRegistry *prometheus.Registry
	Metrics         *metrics.Collector

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// ArchiveType selects where saved cards go ("memory" or "redis")
	// If empty, defaults to "memory"
	ArchiveType string
	// RedisConfig holds Redis connection settings (required if ArchiveType is "redis")
	RedisConfig *redisstorage.Config
	// PolicyConfig holds configuration for password hashing (optional)
	PolicyConfig policy.Config
	// DefaultSessionID names the fallback session (optional)
	DefaultSessionID model.SessionID
	// Realtime holds websocket transport settings (optional)
	Realtime realtime.Config
}

// New creates a new application with all dependencies wired.
// Call Engine.Run to start processing and Close when done.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Sessions always live in memory; only the card archive is pluggable
	sessions := memory.New()

	var archive storage.CardArchive
	var closers []io.Closer
	archiveType := cfg.ArchiveType
	if archiveType == "" {
		archiveType = ArchiveTypeMemory
	}

	switch archiveType {
	case ArchiveTypeMemory:
		archive = sessions
	case ArchiveTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when ArchiveType is redis")
		}
		redisArchive, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		archive = redisArchive
		closers = append(closers, redisArchive)
	default:
		return nil, errors.New("invalid ArchiveType: must be 'memory' or 'redis'")
	}

	app := newWithDependencies(sessions, archive, clock.New(), random.New(), uuid.New(), cfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	sessions storage.SessionStore,
	archive storage.CardArchive,
	clk clock.Clock,
	rnd random.Random,
	ids uuid.UUID,
	cfg Config,
	logger *slog.Logger,
) *App {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	registryController := registry.NewController(sessions, clk, rnd, cfg.DefaultSessionID, logger)
	turnController := turn.NewController(clk, logger)
	policyService := policy.New(cfg.PolicyConfig)
	hubManager := realtime.NewHubManager(collector, logger)

	eng := engine.New(engine.Deps{
		Registry:  registryController,
		Turns:     turnController,
		Policy:    policyService,
		Archive:   archive,
		Publisher: hubManager,
		Clock:     clk,
		Recorder:  collector,
		Logger:    logger,
	})

	return &App{
		Sessions:        sessions,
		Archive:         archive,
		Clock:           clk,
		Random:          rnd,
		UUID:            ids,
		Registry:        registryController,
		Turns:           turnController,
		Policy:          policyService,
		Engine:          eng,
		HubManager:      hubManager,
		Websocket:       realtime.NewHandler(eng, hubManager, ids, collector, cfg.Realtime, logger),
		MetricsRegistry: reg,
		Metrics:         collector,
	}
}

// Close releases external connections held by the app
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
