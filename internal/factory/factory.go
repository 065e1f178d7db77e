package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/jukebox/internal/config"
	"github.com/mcoot/jukebox/internal/dependencies/clock"
	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/seed"
	"github.com/mcoot/jukebox/internal/services/accounts"
	"github.com/mcoot/jukebox/internal/services/catalog"
	"github.com/mcoot/jukebox/internal/services/dayclock"
	"github.com/mcoot/jukebox/internal/services/kiosk"
	"github.com/mcoot/jukebox/internal/services/persistence"
	"github.com/mcoot/jukebox/internal/services/playback"
	"github.com/mcoot/jukebox/internal/services/queue"
	"github.com/mcoot/jukebox/internal/services/reset"
	"github.com/mcoot/jukebox/internal/storage"
	filestorage "github.com/mcoot/jukebox/internal/storage/file"
	"github.com/mcoot/jukebox/internal/storage/memory"
	redisstorage "github.com/mcoot/jukebox/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Observability; Registry is nil when metrics are disabled
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// Services
	Broadcaster *reset.Broadcaster
	Accounts    *accounts.Store
	Catalog     *catalog.Catalog
	Day         *dayclock.Boundary
	Authorizer  *playback.Authorizer
	Queue       *queue.Queue
	Gateway     *persistence.Gateway
	Kiosk       *kiosk.Kiosk

	discarded bool
}

// Config holds configuration for the application factory
type Config struct {
	// DailyAllowanceSeconds is granted to every account each day.
	// If zero, model.DefaultDailyAllowance is used
	DailyAllowanceSeconds int
	// Accounts and Catalog are the seed state. If nil, the built-in lists are used
	Accounts []seed.Account
	Catalog  []seed.Track
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("file", "memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// StoragePath is the snapshot directory (required if StorageType is "file")
	StoragePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SealPassphrase seals snapshots at rest when set
	SealPassphrase string
	// MetricsEnabled registers counters with a fresh Prometheus registry
	MetricsEnabled bool
}

// FromConfig maps loaded configuration onto a factory Config
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	out := Config{
		DailyAllowanceSeconds: cfg.Jukebox.DailyAllowanceSeconds,
		Accounts:              cfg.Jukebox.Accounts,
		Catalog:               cfg.Jukebox.Catalog,
		Logger:                logger,
		StorageType:           cfg.Storage.Type,
		StoragePath:           cfg.Storage.Path,
		SealPassphrase:        cfg.Storage.SealPassphrase,
		MetricsEnabled:        cfg.Metrics.Enabled,
	}
	if cfg.Storage.Type == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		if cfg.Storage.RedisKeyPrefix != "" {
			redisCfg.KeyPrefix = cfg.Storage.RedisKeyPrefix
		}
		out.RedisConfig = &redisCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeFile:
		fileStore, err := filestorage.New(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'file', 'memory' or 'redis'", storageType)
	}

	app, err := newWithDependencies(store, clock.New(), cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	allowance := cfg.DailyAllowanceSeconds
	if allowance == 0 {
		allowance = model.DefaultDailyAllowance
	}
	accountSeed := cfg.Accounts
	if accountSeed == nil {
		accountSeed = seed.DefaultAccounts()
	}
	catalogSeed := cfg.Catalog
	if catalogSeed == nil {
		catalogSeed = seed.DefaultCatalog()
	}

	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
	}
	var registerer prometheus.Registerer
	if registry != nil {
		registerer = registry
	}
	m := metrics.New(registerer)

	var sealer persistence.Sealer
	if cfg.SealPassphrase != "" {
		sealer = persistence.NewSecretboxSealer(cfg.SealPassphrase)
	}

	// Shared by every component that reads or writes daily counters
	counters := &sync.RWMutex{}

	// Create services
	broadcaster := reset.New(counters, m, logger)
	accountStore, err := accounts.New(seed.BuildAccounts(accountSeed, allowance), broadcaster, m, logger)
	if err != nil {
		return nil, err
	}
	trackCatalog, err := catalog.New(seed.BuildTracks(catalogSeed), broadcaster, logger)
	if err != nil {
		return nil, err
	}
	day := dayclock.New(clk, logger)
	authorizer := playback.New(counters, m, logger)
	playQueue := queue.New(logger)
	gateway := persistence.New(store, persistence.Stores{
		Accounts: accountStore,
		Catalog:  trackCatalog,
		Day:      day,
		Queue:    playQueue,
	}, counters, sealer, clk, m, logger)
	kioskService := kiosk.New(accountStore, trackCatalog, day, broadcaster, authorizer, playQueue, gateway, counters, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Registry:    registry,
		Metrics:     m,
		Logger:      logger,
		Broadcaster: broadcaster,
		Accounts:    accountStore,
		Catalog:     trackCatalog,
		Day:         day,
		Authorizer:  authorizer,
		Queue:       playQueue,
		Gateway:     gateway,
		Kiosk:       kioskService,
	}, nil
}

// Restore loads the last snapshot. Sub-stores that cannot be restored keep
// their seed state; the failure is logged and never fatal.
func (a *App) Restore(ctx context.Context) persistence.RestoreReport {
	report, err := a.Kiosk.RestoreAll(ctx)
	switch {
	case report.Fresh():
		a.Logger.Info("no saved state, starting fresh")
	case err != nil:
		a.Logger.Warn("some state could not be restored, using defaults",
			slog.Any("restored", report.Restored),
			slog.Any("error", err),
		)
	}
	return report
}

// Discard deletes the saved state so the next start is fresh.
// Close then skips its final save.
func (a *App) Discard(ctx context.Context) error {
	if err := a.Gateway.DiscardAll(ctx); err != nil {
		return err
	}
	a.discarded = true
	return nil
}

// Close saves a final snapshot and releases storage
func (a *App) Close(ctx context.Context) error {
	if a.discarded {
		return a.Storage.Close()
	}
	saveErr := a.Kiosk.SnapshotAll(ctx)
	return errors.Join(saveErr, a.Storage.Close())
}
