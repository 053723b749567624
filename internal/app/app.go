package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/file"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

const redisKeyPrefix = "storefront:"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *goredis.Client
	producer       *pkgkafka.Producer
	registry       *screen.Registry
	store          *wishlist.Store
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	// stopRouter ends background work owned by the router.
	stopRouter context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// The wish list is loaded from storage before NewApp returns, so no request
// is ever served against an unloaded list.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	healthHandler := health.NewHandler()

	// Wish-list storage backend.
	kv, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Optional change notifications.
	var opts []wishlist.Option
	if cfg.WishListWriteTimeout > 0 {
		opts = append(opts, wishlist.WithWriteTimeout(cfg.WishListWriteTimeout))
	}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := a.producer.Ping(ctx); err != nil {
			logger.Warn("kafka unreachable, continuing without change notifications until it recovers",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		opts = append(opts,
			wishlist.WithPublisher(event.NewProducer(a.producer, cfg.WishListKey, logger)),
			wishlist.WithPublishTimeout(cfg.KafkaPublishTimeout),
		)

		producer := a.producer
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	// Load the wish list before accepting requests.
	a.store = wishlist.NewStore(kv, cfg.WishListKey, logger, opts...)
	a.store.Load(ctx)

	// Remote catalog client.
	catalogCfg := catalog.Config{URL: cfg.CatalogURL, Timeout: cfg.CatalogTimeout}
	if cfg.CatalogBreakerEnabled {
		cb := httpclient.DefaultCircuitBreakerConfig("catalog")
		cb.MaxRequests = cfg.CBMaxRequests
		cb.Interval = time.Duration(cfg.CBInterval) * time.Second
		cb.Timeout = time.Duration(cfg.CBTimeout) * time.Second
		cb.FailureRatio = cfg.CBFailureRatio
		cb.MinRequests = cfg.CBMinRequests
		catalogCfg.Breaker = &cb
	}
	catalogClient := catalog.NewClient(catalog.NewDoer(catalogCfg, logger), cfg.CatalogURL, logger)

	// Listing screens.
	store := a.store
	a.registry = screen.NewRegistry(func() *screen.Listing {
		return screen.NewListing(catalogClient, store, logger)
	}, cfg.ListingIdleTTL, logger)

	// HTTP router.
	routerCtx, stopRouter := context.WithCancel(context.Background())
	a.stopRouter = stopRouter
	router := handler.NewRouter(routerCtx, a.registry, a.store, healthHandler, logger, handler.RouterConfig{
		Environment:    cfg.Environment,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStorage connects the configured key-value backend and registers its
// health check.
func (a *App) openStorage(ctx context.Context, h *health.Handler) (repository.KeyValueStore, error) {
	cfg := a.cfg

	switch cfg.WishListStorage {
	case config.StorageMemory:
		a.logger.Warn("using in-memory wish-list storage, the wish list will not survive a restart")
		return memory.New(), nil

	case config.StorageRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)

		store := redisrepo.New(rdb, redisKeyPrefix)
		h.RegisterCritical("redis", store.Ping)
		return store, nil

	case config.StoragePostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPass
		pgCfg.DBName = cfg.PostgresDB
		pgCfg.SSLMode = cfg.PostgresSSL

		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		database.RegisterPoolMetrics(pool, "storefront")

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")

		store := postgres.New(pool)
		h.RegisterCritical("postgres", store.Ping)
		return store, nil

	default:
		store, err := file.New(cfg.WishListDataDir)
		if err != nil {
			return nil, fmt.Errorf("open wish-list data dir: %w", err)
		}
		a.logger.Info("using file wish-list storage", slog.String("dir", cfg.WishListDataDir))

		h.RegisterCritical("storage", store.Ping)
		return store, nil
	}
}

// Run starts the HTTP server and the listing sweeper, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.registry.Run(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Pending wish-list notifications
// 4. Kafka producer, storage connections
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if a.stopRouter != nil {
		a.stopRouter()
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Let queued change notifications reach the producer before it closes.
	if a.store != nil {
		a.store.Wait()
	}

	// 4. Producer and storage.
	errs = append(errs, a.closeResources()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeResources() []error {
	var errs []error

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errs
}
