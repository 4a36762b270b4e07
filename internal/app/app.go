package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/medigo/backend/internal/advice"
	"github.com/medigo/backend/internal/config"
	"github.com/medigo/backend/internal/event"
	handler "github.com/medigo/backend/internal/handler/http"
	"github.com/medigo/backend/internal/repository/postgres"
	redisrepo "github.com/medigo/backend/internal/repository/redis"
	"github.com/medigo/backend/internal/service"
	"github.com/medigo/backend/migrations"
	"github.com/medigo/backend/pkg/database"
	"github.com/medigo/backend/pkg/health"
	"github.com/medigo/backend/pkg/httpclient"
	pkgkafka "github.com/medigo/backend/pkg/kafka"
	"github.com/medigo/backend/pkg/middleware"
	"github.com/medigo/backend/pkg/tracing"
)

// Version is reported in traces and the startup log.
const Version = "0.1.0"

// App wires together all dependencies and runs the MediGo backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	db             *pgxpool.Pool
	producer       *pkgkafka.Producer
	shutdownTracer func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// A store that cannot be reached fails startup.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.shutdownTracer, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Redis holds the cart documents and the cart locks.
	a.rdb, err = database.NewRedisClient(ctx, database.RedisConfig{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPass,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// PostgreSQL holds users and bookings.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.DBHost
	pgCfg.Port = cfg.DBPort
	pgCfg.User = cfg.DBUser
	pgCfg.Password = cfg.DBPassword
	pgCfg.DBName = cfg.DBName
	pgCfg.SSLMode = cfg.DBSSLMode
	pgCfg.MaxConns = cfg.DBMaxConns
	if pgCfg.MinConns > pgCfg.MaxConns {
		pgCfg.MinConns = pgCfg.MaxConns
	}

	a.db, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.DBHost),
		slog.String("database", cfg.DBName),
	)

	if err := database.RunMigrations(ctx, a.db, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	for _, c := range []prometheus.Collector{
		database.NewRedisPoolCollector(a.rdb),
		database.NewPostgresPoolCollector(a.db),
	} {
		if err := prometheus.Register(c); err != nil {
			logger.Warn("failed to register pool collector", slog.String("error", err.Error()))
		}
	}

	// Kafka producer. The writer connects lazily, so an unreachable broker
	// only degrades readiness.
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	eventProducer := event.NewProducer(a.producer, logger)

	var locker service.Locker
	switch cfg.CartLockBackend {
	case config.LockBackendLocal:
		locker = service.NewKeyedMutex()
	default:
		locker = redisrepo.NewLocker(a.rdb, cfg.CartLockTTL, 10*time.Millisecond, logger)
	}
	logger.Info("cart lock configured",
		slog.String("backend", cfg.CartLockBackend),
		slog.Duration("wait", cfg.CartLockWait),
	)

	cartService := service.NewCartService(redisrepo.NewCartStore(a.rdb), locker, eventProducer, logger, cfg.CartLockWait)
	userService := service.NewUserService(postgres.NewUserRepository(a.db), eventProducer, logger)
	bookingService := service.NewBookingService(
		postgres.NewConsultationRepository(a.db),
		postgres.NewLabBookingRepository(a.db),
		logger,
	)

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.ChatModelTimeout
	clientCfg.MaxRetries = cfg.ChatMaxRetries
	adviceDoer := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("advice-model"),
		logger,
	)
	adviceClient := advice.NewClient(adviceDoer, cfg.ChatModelURL, cfg.ChatModelToken, logger)
	if cfg.ChatModelToken == "" {
		logger.Warn("HUGGINGFACE_API_TOKEN is not set; chat requests will likely be rejected upstream")
	}

	// Health checks.
	rdb, db, producer := a.rdb, a.db, a.producer
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return db.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.Services{
		Cart:     cartService,
		Users:    userService,
		Bookings: bookingService,
		Advisor:  adviceClient,
	}, healthHandler, logger, handler.RouterOptions{
		ServiceName:    cfg.ServiceName,
		CORS:           cors,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RequestTimeout: cfg.RequestTimeout,
		ChatRateLimit: middleware.RateLimitConfig{
			RPS:        cfg.ChatRateRPS,
			Burst:      cfg.ChatRateBurst,
			TrustProxy: cfg.TrustProxy,
		},
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

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
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

// close releases every initialized store connection. It tolerates a
// partially constructed App.
func (a *App) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
