// Package app wires configuration into a runnable HTTP service: the chosen
// metadata backend, object storage, eventing and the router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Geeks-Solutions/exmedias/internal/config"
	"github.com/Geeks-Solutions/exmedias/internal/event"
	handler "github.com/Geeks-Solutions/exmedias/internal/handler/http"
	"github.com/Geeks-Solutions/exmedias/internal/repository"
	"github.com/Geeks-Solutions/exmedias/internal/repository/mongodb"
	"github.com/Geeks-Solutions/exmedias/internal/repository/postgres"
	"github.com/Geeks-Solutions/exmedias/internal/service"
	"github.com/Geeks-Solutions/exmedias/internal/storage"
	"github.com/Geeks-Solutions/exmedias/internal/storage/memory"
	s3storage "github.com/Geeks-Solutions/exmedias/internal/storage/s3"
	"github.com/Geeks-Solutions/exmedias/internal/youtube"
	"github.com/Geeks-Solutions/exmedias/migrations"
	"github.com/Geeks-Solutions/exmedias/pkg/database"
	"github.com/Geeks-Solutions/exmedias/pkg/health"
	"github.com/Geeks-Solutions/exmedias/pkg/httpclient"
	pkgkafka "github.com/Geeks-Solutions/exmedias/pkg/kafka"
	"github.com/Geeks-Solutions/exmedias/pkg/tracing"
)

// App wires together all dependencies and runs the media library service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	mongoClient    *mongo.Client
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "exmedias",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	app.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	mediaRepo, platformRepo, err := app.initBackend(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	store, err := app.initStorage(ctx)
	if err != nil {
		app.closeBackend()
		return nil, err
	}

	var producer *event.Producer
	if cfg.KafkaEnabled() {
		kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		app.producer = kafkaProducer
		producer = event.NewProducer(kafkaProducer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

		idemStore := app.initIdempotencyStore(ctx)
		app.consumer = event.NewContentDeletedConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaConsumerGroup,
			Topic:   event.TopicContentDeleted,
		}, mediaRepo, idemStore, logger)

		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	var metadata service.VideoMetadata
	if cfg.YouTubeAPIKey != "" {
		base := httpclient.New(httpclient.DefaultConfig())
		cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("youtube"), logger)
		metadata = youtube.New(cb, cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, logger)
	}

	mediaService := service.NewMediaService(mediaRepo, platformRepo, store, producer, metadata, logger)
	platformService := service.NewPlatformService(platformRepo, logger)

	router := handler.NewRouter(mediaService, platformService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// initBackend connects the configured metadata backend and returns its
// repositories.
func (a *App) initBackend(ctx context.Context, healthHandler *health.Handler) (repository.MediaRepository, repository.PlatformRepository, error) {
	switch a.cfg.Backend {
	case config.BackendPostgres:
		pgCfg := database.PostgresConfig{
			Host:            a.cfg.PostgresHost,
			Port:            a.cfg.PostgresPort,
			User:            a.cfg.PostgresUser,
			Password:        a.cfg.PostgresPass,
			DBName:          a.cfg.PostgresDB,
			SSLMode:         a.cfg.PostgresSSL,
			MaxConns:        25,
			MinConns:        5,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		}

		pool, err := database.NewPostgresPool(ctx, &pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", a.cfg.PostgresHost),
			slog.String("database", a.cfg.PostgresDB),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}

		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		return postgres.NewMediaRepository(pool), postgres.NewPlatformRepository(pool), nil

	case config.BackendMongo:
		db, err := database.NewMongoDatabase(ctx, database.DefaultMongoConfig(a.cfg.MongoURI, a.cfg.MongoDB))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		a.mongoClient = db.Client()
		a.logger.Info("connected to MongoDB",
			slog.String("database", a.cfg.MongoDB),
		)

		healthHandler.Register("mongo", func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		})

		return mongodb.NewMediaRepository(db), mongodb.NewPlatformRepository(db), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", a.cfg.Backend)
	}
}

// initStorage builds the configured object store.
func (a *App) initStorage(ctx context.Context) (storage.Storage, error) {
	switch a.cfg.ObjectStore {
	case config.ObjectStoreS3:
		store, err := s3storage.New(ctx, s3storage.Config{
			Endpoint:  a.cfg.S3Endpoint,
			Region:    a.cfg.S3Region,
			Bucket:    a.cfg.S3Bucket,
			AccessKey: a.cfg.S3AccessKey,
			SecretKey: a.cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return store, nil
	default:
		return memory.New(a.cfg.AssetBaseURL), nil
	}
}

// initIdempotencyStore picks redis when reachable, falling back to the
// in-memory store for single-instance deployments.
func (a *App) initIdempotencyStore(ctx context.Context) pkgkafka.IdempotencyStore {
	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     a.cfg.RedisHost,
		Port:     a.cfg.RedisPort,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory idempotency store",
			slog.String("error", err.Error()),
		)
		return pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
	}
	return pkgkafka.NewRedisIdempotencyStore(client, "exmedias", 24*time.Hour)
}

// closeBackend releases whichever backend connection was opened.
func (a *App) closeBackend() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.mongoClient != nil {
		_ = a.mongoClient.Disconnect(context.Background())
	}
}

// Run starts the HTTP server and the event consumer, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("consumer stopped with error", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.closeBackend()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
