package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/freelance-match/internal/db"
	"github.com/senyabanana/freelance-match/internal/events"
	"github.com/senyabanana/freelance-match/internal/handlers"
	"github.com/senyabanana/freelance-match/internal/lock"
	"github.com/senyabanana/freelance-match/internal/repository"
	"github.com/senyabanana/freelance-match/internal/router"
	"github.com/senyabanana/freelance-match/internal/router/config"
	"github.com/senyabanana/freelance-match/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("cannot load config", zap.Error(err))
	}

	deps := services.Deps{Logger: logger}
	var readiness []handlers.ReadinessCheck

	switch cfg.StorageDriver {
	case config.PostgresDriver:
		runDBMigration(cfg.MigrationURL, cfg.PostgresConn, logger)

		dbPool, err := db.InitDb(cfg, logger)
		if err != nil {
			logger.Fatal("error initializing database", zap.Error(err))
		}
		defer dbPool.Close()
		deps.Store = repository.NewPostgresStore(dbPool)
		readiness = append(readiness, handlers.ReadinessCheck{Name: "db", Check: dbPool.Ping})
	case config.MemoryDriver:
		logger.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		if cfg.MemorySeed != "" {
			if err := store.LoadMemorySeed(cfg.MemorySeed); err != nil {
				logger.Fatal("cannot load memory seed", zap.Error(err))
			}
			logger.Info("memory store seeded", zap.String("path", cfg.MemorySeed))
		}
		deps.Store = store
	}

	if cfg.RedisAddr != "" {
		rdb := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		deps.Locker = lock.NewRedisLocker(rdb, cfg.AcceptLockTTL, logger)
		readiness = append(readiness, handlers.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("accept lock backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		deps.Locker = lock.NewLocalLocker()
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("event publishing disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			deps.Events = publisher
			readiness = append(readiness, handlers.ReadinessCheck{Name: "mq", Check: func(context.Context) error {
				if !publisher.IsConnected() {
					return errors.New("rabbitmq connection is closed")
				}
				return nil
			}})
		}
	}

	projectService := services.NewProjectService(deps)
	proposalService := services.NewProposalService(deps)
	reviewService := services.NewReviewService(deps)
	recommendationService := services.NewRecommendationService(deps)

	routes := router.InitRoutes(router.Handlers{
		Projects:  handlers.NewProjectHandler(projectService, recommendationService, logger, cfg.RequestTimeout),
		Proposals: handlers.NewProposalHandler(proposalService, logger, cfg.RequestTimeout),
		Reviews:   handlers.NewReviewHandler(reviewService, logger, cfg.RequestTimeout),
		Readiness: readiness,
	}, cfg.JWTSecret, logger)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server is listening", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runDBMigration(migrationURL string, dbSource string, logger *zap.Logger) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.Fatal("cannot create a new migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("failed to run migrate up", zap.Error(err))
	}
	logger.Info("db migrated successfully")
}
