package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdrop/internal/auth"
	"github.com/MrSnakeDoc/linkdrop/internal/catalog"
	"github.com/MrSnakeDoc/linkdrop/internal/config"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/redis"
	"github.com/MrSnakeDoc/linkdrop/internal/scheduler"
	"github.com/MrSnakeDoc/linkdrop/internal/session"
	"github.com/MrSnakeDoc/linkdrop/internal/stats"
	"github.com/MrSnakeDoc/linkdrop/internal/store/snapshot"
	"github.com/MrSnakeDoc/linkdrop/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *snapshot.Store
	redisClient *goredis.Client
	janitor     *scheduler.ClaimJanitor
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Snapshot store owns all durable state.
	store, err := snapshot.New(cfg.DataFile, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	loggerClient.Info("snapshot store ready", logger.String("path", cfg.DataFile))

	// Optional Redis, claim counters only. The portal runs fine without it.
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, claim counters disabled", logger.Error(err))
			redisClient = nil
		}
	} else {
		loggerClient.Info("redis not configured, claim counters disabled")
	}
	recorder := stats.New(redisClient, loggerClient)

	catalogSvc := catalog.New(store, loggerClient, catalog.WithStats(recorder))

	// Seed the catalog on first boot if a seed file is configured.
	if cfg.SeedFile != "" {
		if err := catalogSvc.Seed(context.Background(), cfg.SeedFile); err != nil {
			loggerClient.Warn("seed import failed",
				logger.String("file", cfg.SeedFile),
				logger.Error(err))
		}
	}

	sessions := session.NewManager(cfg.SessionTTL)
	gate := auth.NewPinGate(cfg.AdminPIN, loggerClient)
	janitor := scheduler.NewClaimJanitor(catalogSvc, loggerClient, cfg.ClaimGCInterval)

	d := deps.Deps{
		Logger:     loggerClient,
		StartTime:  time.Now(),
		Version:    version.Version,
		Commit:     version.Commit,
		BuildDate:  version.BuildDate,
		GoVersion:  version.GoVersion,
		TimeNow:    time.Now,
		TrustProxy: cfg.TrustProxy,
		AdminCIDRs: cfg.AdminCIDRs,
		Catalog:    catalogSvc,
		Sessions:   sessions,
		Gate:       gate,
		Stats:      recorder,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		store:       store,
		redisClient: redisClient,
		janitor:     janitor,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkdrop v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkdrop %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start claim janitor: %w", err)
	}
	a.logger.Info("claim janitor started",
		logger.Duration("interval", a.cfg.ClaimGCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Drain pending snapshot writes before exiting.
	a.store.Close()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("✅ linkdrop stopped cleanly")
	return nil
}
