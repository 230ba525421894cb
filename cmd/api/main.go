package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amarfts/ph-scheduler/internal/auth"
	"github.com/amarfts/ph-scheduler/internal/duty"
	"github.com/amarfts/ph-scheduler/internal/facebook"
	"github.com/amarfts/ph-scheduler/internal/geocode"
	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	"github.com/amarfts/ph-scheduler/internal/http/router"
	"github.com/amarfts/ph-scheduler/internal/notifier"
	"github.com/amarfts/ph-scheduler/internal/pharmacies"
	"github.com/amarfts/ph-scheduler/internal/posts"
	postservice "github.com/amarfts/ph-scheduler/internal/posts/service"
	"github.com/amarfts/ph-scheduler/internal/raster"
	"github.com/amarfts/ph-scheduler/internal/scheduler"
	"github.com/amarfts/ph-scheduler/internal/storage"
	"github.com/amarfts/ph-scheduler/internal/tokens"
	"github.com/amarfts/ph-scheduler/migrations"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/db"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/logger"
	"github.com/amarfts/ph-scheduler/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Infrastructure

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	imageStore, err := storage.NewMinIOStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize image storage", "error", err)
		panic("failed to initialize image storage: " + err.Error())
	}
	log.Info("image storage initialized", "bucket", cfg.RosterImageBucket)

	dutyClient := duty.NewClient(cfg, log)
	resolver := duty.NewResolver(dutyClient, dutyClient, log)
	geocoder := geocode.NewService(cfg, log)
	converter := raster.NewConverter(cfg, log)
	graphClient := facebook.NewClient(cfg, log)

	// Domain modules

	authModule := auth.NewModule(pool, cfg, val, log)
	pharmacyModule := pharmacies.NewModule(pool, val, log)

	var tokenSource postservice.TokenSource
	var tokenModule *tokens.Module
	if cfg.TokenVaultKey != "" {
		vault, err := tokens.NewVault(pool, cfg, log)
		if err != nil {
			log.Error("failed to initialize token vault", "error", err)
			panic("failed to initialize token vault: " + err.Error())
		}
		tokenSource = vault
		tokenModule = tokens.NewModule(vault, val)
	} else {
		log.Warn("TOKEN_VAULT_KEY not configured; duty token vault disabled")
	}

	postsModule := posts.NewModule(posts.Deps{
		Pool:       pool,
		Pharmacies: pharmacyModule.Repository(),
		Geocoder:   geocoder,
		Resolver:   resolver,
		Raster:     converter,
		Images:     imageStore,
		Platform:   graphClient,
		Tokens:     tokenSource,
		Bus:        eventBus,
		Validator:  val,
		Log:        log,
	})

	notifier.New(cfg, log).Register(eventBus)

	modules := []apphttp.Module{
		authModule,
		pharmacyModule,
		postsModule,
	}
	if tokenModule != nil {
		modules = append(modules, tokenModule)
	}

	if cfg.RedisURL != "" {
		queueClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() {
			_ = queueClient.Close()
		}()
		modules = append(modules, scheduler.NewModule(queueClient, val))
	} else {
		log.Warn("REDIS_URL not configured; queued generation runs disabled")
	}

	// HTTP layer

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}
