// The worker binary consumes queued generation runs from Redis. A single
// instance is expected; the queue is drained with concurrency 1.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amarfts/ph-scheduler/internal/duty"
	"github.com/amarfts/ph-scheduler/internal/facebook"
	"github.com/amarfts/ph-scheduler/internal/geocode"
	"github.com/amarfts/ph-scheduler/internal/notifier"
	"github.com/amarfts/ph-scheduler/internal/pharmacies"
	"github.com/amarfts/ph-scheduler/internal/posts"
	postservice "github.com/amarfts/ph-scheduler/internal/posts/service"
	"github.com/amarfts/ph-scheduler/internal/raster"
	"github.com/amarfts/ph-scheduler/internal/scheduler"
	"github.com/amarfts/ph-scheduler/internal/storage"
	"github.com/amarfts/ph-scheduler/internal/tokens"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/db"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/logger"
	"github.com/amarfts/ph-scheduler/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	imageStore, err := storage.NewMinIOStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize image storage", "error", err)
		panic("failed to initialize image storage: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	notifier.New(cfg, log).Register(eventBus)

	dutyClient := duty.NewClient(cfg, log)
	pharmacyModule := pharmacies.NewModule(pool, validator.New(), log)

	var tokenSource postservice.TokenSource
	if cfg.TokenVaultKey != "" {
		vault, err := tokens.NewVault(pool, cfg, log)
		if err != nil {
			log.Error("failed to initialize token vault", "error", err)
			panic("failed to initialize token vault: " + err.Error())
		}
		tokenSource = vault
	}

	postsModule := posts.NewModule(posts.Deps{
		Pool:       pool,
		Pharmacies: pharmacyModule.Repository(),
		Geocoder:   geocode.NewService(cfg, log),
		Resolver:   duty.NewResolver(dutyClient, dutyClient, log),
		Raster:     raster.NewConverter(cfg, log),
		Images:     imageStore,
		Platform:   facebook.NewClient(cfg, log),
		Tokens:     tokenSource,
		Bus:        eventBus,
		Validator:  validator.New(),
		Log:        log,
	})

	worker, err := scheduler.NewWorker(cfg, postsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received, stopping worker")
		worker.Shutdown()
	}()

	if err := worker.Run(); err != nil {
		log.Error("worker error", "error", err)
		panic("worker error: " + err.Error())
	}
}
