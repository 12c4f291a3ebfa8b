package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/cache"
	"github.com/oggyb/cardswap/internal/config"
	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/logger"
	"github.com/oggyb/cardswap/internal/repository"
	"github.com/oggyb/cardswap/internal/server"
	"github.com/oggyb/cardswap/internal/service/account"
	"github.com/oggyb/cardswap/internal/service/board"
	"github.com/oggyb/cardswap/internal/service/card"
	"github.com/oggyb/cardswap/internal/service/messaging"
	"github.com/oggyb/cardswap/internal/service/social"
	"github.com/oggyb/cardswap/internal/service/trade"
	"github.com/oggyb/cardswap/internal/storage"
)

const expirySweepInterval = time.Minute

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	log := logger.InitFromConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	blobs, err := newObjectStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to init object storage", "err", err)
		os.Exit(1)
	}

	appCtx := app.New(cfg, database, repository.NewStore(database), redisCache, blobs, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(appCtx,
		account.NewRegistrar(appCtx),
		card.NewRegistrar(appCtx),
		trade.NewRegistrar(appCtx),
		messaging.NewRegistrar(appCtx),
		board.NewRegistrar(appCtx),
		social.NewRegistrar(appCtx),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.StartHTTPServer(gctx, cfg, router) })
	g.Go(func() error { return server.StartGRPCServer(gctx, appCtx) })
	g.Go(func() error {
		board.NewBoardService(appCtx).RunExpirySweeper(gctx, expirySweepInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newObjectStorage picks the blob store. The memory driver keeps nothing across
// restarts and is meant for local runs without a bucket.
func newObjectStorage(ctx context.Context, cfg *config.Config) (domain.ObjectStorage, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("using in-memory object storage")
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewS3Storage(ctx, cfg)
}
