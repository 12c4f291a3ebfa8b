package app

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/cache"
	"github.com/oggyb/cardswap/internal/config"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/logger"
)

// AppContext is the dependency bag handed to every service constructor.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	Store      domain.Store
	RedisCache *cache.RedisCache
	Storage    domain.ObjectStorage
	Logger     *slog.Logger
}

func New(cfg *config.Config, db *gorm.DB, store domain.Store, rdb *cache.RedisCache, blobs domain.ObjectStorage, log *slog.Logger) *AppContext {
	if log == nil {
		log = logger.L()
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		Store:      store,
		RedisCache: rdb,
		Storage:    blobs,
		Logger:     log,
	}
}

// Log returns the request-scoped logger carried by ctx, falling back to
// the service logger outside of a request.
func (a *AppContext) Log(ctx context.Context) *slog.Logger {
	return logger.FromContextOr(ctx, a.Logger)
}
