// Package testutil wires throwaway infrastructure for package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/cache"
	"github.com/oggyb/cardswap/internal/config"
	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/repository"
	"github.com/oggyb/cardswap/internal/storage"
)

var dbSeq atomic.Int64

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	database, err := db.Open(sqlite.Open(dsn), logger.Discard)
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewRedis starts a miniredis server and returns a cache bound to it.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// Config returns defaults suitable for service tests.
func Config() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Storage.Bucket = "cards-test"
	cfg.Storage.PresignTTL = 15 * time.Minute
	cfg.Quota.FreeDailyUploads = 3
	cfg.Quota.PremiumDailyUploads = 100
	cfg.Quota.FreeStorageBytes = 1 << 20
	cfg.Quota.PremiumStorageBytes = 1 << 30
	cfg.Quota.FreeDailySearches = 2
	cfg.Quota.PremiumDailySearches = 50
	cfg.Quota.PostLifetime = 30 * 24 * time.Hour
	cfg.Quota.MaxUploadSizeBytes = 512 << 10
	return cfg
}

// NewApp assembles an AppContext over SQLite, miniredis and in-memory storage.
func NewApp(t *testing.T) (*app.AppContext, *storage.MemoryStorage) {
	t.Helper()
	database := NewDB(t)
	rc, _ := NewRedis(t)
	blobs := storage.NewMemoryStorage()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.New(Config(), database, repository.NewStore(database), rc, blobs, log), blobs
}

// Ctx is a background context cancelled when the test ends.
func Ctx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// CreateUser stores a user with a profile in city and returns it.
func CreateUser(t *testing.T, store domain.Store, username, city string) domain.User {
	t.Helper()
	u, err := domain.NewUser(username, username+"@example.com", "not-a-real-hash")
	require.NoError(t, err)
	require.NoError(t, store.Repos().Users.Create(context.Background(), u, domain.Profile{
		UserID:      u.ID,
		DisplayName: username,
		CityCode:    city,
	}))
	return u
}

// CreateCard stores a confirmed, available card owned by ownerID.
func CreateCard(t *testing.T, store domain.Store, ownerID string) domain.Card {
	t.Helper()
	c, err := domain.NewCard(ownerID, "Card of "+ownerID, "image/png", 2048)
	require.NoError(t, err)
	require.NoError(t, c.ConfirmUpload())
	require.NoError(t, store.Repos().Cards.Create(context.Background(), c))
	return c
}
