package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/config"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/storage"
)

var (
	_ domain.ObjectStorage = (*storage.S3Storage)(nil)
	_ domain.ObjectStorage = (*storage.MemoryStorage)(nil)
)

func TestMemoryStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemoryStorage()

	ok, err := m.Exists(ctx, "cards/u/1")
	require.NoError(t, err)
	assert.False(t, ok)

	m.Put("cards/u/1", 10)
	ok, err = m.Exists(ctx, "cards/u/1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Delete(ctx, "cards/u/1"))
	ok, _ = m.Exists(ctx, "cards/u/1")
	assert.False(t, ok)
	assert.Equal(t, []string{"cards/u/1"}, m.Deleted())
}

func TestS3PresignIsOffline(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Endpoint = "http://127.0.0.1:9000"
	cfg.Storage.Region = "us-east-1"
	cfg.Storage.Bucket = "cards"
	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"
	cfg.Storage.PresignTTL = 5 * time.Minute

	s, err := storage.NewS3Storage(context.Background(), cfg)
	require.NoError(t, err)

	put, err := s.PresignUpload(context.Background(), "cards/u/1", "image/png", 42)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(put, "http://127.0.0.1:9000/cards/cards/u/1?"), put)
	assert.Contains(t, put, "X-Amz-Expires=300")

	get, err := s.PresignDownload(context.Background(), "cards/u/1")
	require.NoError(t, err)
	assert.Contains(t, get, "X-Amz-Signature=")
}
