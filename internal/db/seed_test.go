package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/testutil"
)

func TestSeedTestData(t *testing.T) {
	database := testutil.NewDB(t)
	require.NoError(t, db.SeedTestData(database))

	var users, profiles, cards, posts int64
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	require.NoError(t, database.Model(&db.Profile{}).Count(&profiles).Error)
	require.NoError(t, database.Model(&db.Card{}).Count(&cards).Error)
	require.NoError(t, database.Model(&db.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(20), users)
	assert.Equal(t, int64(20), profiles)
	assert.Equal(t, int64(40), cards)
	assert.Equal(t, int64(20), posts)

	// reseeding starts from scratch
	require.NoError(t, db.SeedMinimalTestData(database))
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	require.NoError(t, database.Model(&db.Card{}).Count(&cards).Error)
	assert.Equal(t, int64(3), users)
	assert.Zero(t, cards)
}
