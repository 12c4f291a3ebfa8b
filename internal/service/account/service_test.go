package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/service/account"
	"github.com/oggyb/cardswap/internal/testutil"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := account.NewAccountService(appCtx)

	u, p, err := svc.Register(ctx, account.RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
		CityCode: "tyo",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.Equal(t, "alice", p.DisplayName)
	assert.Equal(t, "TYO", p.CityCode)

	_, _, err = svc.Register(ctx, account.RegisterInput{Username: "alice", Email: "other@example.com", Password: "12345678"})
	assert.ErrorIs(t, err, svcErr.ErrConflict)
	_, _, err = svc.Register(ctx, account.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	got, err := svc.Authenticate(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := account.NewAccountService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")

	bio, city := "collector", "osa"
	p, err := svc.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{Bio: &bio, CityCode: &city})
	require.NoError(t, err)
	assert.Equal(t, "OSA", p.CityCode)

	d, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "collector", d.Profile.Bio)
	assert.Equal(t, "alice", d.Username)
	assert.Equal(t, domain.TierFree, d.Tier)
	assert.Zero(t, d.RatingCount)

	empty := " "
	_, err = svc.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{DisplayName: &empty})
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestBindPurchaseToken(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := account.NewAccountService(appCtx, account.WithClock(func() time.Time { return now }))
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	expires := now.Add(30 * 24 * time.Hour)

	tier, err := svc.CurrentTier(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier)

	sub, err := svc.BindPurchaseToken(ctx, alice.ID, "tok-1", expires)
	require.NoError(t, err)

	again, err := svc.BindPurchaseToken(ctx, alice.ID, "tok-1", expires)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)

	_, err = svc.BindPurchaseToken(ctx, bob.ID, "tok-1", expires)
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	_, err = svc.BindPurchaseToken(ctx, bob.ID, "tok-old", now.Add(-time.Hour))
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	tier, err = svc.CurrentTier(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPremium, tier)

	tier, err = svc.CurrentTier(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier)
}

func TestNearbySearchQuota(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	now := time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)
	svc := account.NewAccountService(appCtx, account.WithClock(func() time.Time { return now }))
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	testutil.CreateUser(t, appCtx.Store, "carol", "OSA")

	// free tier allows two searches a day in tests
	for want := 1; want >= 0; want-- {
		profiles, q, err := svc.NearbySearch(ctx, alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, bob.ID, profiles[0].UserID)
		assert.Equal(t, want, q.Remaining())
	}

	_, _, err := svc.NearbySearch(ctx, alice.ID, 10)
	assert.ErrorIs(t, err, svcErr.ErrQuotaExceeded)

	remaining, err := svc.SearchRemaining(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	now = now.Add(2 * time.Hour) // next UTC day
	remaining, err = svc.SearchRemaining(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, _, err = svc.NearbySearch(ctx, alice.ID, 10)
	require.NoError(t, err)
}

func TestPremiumRaisesSearchLimit(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := account.NewAccountService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")

	remaining, err := svc.SearchRemaining(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, err = svc.BindPurchaseToken(ctx, alice.ID, "tok-premium", time.Now().Add(time.Hour))
	require.NoError(t, err)

	remaining, err = svc.SearchRemaining(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, appCtx.Config.Quota.PremiumDailySearches, remaining)
}

func TestNearbySearchNeedsCity(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := account.NewAccountService(appCtx)
	nomad := testutil.CreateUser(t, appCtx.Store, "nomad", "")

	_, _, err := svc.NearbySearch(ctx, nomad.ID, 10)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
