package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/repository"
	"github.com/oggyb/cardswap/internal/testutil"
)

func confirmedCard(t *testing.T, owner string) domain.Card {
	t.Helper()
	c, err := domain.NewCard(owner, "Charizard", "image/png", 1024)
	require.NoError(t, err)
	require.NoError(t, c.ConfirmUpload())
	return c
}

func TestCardListByOwnerPaginates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	cards := store.Repos().Cards

	for i := 0; i < 5; i++ {
		require.NoError(t, cards.Create(ctx, confirmedCard(t, "owner")))
	}
	require.NoError(t, cards.Create(ctx, confirmedCard(t, "someone-else")))

	seen := map[string]bool{}
	var token *string
	pages := 0
	for {
		page, next, err := cards.ListByOwner(ctx, "owner", token, 2)
		require.NoError(t, err)
		for _, c := range page {
			assert.False(t, seen[c.ID], "card %s returned twice", c.ID)
			seen[c.ID] = true
			assert.Equal(t, "owner", c.OwnerID)
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestCardListByOwnerRejectsBadToken(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	bad := "%%%"
	_, _, err := store.Repos().Cards.ListByOwner(context.Background(), "owner", &bad, 10)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestCardStorageUsedSkipsPendingAndTraded(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	cards := store.Repos().Cards

	kept := confirmedCard(t, "o")
	require.NoError(t, cards.Create(ctx, kept))

	pending, err := domain.NewCard("o", "pending", "image/png", 4096)
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, pending))

	gone := confirmedCard(t, "o")
	gone.Status = domain.CardTraded
	require.NoError(t, cards.Create(ctx, gone))

	used, err := cards.StorageUsed(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), used)

	n, err := cards.CountUploadsSince(ctx, "o", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCardGetByIDNotFound(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	_, err := store.Repos().Cards.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestTradeRoundTripAndActiveLookup(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	repos := store.Repos()

	mine := confirmedCard(t, "alice")
	theirs := confirmedCard(t, "bob")
	require.NoError(t, repos.Cards.Create(ctx, mine))
	require.NoError(t, repos.Cards.Create(ctx, theirs))

	trade, err := domain.NewProposedTrade("alice", "bob", []string{mine.ID}, []string{theirs.ID}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repos.Trades.Create(ctx, trade))

	got, err := repos.Trades.GetByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeProposed, got.Status)
	assert.ElementsMatch(t, []string{mine.ID, theirs.ID}, got.CardIDs())

	active, err := repos.Trades.ActiveTradeForCard(ctx, theirs.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, trade.ID, active.ID)

	require.NoError(t, got.Cancel("alice", time.Now().UTC()))
	require.NoError(t, repos.Trades.Update(ctx, got))

	active, err = repos.Trades.ActiveTradeForCard(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	listed, err := repos.Trades.ListForUser(ctx, "bob", domain.TradeCanceled, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotNil(t, listed[0].CanceledAt)
}

func TestThreadPairIsUnique(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	threads := store.Repos().Threads

	first, err := domain.NewMessageThread("u1", "u2")
	require.NoError(t, err)
	require.NoError(t, threads.Create(ctx, first))

	dup, err := domain.NewMessageThread("u2", "u1")
	require.NoError(t, err)
	err = threads.Create(ctx, dup)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	found, err := threads.FindByPair(ctx, "u2", "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	none, err := threads.FindByPair(ctx, "u1", "u3")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestThreadMessagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	threads := store.Repos().Threads

	th, err := domain.NewMessageThread("u1", "u2")
	require.NoError(t, err)
	require.NoError(t, threads.Create(ctx, th))

	for _, body := range []string{"one", "two", "three"} {
		m, err := domain.NewThreadMessage(th.ID, "u1", body)
		require.NoError(t, err)
		_, err = threads.AppendMessage(ctx, m)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, next, err := threads.ListMessages(ctx, th.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Body)
	require.NotNil(t, next)

	rest, next, err := threads.ListMessages(ctx, th.ID, next, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "one", rest[0].Body)
	assert.Nil(t, next)
}

func TestPendingRequestFoundInEitherDirection(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	requests := store.Repos().Requests

	req, err := domain.NewMessageRequest("u1", "u2", "hi")
	require.NoError(t, err)
	require.NoError(t, requests.Create(ctx, req))

	found, err := requests.FindPendingBetween(ctx, "u2", "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, req.ID, found.ID)

	require.NoError(t, found.Decline("u2", time.Now().UTC()))
	require.NoError(t, requests.Update(ctx, *found))

	found, err = requests.FindPendingBetween(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPostFeedsAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	posts := store.Repos().Posts
	now := time.Now().UTC()

	global, err := domain.NewPost(domain.NewPostInput{
		OwnerID: "o", Scope: domain.ScopeGlobal, Category: domain.CategoryWanted, Title: "WTB",
	}, now, time.Hour)
	require.NoError(t, err)
	city, err := domain.NewPost(domain.NewPostInput{
		OwnerID: "o", Scope: domain.ScopeCity, CityCode: "osa", Category: domain.CategoryMeetup, Title: "meet",
	}, now, time.Minute)
	require.NoError(t, err)
	require.NoError(t, posts.Create(ctx, global))
	require.NoError(t, posts.Create(ctx, city))

	feed, _, err := posts.ListOpen(ctx, domain.PostFilter{Scope: domain.ScopeCity, CityCode: "OSA", Now: now}, nil, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, city.ID, feed[0].ID)

	later := now.Add(2 * time.Minute)
	feed, _, err = posts.ListOpen(ctx, domain.PostFilter{Scope: domain.ScopeCity, CityCode: "OSA", Now: later}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, feed)

	n, err := posts.ExpireDue(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := posts.GetByID(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostExpired, got.Status)

	feed, _, err = posts.ListOpen(ctx, domain.PostFilter{Scope: domain.ScopeGlobal, Now: later}, nil, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, global.ID, feed[0].ID)
}

func TestLikeDuplicateHitsPrimaryKey(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	likes := store.Repos().Likes

	require.NoError(t, likes.Create(ctx, "p1", "u1"))
	err := likes.Create(ctx, "p1", "u1")
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	require.NoError(t, likes.Create(ctx, "p1", "u2"))
	n, err := likes.Count(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, likes.Delete(ctx, "p1", "u1"))
	ok, err := likes.Exists(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchQuotaIncrementUpserts(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	quotas := store.Repos().SearchQuotas

	n, err := quotas.Count(ctx, "u1", "2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for want := 1; want <= 3; want++ {
		got, err := quotas.Increment(ctx, "u1", "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	n, err = quotas.Count(ctx, "u1", "2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a new day starts from zero")
}

func TestSubscriptionTokenIsUnique(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	subs := store.Repos().Subscriptions
	now := time.Now().UTC()

	s, err := domain.NewSubscription("u1", "tok-1", now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, subs.Create(ctx, s))

	other, err := domain.NewSubscription("u2", "tok-1", now.Add(24*time.Hour))
	require.NoError(t, err)
	err = subs.Create(ctx, other)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	active, err := subs.ActiveFor(ctx, "u1", now)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "tok-1", active.PurchaseToken)

	active, err = subs.ActiveFor(ctx, "u1", now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	card := confirmedCard(t, "o")

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(r domain.Repositories) error {
		if err := r.Cards.Create(ctx, card); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repos().Cards.GetByID(ctx, card.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestUsersAndProfilesInCity(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	users := store.Repos().Users

	for _, name := range []string{"alice", "bob", "carol"} {
		u, err := domain.NewUser(name, name+"@example.com", "hash")
		require.NoError(t, err)
		city := "TYO"
		if name == "carol" {
			city = "OSA"
		}
		require.NoError(t, users.Create(ctx, u, domain.Profile{UserID: u.ID, DisplayName: name, CityCode: city}))
	}

	alice, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	dupe, err := domain.NewUser("alice", "other@example.com", "hash")
	require.NoError(t, err)
	err = users.Create(ctx, dupe, domain.Profile{UserID: dupe.ID, DisplayName: "x"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	near, err := users.ListProfilesInCity(ctx, "TYO", alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "bob", near[0].DisplayName)
}
