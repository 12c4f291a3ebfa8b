package social_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/service/social"
	"github.com/oggyb/cardswap/internal/service/trade"
	"github.com/oggyb/cardswap/internal/testutil"
)

func setup(t *testing.T) (*app.AppContext, *social.Service, domain.User, domain.User) {
	t.Helper()
	appCtx, _ := testutil.NewApp(t)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	return appCtx, social.NewSocialService(appCtx), alice, bob
}

func TestFriendRequestLifecycle(t *testing.T) {
	_, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)

	req, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipPending, req.Status)

	_, err = svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	pending, err := svc.ListFriends(ctx, bob.ID, domain.FriendshipPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = svc.AcceptFriendRequest(ctx, req.ID, alice.ID)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	accepted, err := svc.AcceptFriendRequest(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, accepted.Status)

	for _, u := range []domain.User{alice, bob} {
		friends, err := svc.ListFriends(ctx, u.ID, "", 0)
		require.NoError(t, err)
		assert.Len(t, friends, 1)
	}

	require.NoError(t, svc.RemoveFriend(ctx, bob.ID, alice.ID))
	assert.ErrorIs(t, svc.RemoveFriend(ctx, bob.ID, alice.ID), svcErr.ErrNotFound)
}

func TestCrossedFriendRequestsAccept(t *testing.T) {
	_, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	f, err := svc.SendFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, f.Status)
	assert.Equal(t, alice.ID, f.UserID)
}

func TestBlockReplacesFriendship(t *testing.T) {
	_, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)

	req, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(ctx, req.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Block(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	friends, err := svc.ListFriends(ctx, alice.ID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, friends)

	blocked, err := svc.ListFriends(ctx, bob.ID, domain.FriendshipBlocked, 0)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, alice.ID, blocked[0].FriendID)

	// the blocked user neither sees nor lifts the block
	blocked, err = svc.ListFriends(ctx, alice.ID, domain.FriendshipBlocked, 0)
	require.NoError(t, err)
	assert.Empty(t, blocked)
	assert.ErrorIs(t, svc.Unblock(ctx, alice.ID, bob.ID), svcErr.ErrNotFound)

	_, err = svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	require.NoError(t, svc.Unblock(ctx, bob.ID, alice.ID))
	_, err = svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func completedTrade(t *testing.T, appCtx *app.AppContext, a, b domain.User) domain.Trade {
	t.Helper()
	ctx := testutil.Ctx(t)
	ts := trade.NewTradeService(appCtx)
	tr, err := ts.Propose(ctx, trade.ProposeInput{
		InitiatorID:      a.ID,
		ResponderID:      b.ID,
		OfferedCardIDs:   []string{testutil.CreateCard(t, appCtx.Store, a.ID).ID},
		RequestedCardIDs: []string{testutil.CreateCard(t, appCtx.Store, b.ID).ID},
	})
	require.NoError(t, err)
	_, err = ts.Accept(ctx, tr.ID, b.ID)
	require.NoError(t, err)
	_, err = ts.Confirm(ctx, tr.ID, a.ID)
	require.NoError(t, err)
	tr, err = ts.Confirm(ctx, tr.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeCompleted, tr.Status)
	return tr
}

func TestRateUser(t *testing.T) {
	appCtx, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)
	carol := testutil.CreateUser(t, appCtx.Store, "carol", "TYO")

	_, err := svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: alice.ID, Score: 5})
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 6})
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	tr := completedTrade(t, appCtx, alice, bob)

	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: carol.ID, Score: 4, TradeID: &tr.ID})
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: carol.ID, RatedUserID: bob.ID, Score: 4, TradeID: &tr.ID})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 5, TradeID: &tr.ID})
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 1, TradeID: &tr.ID})
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	req, err := svc.SendFriendRequest(ctx, carol.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: carol.ID, RatedUserID: bob.ID, Score: 2})
	require.NoError(t, err)

	sum, err := svc.RatingSummary(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Count)
	assert.InDelta(t, 3.5, sum.Average, 0.001)
}

func TestRateWithoutTradeNeedsFriendship(t *testing.T) {
	appCtx, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)
	carol := testutil.CreateUser(t, appCtx.Store, "carol", "TYO")

	// strangers cannot rate each other, however often they try
	for i := 0; i < 3; i++ {
		_, err := svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 1})
		assert.ErrorIs(t, err, svcErr.ErrForbidden)
	}

	// a pending request is not a friendship
	req, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 1})
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	_, err = svc.AcceptFriendRequest(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 4})
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: alice.ID, RatedUserID: bob.ID, Score: 1})
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	// once blocked, neither friendship nor trade ratings go through
	tr := completedTrade(t, appCtx, carol, bob)
	_, err = svc.Block(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: carol.ID, RatedUserID: bob.ID, Score: 1})
	assert.ErrorIs(t, err, svcErr.ErrForbidden)
	_, err = svc.RateUser(ctx, social.RateInput{RaterID: carol.ID, RatedUserID: bob.ID, Score: 1, TradeID: &tr.ID})
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	sum, err := svc.RatingSummary(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Count)
	assert.InDelta(t, 4.0, sum.Average, 0.001)
}

func TestRateRequiresCompletedTrade(t *testing.T) {
	appCtx, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)

	tr, err := trade.NewTradeService(appCtx).Propose(ctx, trade.ProposeInput{
		InitiatorID:    alice.ID,
		ResponderID:    bob.ID,
		OfferedCardIDs: []string{testutil.CreateCard(t, appCtx.Store, alice.ID).ID},
	})
	require.NoError(t, err)

	_, err = svc.RateUser(ctx, social.RateInput{RaterID: bob.ID, RatedUserID: alice.ID, Score: 3, TradeID: &tr.ID})
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
}

func TestReportTarget(t *testing.T) {
	appCtx, svc, alice, bob := setup(t)
	ctx := testutil.Ctx(t)
	card := testutil.CreateCard(t, appCtx.Store, bob.ID)

	_, err := svc.ReportTarget(ctx, alice.ID, domain.ReportUser, alice.ID, "spam")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = svc.ReportTarget(ctx, alice.ID, domain.ReportPost, card.ID, "not a post")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.ReportTarget(ctx, alice.ID, domain.ReportCard, card.ID, "stolen image")
	require.NoError(t, err)
	_, err = svc.ReportTarget(ctx, alice.ID, domain.ReportUser, bob.ID, "rude")
	require.NoError(t, err)

	open, err := svc.OpenReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, domain.ReportOpen, open[0].Status)
}
