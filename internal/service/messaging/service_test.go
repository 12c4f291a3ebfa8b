package messaging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/service/messaging"
	"github.com/oggyb/cardswap/internal/testutil"
)

func TestRequestDeclineResend(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")

	first, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, first.Status)

	// pending in either direction blocks a new request
	_, err = svc.SendRequest(ctx, alice.ID, bob.ID, "again")
	assert.ErrorIs(t, err, svcErr.ErrConflict)
	_, err = svc.SendRequest(ctx, bob.ID, alice.ID, "hi alice")
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	// only the recipient may decline
	_, err = svc.DeclineRequest(ctx, first.ID, alice.ID)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	declined, err := svc.DeclineRequest(ctx, first.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestDeclined, declined.Status)

	incoming, err := svc.ListIncomingRequests(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	second, err := svc.SendRequest(ctx, alice.ID, bob.ID, "one more try")
	require.NoError(t, err)

	incoming, err = svc.ListIncomingRequests(ctx, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, second.ID, incoming[0].ID)

	_, err = svc.DeclineRequest(ctx, first.ID, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
}

func TestAcceptCreatesSingleThread(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")

	req, err := svc.SendRequest(ctx, bob.ID, alice.ID, "trade?")
	require.NoError(t, err)

	_, err = svc.AcceptRequest(ctx, req.ID, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	thread, err := svc.AcceptRequest(ctx, req.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, thread.UserAID < thread.UserBID)
	assert.True(t, thread.HasParticipant(alice.ID))
	assert.True(t, thread.HasParticipant(bob.ID))
	require.NotNil(t, thread.LastMessageAt)

	_, err = svc.AcceptRequest(ctx, req.ID, alice.ID)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)

	// a thread exists now, so neither side can open another request
	_, err = svc.SendRequest(ctx, alice.ID, bob.ID, "new thread please")
	assert.ErrorIs(t, err, svcErr.ErrConflict)

	_, err = svc.SendMessage(ctx, alice.ID, bob.ID, "deal")
	require.NoError(t, err)

	for _, u := range []domain.User{alice, bob} {
		threads, err := svc.ListThreads(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, thread.ID, threads[0].ID)
	}

	msgs, next, err := svc.ListMessages(ctx, thread.ID, bob.ID, nil, 10)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, msgs, 2)
	bodies := []string{msgs[0].Body, msgs[1].Body}
	assert.ElementsMatch(t, []string{"trade?", "deal"}, bodies)
}

func TestSendMessageRequiresThread(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")

	_, err := svc.SendMessage(ctx, alice.ID, bob.ID, "hello?")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestListMessagesHiddenFromOutsiders(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	eve := testutil.CreateUser(t, appCtx.Store, "eve", "TYO")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hey")
	require.NoError(t, err)
	thread, err := svc.AcceptRequest(ctx, req.ID, bob.ID)
	require.NoError(t, err)

	_, _, err = svc.ListMessages(ctx, thread.ID, eve.ID, nil, 10)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestRequestValidation(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")

	_, err := svc.SendRequest(ctx, alice.ID, alice.ID, "me")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = svc.SendRequest(ctx, alice.ID, "6b0f3d1e-8a55-4c1e-9d7a-000000000000", "anyone?")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	_, err = svc.SendRequest(ctx, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestBlockedUsersCannotRequest(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")

	block, err := domain.NewBlock(bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, appCtx.Store.Repos().Friendships.Create(ctx, block))

	_, err = svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	assert.ErrorIs(t, err, svcErr.ErrForbidden)
}

func TestBlockAfterRequestPreventsAccept(t *testing.T) {
	ctx := testutil.Ctx(t)
	appCtx, _ := testutil.NewApp(t)
	svc := messaging.NewMessagingService(appCtx)
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	require.NoError(t, err)

	block, err := domain.NewBlock(bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, appCtx.Store.Repos().Friendships.Create(ctx, block))

	_, err = svc.AcceptRequest(ctx, req.ID, bob.ID)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	thread, err := appCtx.Store.Repos().Threads.FindByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, thread)

	pending, err := svc.ListIncomingRequests(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.RequestPending, pending[0].Status)
}
