package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
)

func TestRatingScoreBounds(t *testing.T) {
	for _, score := range []int{0, 6, -1} {
		_, err := domain.NewRating("a", "b", score, nil, "")
		assert.ErrorIs(t, err, svcErr.ErrValidation, score)
	}
	for score := 1; score <= 5; score++ {
		_, err := domain.NewRating("a", "b", score, nil, "")
		assert.NoError(t, err, score)
	}
}

func TestRatingSelfRejected(t *testing.T) {
	_, err := domain.NewRating("a", "a", 5, nil, "")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestRatingEmptyTradeIDIsNil(t *testing.T) {
	empty := ""
	r, err := domain.NewRating("a", "b", 4, &empty, "ok")
	require.NoError(t, err)
	assert.Nil(t, r.TradeID)
}

func TestNormalizePairIsDirectionIndependent(t *testing.T) {
	a1, b1 := domain.NormalizePair("zed", "amy")
	a2, b2 := domain.NormalizePair("amy", "zed")
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, "amy", a1)

	_, err := domain.NewMessageThread("amy", "amy")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestMessageRequestValidation(t *testing.T) {
	_, err := domain.NewMessageRequest("a", "a", "hi")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = domain.NewMessageRequest("a", "b", "   ")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = domain.NewMessageRequest("a", "b", strings.Repeat("x", domain.MaxMessageLength+1))
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	r, err := domain.NewMessageRequest("a", "b", strings.Repeat("é", domain.MaxMessageLength))
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, r.Status)
}

func TestMessageRequestTransitions(t *testing.T) {
	r, err := domain.NewMessageRequest("a", "b", "hi")
	require.NoError(t, err)

	assert.ErrorIs(t, r.Accept("a", "t1", now), svcErr.ErrForbidden)
	require.NoError(t, r.Decline("b", now))
	assert.Equal(t, domain.RequestDeclined, r.Status)
	assert.ErrorIs(t, r.Accept("b", "t1", now), svcErr.ErrInvalidState)
}

func TestPostCityCodeRequiredIffCityScope(t *testing.T) {
	base := domain.NewPostInput{OwnerID: "o", Category: domain.CategoryWanted, Title: "WTB"}

	in := base
	in.Scope = domain.ScopeCity
	_, err := domain.NewPost(in, now, time.Hour)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	in.CityCode = "tyo"
	p, err := domain.NewPost(in, now, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, p.CityCode)
	assert.Equal(t, "TYO", *p.CityCode)

	in = base
	in.Scope = domain.ScopeGlobal
	in.CityCode = "TYO"
	_, err = domain.NewPost(in, now, time.Hour)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestPostIsExpiredMonotonic(t *testing.T) {
	p, err := domain.NewPost(domain.NewPostInput{
		OwnerID: "o", Scope: domain.ScopeGlobal, Category: domain.CategoryGeneral, Title: "hello",
	}, now, time.Hour)
	require.NoError(t, err)

	assert.False(t, p.IsExpired(now))
	deadline := now.Add(time.Hour)
	for i := 0; i < 5; i++ {
		assert.True(t, p.IsExpired(deadline.Add(time.Duration(i)*time.Minute)))
	}

	require.True(t, p.MarkExpired(deadline))
	// once marked, expiry no longer depends on the clock
	assert.True(t, p.IsExpired(now))
}

func TestPostCloseAndDelete(t *testing.T) {
	p, err := domain.NewPost(domain.NewPostInput{
		OwnerID: "o", Scope: domain.ScopeGlobal, Category: domain.CategoryGeneral, Title: "hello",
	}, now, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Close("x"), svcErr.ErrForbidden)
	require.NoError(t, p.Close("o"))
	assert.ErrorIs(t, p.Close("o"), svcErr.ErrInvalidState)
	require.NoError(t, p.Delete("o"))
	assert.ErrorIs(t, p.Delete("o"), svcErr.ErrInvalidState)
}

func TestPostInterestRules(t *testing.T) {
	p, err := domain.NewPost(domain.NewPostInput{
		OwnerID: "o", Scope: domain.ScopeGlobal, Category: domain.CategoryOffering, Title: "FT",
	}, now, time.Hour)
	require.NoError(t, err)

	_, err = domain.NewPostInterest(p, "o", "", now)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	// expired by the clock while still open
	_, err = domain.NewPostInterest(p, "u", "", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)

	i, err := domain.NewPostInterest(p, "u", "me!", now)
	require.NoError(t, err)
	assert.ErrorIs(t, i.Respond(p, "u", true), svcErr.ErrForbidden)
	require.NoError(t, i.Respond(p, "o", true))
	assert.Equal(t, domain.InterestAccepted, i.Status)
	assert.ErrorIs(t, i.Respond(p, "o", false), svcErr.ErrInvalidState)
}

func TestQuotaRemaining(t *testing.T) {
	q := domain.Quota{DailyUploadLimit: 3, UploadsToday: 2, TotalStorageBytes: 100, StorageUsedBytes: 60}
	assert.Equal(t, 1, q.RemainingUploads())
	assert.Equal(t, int64(40), q.RemainingStorage())
	assert.NoError(t, q.Allows(40))
	assert.ErrorIs(t, q.Allows(41), svcErr.ErrQuotaExceeded)

	q.UploadsToday = 5
	assert.Equal(t, 0, q.RemainingUploads())
	assert.ErrorIs(t, q.Allows(1), svcErr.ErrQuotaExceeded)
}

func TestGalleryReorder(t *testing.T) {
	current := []domain.GalleryCard{{ID: "g1", DisplayOrder: 0}, {ID: "g2", DisplayOrder: 1}, {ID: "g3", DisplayOrder: 2}}

	out, err := domain.Reorder(current, []string{"g3", "g1", "g2"})
	require.NoError(t, err)
	assert.Equal(t, "g3", out[0].ID)
	assert.Equal(t, 0, out[0].DisplayOrder)
	assert.Equal(t, 2, out[2].DisplayOrder)

	_, err = domain.Reorder(current, []string{"g1", "g1", "g2"})
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = domain.Reorder(current, []string{"g1"})
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestReportValidation(t *testing.T) {
	_, err := domain.NewReport("a", domain.ReportUser, "a", "spam")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = domain.NewReport("a", "planet", "b", "spam")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	r, err := domain.NewReport("a", domain.ReportPost, "p1", "spam")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportOpen, r.Status)
}

func TestFriendshipAccept(t *testing.T) {
	f, err := domain.NewFriendRequest("a", "b")
	require.NoError(t, err)
	assert.ErrorIs(t, f.Accept("a"), svcErr.ErrForbidden)
	require.NoError(t, f.Accept("b"))
	assert.ErrorIs(t, f.Accept("b"), svcErr.ErrInvalidState)

	_, err = domain.NewBlock("a", "a")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
