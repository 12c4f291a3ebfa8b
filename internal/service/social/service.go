package social

import (
	"context"
	"time"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Service implements friendships, blocks, ratings and reports.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

func NewSocialService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SendFriendRequest asks friendID to become friends with userID.
//
// Behavior:
//   - Fails with Forbidden when either user blocked the other.
//   - Fails with Conflict when already friends or when userID already asked.
//   - If friendID had already asked userID, that request is accepted instead.
func (s *Service) SendFriendRequest(ctx context.Context, userID, friendID string) (domain.Friendship, error) {
	s.appCtx.Log(ctx).Debug("SendFriendRequest called", "user", userID, "friend", friendID)

	f, err := domain.NewFriendRequest(userID, friendID)
	if err != nil {
		return domain.Friendship{}, err
	}

	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, friendID); err != nil {
			return err
		}
		rows, err := r.Friendships.FindBetween(ctx, userID, friendID)
		if err != nil {
			return err
		}
		if domain.AnyBlocked(rows) {
			return svcErr.Forbidden("cannot befriend this user")
		}
		for _, row := range rows {
			switch {
			case row.Status == domain.FriendshipAccepted:
				return svcErr.Conflict("already friends")
			case row.UserID == userID:
				return svcErr.Conflict("friend request already sent")
			default:
				if err := row.Accept(userID); err != nil {
					return err
				}
				f = row
				return r.Friendships.Update(ctx, row)
			}
		}
		return r.Friendships.Create(ctx, f)
	})
	if err != nil {
		return domain.Friendship{}, s.fail(ctx, "SendFriendRequest", err, "user not found")
	}
	return f, nil
}

// AcceptFriendRequest accepts a pending request addressed to userID.
func (s *Service) AcceptFriendRequest(ctx context.Context, friendshipID, userID string) (domain.Friendship, error) {
	var out domain.Friendship
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		f, err := r.Friendships.GetByID(ctx, friendshipID)
		if err != nil {
			return err
		}
		if !f.Involves(userID) || f.Status == domain.FriendshipBlocked {
			return svcErr.NotFound("friend request not found")
		}
		if err := f.Accept(userID); err != nil {
			return err
		}
		out = f
		return r.Friendships.Update(ctx, f)
	})
	if err != nil {
		return domain.Friendship{}, s.fail(ctx, "AcceptFriendRequest", err, "friend request not found")
	}
	return out, nil
}

// RemoveFriend ends a friendship or withdraws/declines a pending request.
// Blocks are left alone; use Unblock for those.
func (s *Service) RemoveFriend(ctx context.Context, userID, otherID string) error {
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		rows, err := r.Friendships.FindBetween(ctx, userID, otherID)
		if err != nil {
			return err
		}
		removed := 0
		for _, row := range rows {
			if row.Status == domain.FriendshipBlocked {
				continue
			}
			if err := r.Friendships.Delete(ctx, row.ID); err != nil {
				return err
			}
			removed++
		}
		if removed == 0 {
			return svcErr.NotFound("friendship not found")
		}
		return nil
	})
	return s.fail(ctx, "RemoveFriend", err, "friendship not found")
}

// Block replaces whatever links the pair with a single block owned by blockerID.
func (s *Service) Block(ctx context.Context, blockerID, blockedID string) (domain.Friendship, error) {
	s.appCtx.Log(ctx).Debug("Block called", "blocker", blockerID, "blocked", blockedID)

	b, err := domain.NewBlock(blockerID, blockedID)
	if err != nil {
		return domain.Friendship{}, err
	}
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, blockedID); err != nil {
			return err
		}
		rows, err := r.Friendships.FindBetween(ctx, blockerID, blockedID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := r.Friendships.Delete(ctx, row.ID); err != nil {
				return err
			}
		}
		return r.Friendships.Create(ctx, b)
	})
	if err != nil {
		return domain.Friendship{}, s.fail(ctx, "Block", err, "user not found")
	}
	return b, nil
}

// Unblock removes a block. Only the blocker can lift it.
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID string) error {
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		rows, err := r.Friendships.FindBetween(ctx, blockerID, blockedID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Status == domain.FriendshipBlocked && row.UserID == blockerID {
				return r.Friendships.Delete(ctx, row.ID)
			}
		}
		return svcErr.NotFound("block not found")
	})
	return s.fail(ctx, "Unblock", err, "block not found")
}

// ListFriends lists accepted friendships by default. Pending lists requests
// addressed to userID; blocked lists the users userID blocked.
func (s *Service) ListFriends(ctx context.Context, userID string, status domain.FriendshipStatus, limit int) ([]domain.Friendship, error) {
	switch status {
	case "":
		status = domain.FriendshipAccepted
	case domain.FriendshipAccepted, domain.FriendshipPending, domain.FriendshipBlocked:
	default:
		return nil, svcErr.Validation("status must be accepted, pending or blocked")
	}
	rows, err := s.appCtx.Store.Repos().Friendships.ListByStatus(ctx, userID, status, pagination.ClampLimit(limit))
	if err != nil {
		return nil, s.fail(ctx, "ListFriends", err, "")
	}
	return rows, nil
}

type RateInput struct {
	RaterID     string
	RatedUserID string
	Score       int
	TradeID     *string
	Comment     string
}

// RateUser records a rating.
//
// Behavior:
//   - Fails with Forbidden if either user blocked the other.
//   - With a trade id, the trade must be completed, the rater one of its
//     participants and the rated user the counterparty.
//   - A rater can rate a given trade only once (Conflict).
//   - Without a trade id the two users must be friends, and the rater gets
//     one such rating per rated user (Conflict).
func (s *Service) RateUser(ctx context.Context, in RateInput) (domain.Rating, error) {
	s.appCtx.Log(ctx).Debug("RateUser called", "rater", in.RaterID, "rated", in.RatedUserID)

	rt, err := domain.NewRating(in.RaterID, in.RatedUserID, in.Score, in.TradeID, in.Comment)
	if err != nil {
		return domain.Rating{}, err
	}
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, rt.RatedUserID); err != nil {
			return err
		}
		rows, err := r.Friendships.FindBetween(ctx, rt.RaterID, rt.RatedUserID)
		if err != nil {
			return err
		}
		if domain.AnyBlocked(rows) {
			return svcErr.Forbidden("cannot rate this user")
		}
		if rt.TradeID != nil {
			err = checkRatedTrade(ctx, r, rt)
		} else {
			err = checkRatedFriend(ctx, r, rt, rows)
		}
		if err != nil {
			return err
		}
		return r.Ratings.Create(ctx, rt)
	})
	if err != nil {
		return domain.Rating{}, s.fail(ctx, "RateUser", err, "user not found")
	}
	rt.CreatedAt = s.now()
	return rt, nil
}

func checkRatedTrade(ctx context.Context, r domain.Repositories, rt domain.Rating) error {
	t, err := r.Trades.GetByID(ctx, *rt.TradeID)
	if err != nil {
		return err
	}
	if !t.IsParticipant(rt.RaterID) {
		return svcErr.NotFound("trade not found")
	}
	if t.Status != domain.TradeCompleted {
		return svcErr.InvalidState("only completed trades can be rated")
	}
	if t.Counterparty(rt.RaterID) != rt.RatedUserID {
		return svcErr.Validation("rated user is not the trade counterparty")
	}
	exists, err := r.Ratings.ExistsForTrade(ctx, t.ID, rt.RaterID)
	if err != nil {
		return err
	}
	if exists {
		return svcErr.Conflict("trade already rated")
	}
	return nil
}

func checkRatedFriend(ctx context.Context, r domain.Repositories, rt domain.Rating, rows []domain.Friendship) error {
	if !domain.AreFriends(rows) {
		return svcErr.Forbidden("only friends or trade partners can be rated")
	}
	exists, err := r.Ratings.ExistsWithoutTrade(ctx, rt.RaterID, rt.RatedUserID)
	if err != nil {
		return err
	}
	if exists {
		return svcErr.Conflict("user already rated")
	}
	return nil
}

type RatingSummary struct {
	Average float64
	Count   int64
}

func (s *Service) RatingSummary(ctx context.Context, userID string) (RatingSummary, error) {
	avg, n, err := s.appCtx.Store.Repos().Ratings.Summary(ctx, userID)
	if err != nil {
		return RatingSummary{}, s.fail(ctx, "RatingSummary", err, "")
	}
	return RatingSummary{Average: avg, Count: n}, nil
}

// ReportTarget files a moderation report against an existing user, post or card.
func (s *Service) ReportTarget(ctx context.Context, reporterID string, target domain.ReportTarget, targetID, reason string) (domain.Report, error) {
	rp, err := domain.NewReport(reporterID, target, targetID, reason)
	if err != nil {
		return domain.Report{}, err
	}
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		var err error
		switch target {
		case domain.ReportUser:
			_, err = r.Users.GetByID(ctx, targetID)
		case domain.ReportPost:
			_, err = r.Posts.GetByID(ctx, targetID)
		case domain.ReportCard:
			_, err = r.Cards.GetByID(ctx, targetID)
		}
		if err != nil {
			return err
		}
		return r.Reports.Create(ctx, rp)
	})
	if err != nil {
		return domain.Report{}, s.fail(ctx, "ReportTarget", err, string(target)+" not found")
	}
	s.appCtx.Log(ctx).Info("report filed", "report_id", rp.ID, "target_type", target, "target_id", targetID)
	return rp, nil
}

// OpenReports returns the moderation queue, oldest first.
func (s *Service) OpenReports(ctx context.Context, limit int) ([]domain.Report, error) {
	out, err := s.appCtx.Store.Repos().Reports.ListByStatus(ctx, domain.ReportOpen, pagination.ClampLimit(limit))
	if err != nil {
		return nil, s.fail(ctx, "OpenReports", err, "")
	}
	return out, nil
}

func (s *Service) fail(ctx context.Context, op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if e, ok := svcErr.As(err); !ok || e.Kind == svcErr.KindInternal {
		s.appCtx.Log(ctx).Error(op+" failed", "err", err)
	}
	return svcErr.Wrap(err, notFoundMsg)
}
