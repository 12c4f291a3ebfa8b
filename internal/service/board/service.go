package board

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Service implements the city and global boards: posts, interest, likes and comments.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewBoardService(appCtx *app.AppContext, opts ...Option) *Service {
	s := &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreatePost publishes a post that expires after the configured lifetime.
func (s *Service) CreatePost(ctx context.Context, in domain.NewPostInput) (domain.Post, error) {
	s.appCtx.Log(ctx).Debug("CreatePost called", "owner", in.OwnerID, "scope", in.Scope)

	now := s.now()
	p, err := domain.NewPost(in, now, s.appCtx.Config.Quota.PostLifetime)
	if err != nil {
		return domain.Post{}, err
	}
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, in.OwnerID); err != nil {
			return err
		}
		return r.Posts.Create(ctx, p)
	})
	if err != nil {
		return domain.Post{}, s.fail(ctx, "CreatePost", err, "user not found")
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// GetPost returns a post unless it was deleted. An open post past its
// deadline is reported as expired even before the sweeper marks it.
func (s *Service) GetPost(ctx context.Context, postID string) (domain.Post, error) {
	p, err := s.appCtx.Store.Repos().Posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, s.fail(ctx, "GetPost", err, "post not found")
	}
	if p.Status == domain.PostDeleted {
		return domain.Post{}, svcErr.NotFound("post not found")
	}
	p.MarkExpired(s.now())
	return p, nil
}

// ListPosts returns one page of the global feed, or of a city feed when
// cityCode is set.
func (s *Service) ListPosts(ctx context.Context, cityCode string, token *string, limit int) ([]domain.Post, *string, error) {
	f := domain.PostFilter{Scope: domain.ScopeGlobal, Now: s.now()}
	if city := strings.ToUpper(strings.TrimSpace(cityCode)); city != "" {
		f.Scope = domain.ScopeCity
		f.CityCode = city
	}
	posts, next, err := s.appCtx.Store.Repos().Posts.ListOpen(ctx, f, token, pagination.ClampLimit(limit))
	if err != nil {
		return nil, nil, s.fail(ctx, "ListPosts", err, "")
	}
	return posts, next, nil
}

func (s *Service) ClosePost(ctx context.Context, postID, userID string) (domain.Post, error) {
	return s.changePost(ctx, "ClosePost", postID, func(p *domain.Post) error { return p.Close(userID) })
}

func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	if _, err := s.changePost(ctx, "DeletePost", postID, func(p *domain.Post) error { return p.Delete(userID) }); err != nil {
		return err
	}
	if err := s.appCtx.RedisCache.ForgetLikeCount(ctx, postID); err != nil {
		s.appCtx.Log(ctx).Warn("failed to drop cached like count", "post_id", postID, "err", err)
	}
	return nil
}

func (s *Service) changePost(ctx context.Context, op, postID string, fn func(p *domain.Post) error) (domain.Post, error) {
	s.appCtx.Log(ctx).Debug(op+" called", "post_id", postID)

	var out domain.Post
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.Status == domain.PostDeleted {
			return svcErr.NotFound("post not found")
		}
		if err := fn(&p); err != nil {
			return err
		}
		out = p
		return r.Posts.Update(ctx, p)
	})
	if err != nil {
		return domain.Post{}, s.fail(ctx, op, err, "post not found")
	}
	return out, nil
}

// ExpressInterest records that userID wants to respond to a post.
//
// Behavior:
//   - Own post fails with Validation.
//   - Closed, deleted or expired posts fail with InvalidState.
//   - A second interest by the same user fails with Conflict.
func (s *Service) ExpressInterest(ctx context.Context, postID, userID, message string) (domain.PostInterest, error) {
	s.appCtx.Log(ctx).Debug("ExpressInterest called", "post_id", postID, "user", userID)

	var out domain.PostInterest
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.Status == domain.PostDeleted {
			return svcErr.NotFound("post not found")
		}
		i, err := domain.NewPostInterest(p, userID, message, s.now())
		if err != nil {
			return err
		}
		existing, err := r.Interests.FindByPostAndUser(ctx, postID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return svcErr.Conflict("interest already expressed")
		}
		out = i
		return r.Interests.Create(ctx, i)
	})
	if err != nil {
		return domain.PostInterest{}, s.fail(ctx, "ExpressInterest", err, "post not found")
	}
	return out, nil
}

// RespondInterest lets the post owner accept or reject a pending interest.
func (s *Service) RespondInterest(ctx context.Context, interestID, userID string, accept bool) (domain.PostInterest, error) {
	var out domain.PostInterest
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		i, err := r.Interests.GetByID(ctx, interestID)
		if err != nil {
			return err
		}
		p, err := r.Posts.GetByID(ctx, i.PostID)
		if err != nil {
			return err
		}
		if err := i.Respond(p, userID, accept); err != nil {
			return err
		}
		out = i
		return r.Interests.Update(ctx, i)
	})
	if err != nil {
		return domain.PostInterest{}, s.fail(ctx, "RespondInterest", err, "interest not found")
	}
	return out, nil
}

// ListInterests returns every interest on a post. Owner only.
func (s *Service) ListInterests(ctx context.Context, postID, userID string) ([]domain.PostInterest, error) {
	repos := s.appCtx.Store.Repos()
	p, err := repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, s.fail(ctx, "ListInterests", err, "post not found")
	}
	if p.OwnerID != userID {
		return nil, svcErr.Forbidden("only the post owner can list interest")
	}
	out, err := repos.Interests.ListForPost(ctx, postID)
	if err != nil {
		return nil, s.fail(ctx, "ListInterests", err, "post not found")
	}
	return out, nil
}

// ToggleLike flips the caller's like on a post and returns the new state.
// A concurrent like that hits the unique (post, user) key counts as liked.
// The cached total is dropped rather than overwritten; LikeCount refills it.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (domain.LikeResult, error) {
	s.appCtx.Log(ctx).Debug("ToggleLike called", "post_id", postID, "user", userID)

	var res domain.LikeResult
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.Status == domain.PostDeleted {
			return svcErr.NotFound("post not found")
		}

		liked, err := r.Likes.Exists(ctx, postID, userID)
		if err != nil {
			return err
		}
		if liked {
			if err := r.Likes.Delete(ctx, postID, userID); err != nil {
				return err
			}
		} else if err := r.Likes.Create(ctx, postID, userID); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		res.Liked = !liked

		res.Count, err = r.Likes.Count(ctx, postID)
		return err
	})
	if err != nil {
		return domain.LikeResult{}, s.fail(ctx, "ToggleLike", err, "post not found")
	}

	if err := s.appCtx.RedisCache.ForgetLikeCount(ctx, postID); err != nil {
		s.appCtx.Log(ctx).Warn("failed to drop cached like count", "post_id", postID, "err", err)
	}
	return res, nil
}

// LikeCount reads the cached like count, falling back to the database.
func (s *Service) LikeCount(ctx context.Context, postID string) (int64, error) {
	count, hit, err := s.appCtx.RedisCache.GetLikeCount(ctx, postID)
	if err != nil {
		s.appCtx.Log(ctx).Warn("like count cache read failed", "post_id", postID, "err", err)
	}
	if hit {
		return count, nil
	}
	count, err = s.appCtx.Store.Repos().Likes.Count(ctx, postID)
	if err != nil {
		return 0, s.fail(ctx, "LikeCount", err, "post not found")
	}
	if err := s.appCtx.RedisCache.UpdateLikeCount(ctx, postID, count); err != nil {
		s.appCtx.Log(ctx).Warn("failed to cache like count", "post_id", postID, "err", err)
	}
	return count, nil
}

func (s *Service) AddComment(ctx context.Context, postID, authorID, body string) (domain.PostComment, error) {
	c, err := domain.NewPostComment(postID, authorID, body)
	if err != nil {
		return domain.PostComment{}, err
	}
	now := s.now()
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.Status == domain.PostDeleted {
			return svcErr.NotFound("post not found")
		}
		return r.Comments.Create(ctx, c)
	})
	if err != nil {
		return domain.PostComment{}, s.fail(ctx, "AddComment", err, "post not found")
	}
	c.CreatedAt = now
	return c, nil
}

// DeleteComment removes a comment. The author and the post owner may delete.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		c, err := r.Comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if c.AuthorID != userID {
			p, err := r.Posts.GetByID(ctx, c.PostID)
			if err != nil {
				return err
			}
			if p.OwnerID != userID {
				return svcErr.Forbidden("cannot delete this comment")
			}
		}
		return r.Comments.Delete(ctx, commentID)
	})
	return s.fail(ctx, "DeleteComment", err, "comment not found")
}

func (s *Service) ListComments(ctx context.Context, postID string, token *string, limit int) ([]domain.PostComment, *string, error) {
	comments, next, err := s.appCtx.Store.Repos().Comments.ListForPost(ctx, postID, token, pagination.ClampLimit(limit))
	if err != nil {
		return nil, nil, s.fail(ctx, "ListComments", err, "post not found")
	}
	return comments, next, nil
}

// ExpireDue marks open posts past their deadline as expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.appCtx.Store.Repos().Posts.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, s.fail(ctx, "ExpireDue", err, "")
	}
	if n > 0 {
		s.appCtx.Log(ctx).Info("expired posts", "count", n)
	}
	return n, nil
}

// RunExpirySweeper calls ExpireDue every interval until ctx is done.
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.ExpireDue(ctx)
		}
	}
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
