package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

const minPasswordLength = 8

// Service implements registration, profiles, subscriptions and nearby search.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for subscription expiry and the
// daily search counter.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewAccountService(appCtx *app.AppContext, opts ...Option) *Service {
	s := &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	CityCode    string
}

// Register creates a user and its profile. Duplicate usernames or emails fail with Conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, domain.Profile, error) {
	s.appCtx.Log(ctx).Debug("Register called", "username", in.Username)

	if len(in.Password) < minPasswordLength {
		return domain.User{}, domain.Profile{}, svcErr.Validationf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return domain.User{}, domain.Profile{}, svcErr.Validation("password is too long")
	}
	if err != nil {
		return domain.User{}, domain.Profile{}, svcErr.Internal("hash password", err)
	}

	u, err := domain.NewUser(in.Username, in.Email, string(hash))
	if err != nil {
		return domain.User{}, domain.Profile{}, err
	}
	p := domain.Profile{UserID: u.ID, DisplayName: u.Username}
	name, city := in.DisplayName, in.CityCode
	upd := domain.ProfileUpdate{CityCode: &city}
	if name != "" {
		upd.DisplayName = &name
	}
	if err := p.Apply(upd); err != nil {
		return domain.User{}, domain.Profile{}, err
	}

	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		return r.Users.Create(ctx, u, p)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.User{}, domain.Profile{}, svcErr.Conflict("username or email already taken")
	}
	if err != nil {
		return domain.User{}, domain.Profile{}, s.fail(ctx, "Register", err, "")
	}

	s.appCtx.Log(ctx).Info("user registered", "user_id", u.ID)
	return u, p, nil
}

// Authenticate checks an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.appCtx.Store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if svcErr.KindOf(err) == svcErr.KindNotFound {
		return domain.User{}, svcErr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return domain.User{}, s.fail(ctx, "Authenticate", err, "")
	}
	if !u.Active || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, svcErr.Unauthorized("invalid email or password")
	}
	return u, nil
}

// ProfileDetail is a profile with the figures shown next to it.
type ProfileDetail struct {
	Profile       domain.Profile
	Username      string
	Tier          domain.Tier
	RatingAverage float64
	RatingCount   int64
}

func (s *Service) GetProfile(ctx context.Context, userID string) (ProfileDetail, error) {
	repos := s.appCtx.Store.Repos()
	u, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return ProfileDetail{}, s.fail(ctx, "GetProfile", err, "user not found")
	}
	p, err := repos.Users.GetProfile(ctx, userID)
	if err != nil {
		return ProfileDetail{}, s.fail(ctx, "GetProfile", err, "user not found")
	}
	sub, err := repos.Subscriptions.ActiveFor(ctx, userID, s.now())
	if err != nil {
		return ProfileDetail{}, s.fail(ctx, "GetProfile", err, "")
	}
	avg, n, err := repos.Ratings.Summary(ctx, userID)
	if err != nil {
		return ProfileDetail{}, s.fail(ctx, "GetProfile", err, "")
	}
	return ProfileDetail{
		Profile:       p,
		Username:      u.Username,
		Tier:          domain.TierOf(sub),
		RatingAverage: avg,
		RatingCount:   n,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.Profile, error) {
	var out domain.Profile
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Users.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		if err := p.Apply(upd); err != nil {
			return err
		}
		out = p
		return r.Users.UpdateProfile(ctx, p)
	})
	if err != nil {
		return domain.Profile{}, s.fail(ctx, "UpdateProfile", err, "user not found")
	}
	return out, nil
}

// BindPurchaseToken attaches a verified store purchase to userID.
//
// Behavior:
//   - The token is inserted directly; its unique index settles races.
//   - Binding a token the same user already holds returns the existing subscription.
//   - A token held by another user fails with Conflict.
func (s *Service) BindPurchaseToken(ctx context.Context, userID, token string, expiresAt time.Time) (domain.Subscription, error) {
	s.appCtx.Log(ctx).Debug("BindPurchaseToken called", "user", userID)

	sub, err := domain.NewSubscription(userID, token, expiresAt)
	if err != nil {
		return domain.Subscription{}, err
	}
	if !sub.ActiveAt(s.now()) {
		return domain.Subscription{}, svcErr.Validation("purchase has already expired")
	}

	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		return r.Subscriptions.Create(ctx, sub)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, err := s.appCtx.Store.Repos().Subscriptions.GetByToken(ctx, sub.PurchaseToken)
		if err != nil {
			return domain.Subscription{}, s.fail(ctx, "BindPurchaseToken", err, "subscription not found")
		}
		if existing.UserID != userID {
			return domain.Subscription{}, svcErr.Conflict("purchase token is bound to another account")
		}
		return existing, nil
	}
	if err != nil {
		return domain.Subscription{}, s.fail(ctx, "BindPurchaseToken", err, "user not found")
	}

	// the cached search allowance was computed for the old tier
	if err := s.appCtx.RedisCache.ForgetSearchRemaining(ctx, userID, domain.DayKey(s.now())); err != nil {
		s.appCtx.Log(ctx).Warn("failed to drop cached search quota", "user_id", userID, "err", err)
	}

	s.appCtx.Log(ctx).Info("subscription bound", "user_id", userID, "expires_at", sub.ExpiresAt)
	return sub, nil
}

func (s *Service) CurrentTier(ctx context.Context, userID string) (domain.Tier, error) {
	sub, err := s.appCtx.Store.Repos().Subscriptions.ActiveFor(ctx, userID, s.now())
	if err != nil {
		return "", s.fail(ctx, "CurrentTier", err, "")
	}
	return domain.TierOf(sub), nil
}

// NearbySearch lists other users in the caller's city and spends one search
// from the daily allowance.
func (s *Service) NearbySearch(ctx context.Context, userID string, limit int) ([]domain.Profile, domain.SearchQuota, error) {
	s.appCtx.Log(ctx).Debug("NearbySearch called", "user", userID)

	now := s.now()
	q := domain.SearchQuota{UserID: userID, Day: domain.DayKey(now)}
	var out []domain.Profile
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		p, err := r.Users.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		if p.CityCode == "" {
			return svcErr.Validation("set a city on your profile to search nearby")
		}
		if q.Limit, err = s.searchLimit(ctx, r, userID, now); err != nil {
			return err
		}
		if q.Count, err = r.SearchQuotas.Count(ctx, userID, q.Day); err != nil {
			return err
		}
		if q.Remaining() == 0 {
			return svcErr.QuotaExceeded("daily search limit reached")
		}
		if q.Count, err = r.SearchQuotas.Increment(ctx, userID, q.Day); err != nil {
			return err
		}
		if q.Count > q.Limit {
			return svcErr.QuotaExceeded("daily search limit reached")
		}
		out, err = r.Users.ListProfilesInCity(ctx, p.CityCode, userID, pagination.ClampLimit(limit))
		return err
	})
	if err != nil {
		return nil, domain.SearchQuota{}, s.fail(ctx, "NearbySearch", err, "user not found")
	}

	if err := s.appCtx.RedisCache.SetSearchRemaining(ctx, userID, q.Day, q.Remaining()); err != nil {
		s.appCtx.Log(ctx).Warn("failed to cache search quota", "user_id", userID, "err", err)
	}
	return out, q, nil
}

// SearchRemaining returns how many nearby searches are left today.
func (s *Service) SearchRemaining(ctx context.Context, userID string) (int, error) {
	now := s.now()
	day := domain.DayKey(now)
	remaining, hit, err := s.appCtx.RedisCache.GetSearchRemaining(ctx, userID, day)
	if err != nil {
		s.appCtx.Log(ctx).Warn("search quota cache read failed", "user_id", userID, "err", err)
	}
	if hit {
		return remaining, nil
	}

	repos := s.appCtx.Store.Repos()
	q := domain.SearchQuota{UserID: userID, Day: day}
	if q.Limit, err = s.searchLimit(ctx, repos, userID, now); err != nil {
		return 0, s.fail(ctx, "SearchRemaining", err, "")
	}
	if q.Count, err = repos.SearchQuotas.Count(ctx, userID, day); err != nil {
		return 0, s.fail(ctx, "SearchRemaining", err, "")
	}
	if err := s.appCtx.RedisCache.SetSearchRemaining(ctx, userID, day, q.Remaining()); err != nil {
		s.appCtx.Log(ctx).Warn("failed to cache search quota", "user_id", userID, "err", err)
	}
	return q.Remaining(), nil
}

func (s *Service) searchLimit(ctx context.Context, r domain.Repositories, userID string, now time.Time) (int, error) {
	sub, err := r.Subscriptions.ActiveFor(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	if domain.TierOf(sub) == domain.TierPremium {
		return s.appCtx.Config.Quota.PremiumDailySearches, nil
	}
	return s.appCtx.Config.Quota.FreeDailySearches, nil
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
