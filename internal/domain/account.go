package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

func NewUser(username, email, passwordHash string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if !usernamePattern.MatchString(username) {
		return User{}, svcErr.Validation("username must be 3-32 letters, digits, '_' or '.'")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, svcErr.Validation("email is invalid")
	}
	if passwordHash == "" {
		return User{}, svcErr.Validation("password is required")
	}
	return User{ID: uuid.NewString(), Username: username, Email: email, PasswordHash: passwordHash, Active: true}, nil
}

// Profile is the public face of a user.
type Profile struct {
	UserID      string
	DisplayName string
	Bio         string
	CityCode    string
	AvatarKey   string
	UpdatedAt   time.Time
}

type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	CityCode    *string
	AvatarKey   *string
}

const (
	maxDisplayName = 64
	maxBio         = 500
)

// Apply validates and merges a partial update.
func (p *Profile) Apply(u ProfileUpdate) error {
	if u.DisplayName != nil {
		name := strings.TrimSpace(*u.DisplayName)
		if n := utf8.RuneCountInString(name); n == 0 || n > maxDisplayName {
			return svcErr.Validationf("display_name must be 1..%d characters", maxDisplayName)
		}
		p.DisplayName = name
	}
	if u.Bio != nil {
		bio := strings.TrimSpace(*u.Bio)
		if utf8.RuneCountInString(bio) > maxBio {
			return svcErr.Validationf("bio must be at most %d characters", maxBio)
		}
		p.Bio = bio
	}
	if u.CityCode != nil {
		p.CityCode = strings.ToUpper(strings.TrimSpace(*u.CityCode))
	}
	if u.AvatarKey != nil {
		p.AvatarKey = *u.AvatarKey
	}
	return nil
}

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Subscription ties a store purchase token to a user.
type Subscription struct {
	ID            string
	UserID        string
	Tier          Tier
	PurchaseToken string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

func NewSubscription(userID, purchaseToken string, expiresAt time.Time) (Subscription, error) {
	purchaseToken = strings.TrimSpace(purchaseToken)
	if userID == "" || purchaseToken == "" {
		return Subscription{}, svcErr.Validation("user_id and purchase_token are required")
	}
	if expiresAt.IsZero() {
		return Subscription{}, svcErr.Validation("expires_at is required")
	}
	return Subscription{
		ID:            uuid.NewString(),
		UserID:        userID,
		Tier:          TierPremium,
		PurchaseToken: purchaseToken,
		ExpiresAt:     expiresAt,
	}, nil
}

func (s *Subscription) ActiveAt(now time.Time) bool { return now.Before(s.ExpiresAt) }

// Quota is derived on every request from count/sum queries; nothing here is stored.
type Quota struct {
	Tier              Tier
	DailyUploadLimit  int
	UploadsToday      int
	TotalStorageBytes int64
	StorageUsedBytes  int64
}

func (q Quota) RemainingUploads() int {
	if r := q.DailyUploadLimit - q.UploadsToday; r > 0 {
		return r
	}
	return 0
}

func (q Quota) RemainingStorage() int64 {
	if r := q.TotalStorageBytes - q.StorageUsedBytes; r > 0 {
		return r
	}
	return 0
}

// Allows reports whether one more upload of size bytes fits.
func (q Quota) Allows(size int64) error {
	if q.RemainingUploads() <= 0 {
		return svcErr.QuotaExceeded("daily upload limit reached")
	}
	if size > q.RemainingStorage() {
		return svcErr.QuotaExceeded("storage quota exceeded")
	}
	return nil
}

// SearchQuota is the nearby-search usage for one user on one UTC day.
type SearchQuota struct {
	UserID string
	Day    string
	Count  int
	Limit  int
}

func (q SearchQuota) Remaining() int {
	if r := q.Limit - q.Count; r > 0 {
		return r
	}
	return 0
}

// DayKey is the UTC calendar day used to bucket daily counters.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// StartOfDay returns midnight UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TierOf returns the tier granted by the user's active subscription, if any.
func TierOf(active *Subscription) Tier {
	if active != nil {
		return active.Tier
	}
	return TierFree
}
