package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Store bundles every GORM repository bound to one *gorm.DB, which is either
// the pooled connection or an open transaction.
type Store struct {
	db    *gorm.DB
	repos domain.Repositories
}

// NewStore creates a store bound to the given DB connection.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db: database,
		repos: domain.Repositories{
			Users:         NewUserRepository(database),
			Cards:         NewCardRepository(database),
			Trades:        NewTradeRepository(database),
			Threads:       NewThreadRepository(database),
			Requests:      NewMessageRequestRepository(database),
			Friendships:   NewFriendshipRepository(database),
			Ratings:       NewRatingRepository(database),
			Reports:       NewReportRepository(database),
			Posts:         NewPostRepository(database),
			Interests:     NewInterestRepository(database),
			Likes:         NewLikeRepository(database),
			Comments:      NewCommentRepository(database),
			Gallery:       NewGalleryRepository(database),
			Media:         NewMediaRepository(database),
			Subscriptions: NewSubscriptionRepository(database),
			SearchQuotas:  NewSearchQuotaRepository(database),
		},
	}
}

func (s *Store) Repos() domain.Repositories { return s.repos }

// Atomic runs fn inside a single transaction. Returning an error from fn
// rolls back every write made through the repositories it received.
func (s *Store) Atomic(ctx context.Context, fn func(r domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx).repos)
	})
}

// notFound turns gorm.ErrRecordNotFound into a domain NotFound error.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound(what + " not found")
	}
	return err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// applyCursor restricts a created_at DESC, id DESC query to rows after the cursor.
func applyCursor(q *gorm.DB, token *string, createdCol, idCol string) (*gorm.DB, error) {
	cursor, err := pagination.Decode(getString(token))
	if err != nil {
		return nil, svcErr.Validation(err.Error())
	}
	if cursor.IsZero() {
		return q, nil
	}
	ts := cursor.Time()
	return q.Where(
		"("+createdCol+" < ? OR ("+createdCol+" = ? AND "+idCol+" < ?))",
		ts, ts, cursor.ID,
	), nil
}
