package domain

import (
	"context"
	"time"
)

// Repository contracts. Lookups by id return a NotFound error when the row is
// missing; Find* lookups return nil, nil instead.

type UserRepository interface {
	Create(ctx context.Context, u User, p Profile) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, p Profile) error
	ListProfilesInCity(ctx context.Context, cityCode, excludeUserID string, limit int) ([]Profile, error)
}

type CardRepository interface {
	Create(ctx context.Context, c Card) error
	GetByID(ctx context.Context, id string) (Card, error)
	GetByIDs(ctx context.Context, ids []string) ([]Card, error)
	Update(ctx context.Context, c Card) error
	SetStatus(ctx context.Context, ids []string, status CardStatus) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, token *string, limit int) ([]Card, *string, error)
	CountUploadsSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
	StorageUsed(ctx context.Context, ownerID string) (int64, error)
}

type TradeRepository interface {
	Create(ctx context.Context, t Trade) error
	GetByID(ctx context.Context, id string) (Trade, error)
	Update(ctx context.Context, t Trade) error
	ListForUser(ctx context.Context, userID string, status TradeStatus, limit int) ([]Trade, error)
	ActiveTradeForCard(ctx context.Context, cardID string) (*Trade, error)
}

type ThreadRepository interface {
	Create(ctx context.Context, t MessageThread) error
	GetByID(ctx context.Context, id string) (MessageThread, error)
	FindByPair(ctx context.Context, x, y string) (*MessageThread, error)
	Touch(ctx context.Context, id string, at time.Time) error
	ListForUser(ctx context.Context, userID string, limit int) ([]MessageThread, error)
	AppendMessage(ctx context.Context, m ThreadMessage) (ThreadMessage, error)
	ListMessages(ctx context.Context, threadID string, token *string, limit int) ([]ThreadMessage, *string, error)
}

type MessageRequestRepository interface {
	Create(ctx context.Context, r MessageRequest) error
	GetByID(ctx context.Context, id string) (MessageRequest, error)
	Update(ctx context.Context, r MessageRequest) error
	FindPendingBetween(ctx context.Context, x, y string) (*MessageRequest, error)
	ListPendingFor(ctx context.Context, recipientID string, limit int) ([]MessageRequest, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, f Friendship) error
	GetByID(ctx context.Context, id string) (Friendship, error)
	Update(ctx context.Context, f Friendship) error
	Delete(ctx context.Context, id string) error
	FindBetween(ctx context.Context, x, y string) ([]Friendship, error)
	ListByStatus(ctx context.Context, userID string, status FriendshipStatus, limit int) ([]Friendship, error)
}

type RatingRepository interface {
	Create(ctx context.Context, r Rating) error
	ExistsForTrade(ctx context.Context, tradeID, raterID string) (bool, error)
	// ExistsWithoutTrade reports whether rater already left a friendship rating for rated.
	ExistsWithoutTrade(ctx context.Context, raterID, ratedUserID string) (bool, error)
	Summary(ctx context.Context, ratedUserID string) (avg float64, count int64, err error)
}

type ReportRepository interface {
	Create(ctx context.Context, r Report) error
	ListByStatus(ctx context.Context, status ReportStatus, limit int) ([]Report, error)
}

// PostFilter selects a board feed.
type PostFilter struct {
	Scope    PostScope
	CityCode string
	Now      time.Time
}

type PostRepository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id string) (Post, error)
	Update(ctx context.Context, p Post) error
	ListOpen(ctx context.Context, f PostFilter, token *string, limit int) ([]Post, *string, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type InterestRepository interface {
	Create(ctx context.Context, i PostInterest) error
	GetByID(ctx context.Context, id string) (PostInterest, error)
	Update(ctx context.Context, i PostInterest) error
	FindByPostAndUser(ctx context.Context, postID, userID string) (*PostInterest, error)
	ListForPost(ctx context.Context, postID string) ([]PostInterest, error)
}

type LikeRepository interface {
	Exists(ctx context.Context, postID, userID string) (bool, error)
	Create(ctx context.Context, postID, userID string) error
	Delete(ctx context.Context, postID, userID string) error
	Count(ctx context.Context, postID string) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c PostComment) error
	GetByID(ctx context.Context, id string) (PostComment, error)
	Delete(ctx context.Context, id string) error
	ListForPost(ctx context.Context, postID string, token *string, limit int) ([]PostComment, *string, error)
}

type GalleryRepository interface {
	ListForUser(ctx context.Context, userID string) ([]GalleryCard, error)
	Add(ctx context.Context, g GalleryCard) error
	Remove(ctx context.Context, userID, id string) error
	RemoveCard(ctx context.Context, cardID string) error
	SaveOrder(ctx context.Context, entries []GalleryCard) error
}

type MediaRepository interface {
	Create(ctx context.Context, m MediaAsset) error
	GetByID(ctx context.Context, id string) (MediaAsset, error)
	Update(ctx context.Context, m MediaAsset) error
	StorageUsed(ctx context.Context, ownerID string) (int64, error)
	CountUploadsSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s Subscription) error
	GetByToken(ctx context.Context, token string) (Subscription, error)
	ActiveFor(ctx context.Context, userID string, now time.Time) (*Subscription, error)
}

type SearchQuotaRepository interface {
	Count(ctx context.Context, userID, day string) (int, error)
	Increment(ctx context.Context, userID, day string) (int, error)
}

// Repositories is the full set of persistence contracts bound to one
// connection or transaction.
type Repositories struct {
	Users         UserRepository
	Cards         CardRepository
	Trades        TradeRepository
	Threads       ThreadRepository
	Requests      MessageRequestRepository
	Friendships   FriendshipRepository
	Ratings       RatingRepository
	Reports       ReportRepository
	Posts         PostRepository
	Interests     InterestRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Gallery       GalleryRepository
	Media         MediaRepository
	Subscriptions SubscriptionRepository
	SearchQuotas  SearchQuotaRepository
}

// Store hands out repositories and runs use cases atomically.
type Store interface {
	Repos() Repositories
	// Atomic runs fn in one transaction; any error rolls back every write.
	Atomic(ctx context.Context, fn func(r Repositories) error) error
}

// ObjectStorage is the blob store behind card and media uploads.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
