package db

import (
	"time"
)

// User table
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Active       bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile is 1:1 with User and shares its primary key.
type Profile struct {
	UserID      string    `gorm:"primaryKey;size:36"`
	DisplayName string    `gorm:"size:64;not null"`
	Bio         string    `gorm:"size:500"`
	CityCode    string    `gorm:"size:16;index"`
	AvatarKey   string    `gorm:"size:255"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Card table.
//
// Indexes:
//   - idx_cards_owner_created(owner_id, created_at DESC) serves owner listings and
//     the uploads-today count.
type Card struct {
	ID           string    `gorm:"primaryKey;size:36"`
	OwnerID      string    `gorm:"size:36;not null;index:idx_cards_owner_created,priority:1"`
	Title        string    `gorm:"size:120;not null"`
	StorageKey   string    `gorm:"size:255;not null;uniqueIndex"`
	ContentType  string    `gorm:"size:64;not null"`
	SizeBytes    int64     `gorm:"not null"`
	Status       string    `gorm:"size:16;not null;index"`
	UploadStatus string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_cards_owner_created,priority:2,sort:desc"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type Trade struct {
	ID                 string `gorm:"primaryKey;size:36"`
	InitiatorID        string `gorm:"size:36;not null;index"`
	ResponderID        string `gorm:"size:36;not null;index"`
	Status             string `gorm:"size:16;not null;index"`
	InitiatorConfirmed bool   `gorm:"not null;default:false"`
	ResponderConfirmed bool   `gorm:"not null;default:false"`
	ProposedAt         *time.Time
	AcceptedAt         *time.Time
	CompletedAt        *time.Time
	RejectedAt         *time.Time
	CanceledAt         *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`

	Items []TradeItem `gorm:"foreignKey:TradeID;constraint:OnDelete:CASCADE"`
}

// TradeItem rows live and die with their trade.
type TradeItem struct {
	ID        string `gorm:"primaryKey;size:36"`
	TradeID   string `gorm:"size:36;not null;uniqueIndex:idx_trade_card,priority:1"`
	CardID    string `gorm:"size:36;not null;uniqueIndex:idx_trade_card,priority:2;index"`
	OwnerSide string `gorm:"size:16;not null"`
}

// MessageThread holds one row per unordered user pair; user_a_id < user_b_id.
type MessageThread struct {
	ID            string     `gorm:"primaryKey;size:36"`
	UserAID       string     `gorm:"column:user_a_id;size:36;not null;uniqueIndex:idx_thread_pair,priority:1"`
	UserBID       string     `gorm:"column:user_b_id;size:36;not null;uniqueIndex:idx_thread_pair,priority:2;index"`
	LastMessageAt *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

type ThreadMessage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ThreadID  string    `gorm:"size:36;not null;index:idx_thread_messages_created,priority:1"`
	SenderID  string    `gorm:"size:36;not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_thread_messages_created,priority:2,sort:desc"`

	Thread MessageThread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

type MessageRequest struct {
	ID          string  `gorm:"primaryKey;size:36"`
	SenderID    string  `gorm:"size:36;not null;index:idx_request_pair,priority:1"`
	RecipientID string  `gorm:"size:36;not null;index:idx_request_pair,priority:2;index:idx_request_recipient_status,priority:1"`
	Message     string  `gorm:"type:text;not null"`
	Status      string  `gorm:"size:16;not null;index:idx_request_recipient_status,priority:2"`
	ThreadID    *string `gorm:"size:36"`
	RespondedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Friendship is directional; a blocked row stores the blocker as user_id.
type Friendship struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_friend_pair,priority:1"`
	FriendID  string    `gorm:"size:36;not null;uniqueIndex:idx_friend_pair,priority:2;index"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Rating allows one row per (trade_id, rater_id); ratings without a trade
// have a NULL trade_id and are not constrained.
type Rating struct {
	ID          string    `gorm:"primaryKey;size:36"`
	RaterID     string    `gorm:"size:36;not null;uniqueIndex:idx_rating_trade_rater,priority:2"`
	RatedUserID string    `gorm:"size:36;not null;index"`
	Score       int       `gorm:"not null"`
	TradeID     *string   `gorm:"size:36;uniqueIndex:idx_rating_trade_rater,priority:1"`
	Comment     string    `gorm:"size:1000"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

type Report struct {
	ID         string    `gorm:"primaryKey;size:36"`
	ReporterID string    `gorm:"size:36;not null;index"`
	TargetType string    `gorm:"size:16;not null;index:idx_report_target,priority:1"`
	TargetID   string    `gorm:"size:36;not null;index:idx_report_target,priority:2"`
	Reason     string    `gorm:"size:1000;not null"`
	Status     string    `gorm:"size:16;not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Post table.
//
// Indexes:
//   - idx_posts_feed(scope, city_code, status, created_at DESC) serves the board feeds.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36"`
	OwnerID   string    `gorm:"size:36;not null;index"`
	Scope     string    `gorm:"size:16;not null;index:idx_posts_feed,priority:1"`
	CityCode  *string   `gorm:"size:16;index:idx_posts_feed,priority:2"`
	Category  string    `gorm:"size:32;not null"`
	Title     string    `gorm:"size:120;not null"`
	Body      string    `gorm:"type:text"`
	Status    string    `gorm:"size:16;not null;index:idx_posts_feed,priority:3"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_posts_feed,priority:4,sort:desc"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type PostInterest struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_interest_post_user,priority:1"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_interest_post_user,priority:2"`
	Message   string    `gorm:"size:2000"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// PostLike uses a composite PK so concurrent duplicate likes fail at the DB.
type PostLike struct {
	PostID    string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type PostComment struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PostID    string    `gorm:"size:36;not null;index:idx_comments_post_created,priority:1"`
	AuthorID  string    `gorm:"size:36;not null"`
	Body      string    `gorm:"size:2000;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comments_post_created,priority:2,sort:desc"`
}

// GalleryCard ordering is rewritten as a whole on reorder, so display_order
// carries no unique index.
type GalleryCard struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_gallery_user_card,priority:1"`
	CardID       string    `gorm:"size:36;not null;uniqueIndex:idx_gallery_user_card,priority:2;index"`
	DisplayOrder int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

type MediaAsset struct {
	ID           string    `gorm:"primaryKey;size:36"`
	OwnerID      string    `gorm:"size:36;not null;index"`
	StorageKey   string    `gorm:"size:255;not null;uniqueIndex"`
	ContentType  string    `gorm:"size:64;not null"`
	SizeBytes    int64     `gorm:"not null"`
	UploadStatus string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Subscription binds a store purchase token to exactly one user.
type Subscription struct {
	ID            string    `gorm:"primaryKey;size:36"`
	UserID        string    `gorm:"size:36;not null;index"`
	Tier          string    `gorm:"size:16;not null"`
	PurchaseToken string    `gorm:"size:255;not null;uniqueIndex"`
	ExpiresAt     time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// SearchQuota is one counter row per (user, UTC day); a new day starts at zero.
type SearchQuota struct {
	UserID string `gorm:"primaryKey;size:36"`
	Day    string `gorm:"primaryKey;size:10"`
	Count  int    `gorm:"not null;default:0"`
}

// Models lists every table for AutoMigrate, parents before children.
func Models() []any {
	return []any{
		&User{}, &Profile{},
		&Card{}, &Trade{}, &TradeItem{},
		&MessageThread{}, &ThreadMessage{}, &MessageRequest{},
		&Friendship{}, &Rating{}, &Report{},
		&Post{}, &PostInterest{}, &PostLike{}, &PostComment{},
		&GalleryCard{}, &MediaAsset{},
		&Subscription{}, &SearchQuota{},
	}
}
