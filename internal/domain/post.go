package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

type PostScope string

const (
	ScopeGlobal PostScope = "global"
	ScopeCity   PostScope = "city"
)

type PostStatus string

const (
	PostOpen    PostStatus = "open"
	PostClosed  PostStatus = "closed"
	PostExpired PostStatus = "expired"
	PostDeleted PostStatus = "deleted"
)

type PostCategory string

const (
	CategoryWanted   PostCategory = "wanted"
	CategoryOffering PostCategory = "offering"
	CategoryMeetup   PostCategory = "meetup"
	CategoryGeneral  PostCategory = "general"
)

func (c PostCategory) Valid() bool {
	switch c {
	case CategoryWanted, CategoryOffering, CategoryMeetup, CategoryGeneral:
		return true
	}
	return false
}

const (
	maxPostTitle = 120
	maxPostBody  = 5000
	maxComment   = 2000
)

// Post is a board entry visible globally or within one city.
type Post struct {
	ID        string
	OwnerID   string
	Scope     PostScope
	CityCode  *string
	Category  PostCategory
	Title     string
	Body      string
	Status    PostStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewPostInput struct {
	OwnerID  string
	Scope    PostScope
	CityCode string
	Category PostCategory
	Title    string
	Body     string
}

// NewPost validates input and sets the expiry lifetime from now.
func NewPost(in NewPostInput, now time.Time, lifetime time.Duration) (Post, error) {
	if in.OwnerID == "" {
		return Post{}, svcErr.Validation("owner_id is required")
	}
	city := strings.ToUpper(strings.TrimSpace(in.CityCode))
	var cityCode *string
	switch in.Scope {
	case ScopeCity:
		if city == "" {
			return Post{}, svcErr.Validation("city_code is required for city posts")
		}
		cityCode = &city
	case ScopeGlobal:
		if city != "" {
			return Post{}, svcErr.Validation("city_code is only allowed for city posts")
		}
	default:
		return Post{}, svcErr.Validation("scope must be global or city")
	}
	if !in.Category.Valid() {
		return Post{}, svcErr.Validation("unknown category")
	}
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n == 0 || n > maxPostTitle {
		return Post{}, svcErr.Validationf("title must be 1..%d characters", maxPostTitle)
	}
	body := strings.TrimSpace(in.Body)
	if utf8.RuneCountInString(body) > maxPostBody {
		return Post{}, svcErr.Validationf("body must be at most %d characters", maxPostBody)
	}
	if lifetime <= 0 {
		return Post{}, svcErr.Validation("post lifetime must be positive")
	}

	return Post{
		ID:        uuid.NewString(),
		OwnerID:   in.OwnerID,
		Scope:     in.Scope,
		CityCode:  cityCode,
		Category:  in.Category,
		Title:     title,
		Body:      body,
		Status:    PostOpen,
		ExpiresAt: now.Add(lifetime),
	}, nil
}

// IsExpired is monotonic: once the deadline passes it stays true.
func (p *Post) IsExpired(now time.Time) bool {
	return p.Status == PostExpired || !now.Before(p.ExpiresAt)
}

// AcceptsInterest reports whether users may still respond to the post.
func (p *Post) AcceptsInterest(now time.Time) bool {
	return p.Status == PostOpen && !p.IsExpired(now)
}

// Close stops an open post from collecting interest.
func (p *Post) Close(userID string) error {
	if userID != p.OwnerID {
		return svcErr.Forbidden("only the owner can close a post")
	}
	if p.Status != PostOpen {
		return svcErr.InvalidState("only open posts can be closed")
	}
	p.Status = PostClosed
	return nil
}

// Delete is final; deleting a deleted post is rejected.
func (p *Post) Delete(userID string) error {
	if userID != p.OwnerID {
		return svcErr.Forbidden("only the owner can delete a post")
	}
	if p.Status == PostDeleted {
		return svcErr.InvalidState("post already deleted")
	}
	p.Status = PostDeleted
	return nil
}

// MarkExpired records a lapsed deadline on an open post.
func (p *Post) MarkExpired(now time.Time) bool {
	if p.Status == PostOpen && p.IsExpired(now) {
		p.Status = PostExpired
		return true
	}
	return false
}

type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestRejected InterestStatus = "rejected"
)

// PostInterest is a user's response to someone else's post.
type PostInterest struct {
	ID        string
	PostID    string
	UserID    string
	Message   string
	Status    InterestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPostInterest(post Post, userID, message string, now time.Time) (PostInterest, error) {
	if userID == "" {
		return PostInterest{}, svcErr.Validation("user_id is required")
	}
	if post.OwnerID == userID {
		return PostInterest{}, svcErr.Validation("cannot express interest in your own post")
	}
	if !post.AcceptsInterest(now) {
		return PostInterest{}, svcErr.InvalidState("post is no longer open")
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > maxComment {
		return PostInterest{}, svcErr.Validationf("message must be at most %d characters", maxComment)
	}
	return PostInterest{
		ID:      uuid.NewString(),
		PostID:  post.ID,
		UserID:  userID,
		Message: message,
		Status:  InterestPending,
	}, nil
}

// Respond lets the post owner accept or reject a pending interest.
func (i *PostInterest) Respond(post Post, userID string, accept bool) error {
	if userID != post.OwnerID {
		return svcErr.Forbidden("only the post owner can respond to interest")
	}
	if i.Status != InterestPending {
		return svcErr.InvalidState("interest already answered")
	}
	if accept {
		i.Status = InterestAccepted
	} else {
		i.Status = InterestRejected
	}
	return nil
}

// PostComment is a reply under a post.
type PostComment struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

func NewPostComment(postID, authorID, body string) (PostComment, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > maxComment {
		return PostComment{}, svcErr.Validationf("comment must be 1..%d characters", maxComment)
	}
	return PostComment{ID: uuid.NewString(), PostID: postID, AuthorID: authorID, Body: body}, nil
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool
	Count int64
}
