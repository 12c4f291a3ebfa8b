package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// PostRepository provides data access for board posts.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

func (r *PostRepository) Create(ctx context.Context, p domain.Post) error {
	m := postToModel(p)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	var m db.Post
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Post{}, notFound(err, "post")
	}
	return postFromModel(m), nil
}

func (r *PostRepository) Update(ctx context.Context, p domain.Post) error {
	return r.db.WithContext(ctx).
		Model(&db.Post{ID: p.ID}).
		Updates(map[string]any{
			"title":  p.Title,
			"body":   p.Body,
			"status": string(p.Status),
		}).Error
}

// ListOpen returns the open, unexpired posts of one feed.
//
// Behavior:
//   - Global feed lists scope=global; city feed lists scope=city for f.CityCode.
//   - Posts past expires_at are hidden even before ExpireDue marks them.
//   - Ordered by created_at DESC, id DESC with cursor pagination.
func (r *PostRepository) ListOpen(ctx context.Context, f domain.PostFilter, token *string, limit int) ([]domain.Post, *string, error) {
	q := r.db.WithContext(ctx).
		Where("scope = ? AND status = ? AND expires_at > ?", string(f.Scope), string(domain.PostOpen), f.Now)
	if f.Scope == domain.ScopeCity {
		q = q.Where("city_code = ?", f.CityCode)
	}
	q = q.Order("created_at DESC, id DESC").Limit(limit + 1)

	q, err := applyCursor(q, token, "created_at", "id")
	if err != nil {
		return nil, nil, err
	}

	var rows []db.Post
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	rows, next := pagination.Trim(rows, limit, func(m db.Post) (string, time.Time) { return m.ID, m.CreatedAt })

	out := make([]domain.Post, 0, len(rows))
	for _, m := range rows {
		out = append(out, postFromModel(m))
	}
	return out, next, nil
}

// ExpireDue marks every open post whose deadline has passed as expired.
func (r *PostRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("status = ? AND expires_at <= ?", string(domain.PostOpen), now).
		Update("status", string(domain.PostExpired))
	return res.RowsAffected, res.Error
}

func postToModel(p domain.Post) db.Post {
	return db.Post{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Scope:     string(p.Scope),
		CityCode:  p.CityCode,
		Category:  string(p.Category),
		Title:     p.Title,
		Body:      p.Body,
		Status:    string(p.Status),
		ExpiresAt: p.ExpiresAt,
	}
}

func postFromModel(m db.Post) domain.Post {
	return domain.Post{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Scope:     domain.PostScope(m.Scope),
		CityCode:  m.CityCode,
		Category:  domain.PostCategory(m.Category),
		Title:     m.Title,
		Body:      m.Body,
		Status:    domain.PostStatus(m.Status),
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type InterestRepository struct {
	db *gorm.DB
}

func NewInterestRepository(database *gorm.DB) *InterestRepository {
	return &InterestRepository{db: database}
}

// Create inserts an interest; a second one by the same user on the same post
// surfaces as gorm.ErrDuplicatedKey.
func (r *InterestRepository) Create(ctx context.Context, i domain.PostInterest) error {
	m := db.PostInterest{
		ID:      i.ID,
		PostID:  i.PostID,
		UserID:  i.UserID,
		Message: i.Message,
		Status:  string(i.Status),
	}
	return r.db.WithContext(ctx).Omit("Post").Create(&m).Error
}

func (r *InterestRepository) GetByID(ctx context.Context, id string) (domain.PostInterest, error) {
	var m db.PostInterest
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.PostInterest{}, notFound(err, "interest")
	}
	return interestFromModel(m), nil
}

func (r *InterestRepository) Update(ctx context.Context, i domain.PostInterest) error {
	return r.db.WithContext(ctx).
		Model(&db.PostInterest{ID: i.ID}).
		Update("status", string(i.Status)).Error
}

func (r *InterestRepository) FindByPostAndUser(ctx context.Context, postID, userID string) (*domain.PostInterest, error) {
	var m db.PostInterest
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	i := interestFromModel(m)
	return &i, nil
}

func (r *InterestRepository) ListForPost(ctx context.Context, postID string) ([]domain.PostInterest, error) {
	var rows []db.PostInterest
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.PostInterest, 0, len(rows))
	for _, m := range rows {
		out = append(out, interestFromModel(m))
	}
	return out, nil
}

func interestFromModel(m db.PostInterest) domain.PostInterest {
	return domain.PostInterest{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Message:   m.Message,
		Status:    domain.InterestStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// LikeRepository stores one row per (post, user) like.
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

func (r *LikeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a like. A concurrent duplicate hits the composite primary
// key and surfaces as gorm.ErrDuplicatedKey.
func (r *LikeRepository) Create(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).Create(&db.PostLike{PostID: postID, UserID: userID}).Error
}

func (r *LikeRepository) Delete(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&db.PostLike{}).Error
}

func (r *LikeRepository) Count(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(database *gorm.DB) *CommentRepository {
	return &CommentRepository{db: database}
}

func (r *CommentRepository) Create(ctx context.Context, c domain.PostComment) error {
	m := db.PostComment{ID: c.ID, PostID: c.PostID, AuthorID: c.AuthorID, Body: c.Body}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (domain.PostComment, error) {
	var m db.PostComment
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.PostComment{}, notFound(err, "comment")
	}
	return commentFromModel(m), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.PostComment{}, "id = ?", id).Error
}

func (r *CommentRepository) ListForPost(ctx context.Context, postID string, token *string, limit int) ([]domain.PostComment, *string, error) {
	q := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	q, err := applyCursor(q, token, "created_at", "id")
	if err != nil {
		return nil, nil, err
	}

	var rows []db.PostComment
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	rows, next := pagination.Trim(rows, limit, func(m db.PostComment) (string, time.Time) { return m.ID, m.CreatedAt })

	out := make([]domain.PostComment, 0, len(rows))
	for _, m := range rows {
		out = append(out, commentFromModel(m))
	}
	return out, next, nil
}

func commentFromModel(m db.PostComment) domain.PostComment {
	return domain.PostComment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
