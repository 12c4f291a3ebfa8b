package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
)

type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

func (r *FriendshipRepository) Create(ctx context.Context, f domain.Friendship) error {
	m := db.Friendship{ID: f.ID, UserID: f.UserID, FriendID: f.FriendID, Status: string(f.Status)}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *FriendshipRepository) GetByID(ctx context.Context, id string) (domain.Friendship, error) {
	var m db.Friendship
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Friendship{}, notFound(err, "friendship")
	}
	return friendshipFromModel(m), nil
}

func (r *FriendshipRepository) Update(ctx context.Context, f domain.Friendship) error {
	return r.db.WithContext(ctx).
		Model(&db.Friendship{ID: f.ID}).
		Update("status", string(f.Status)).Error
}

func (r *FriendshipRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Friendship{}, "id = ?", id).Error
}

// FindBetween returns the rows linking x and y in either direction.
func (r *FriendshipRepository) FindBetween(ctx context.Context, x, y string) ([]domain.Friendship, error) {
	var rows []db.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", x, y, y, x).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Friendship, 0, len(rows))
	for _, m := range rows {
		out = append(out, friendshipFromModel(m))
	}
	return out, nil
}

// ListByStatus lists rows with the given status that involve userID.
// Blocked rows are only listed for the blocker.
func (r *FriendshipRepository) ListByStatus(ctx context.Context, userID string, status domain.FriendshipStatus, limit int) ([]domain.Friendship, error) {
	q := r.db.WithContext(ctx).Where("status = ?", string(status))
	switch status {
	case domain.FriendshipBlocked:
		q = q.Where("user_id = ?", userID)
	case domain.FriendshipPending:
		q = q.Where("friend_id = ?", userID)
	default:
		q = q.Where("user_id = ? OR friend_id = ?", userID, userID)
	}

	var rows []db.Friendship
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Friendship, 0, len(rows))
	for _, m := range rows {
		out = append(out, friendshipFromModel(m))
	}
	return out, nil
}

func friendshipFromModel(m db.Friendship) domain.Friendship {
	return domain.Friendship{
		ID:        m.ID,
		UserID:    m.UserID,
		FriendID:  m.FriendID,
		Status:    domain.FriendshipStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(database *gorm.DB) *RatingRepository {
	return &RatingRepository{db: database}
}

// Create inserts a rating; a repeat rating for the same trade by the same
// rater surfaces as gorm.ErrDuplicatedKey.
func (r *RatingRepository) Create(ctx context.Context, rt domain.Rating) error {
	m := db.Rating{
		ID:          rt.ID,
		RaterID:     rt.RaterID,
		RatedUserID: rt.RatedUserID,
		Score:       rt.Score,
		TradeID:     rt.TradeID,
		Comment:     rt.Comment,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *RatingRepository) ExistsForTrade(ctx context.Context, tradeID, raterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Rating{}).
		Where("trade_id = ? AND rater_id = ?", tradeID, raterID).
		Count(&count).Error
	return count > 0, err
}

func (r *RatingRepository) ExistsWithoutTrade(ctx context.Context, raterID, ratedUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Rating{}).
		Where("rater_id = ? AND rated_user_id = ? AND trade_id IS NULL", raterID, ratedUserID).
		Count(&count).Error
	return count > 0, err
}

// Summary returns the average score and number of ratings a user received.
func (r *RatingRepository) Summary(ctx context.Context, ratedUserID string) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("rated_user_id = ?", ratedUserID).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

func (r *ReportRepository) Create(ctx context.Context, rp domain.Report) error {
	m := db.Report{
		ID:         rp.ID,
		ReporterID: rp.ReporterID,
		TargetType: string(rp.TargetType),
		TargetID:   rp.TargetID,
		Reason:     rp.Reason,
		Status:     string(rp.Status),
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListByStatus returns reports oldest first so moderators work the queue in order.
func (r *ReportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus, limit int) ([]domain.Report, error) {
	var rows []db.Report
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Report{
			ID:         m.ID,
			ReporterID: m.ReporterID,
			TargetType: domain.ReportTarget(m.TargetType),
			TargetID:   m.TargetID,
			Reason:     m.Reason,
			Status:     domain.ReportStatus(m.Status),
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: database}
}

// Create inserts a subscription. A purchase token already bound to any user
// surfaces as gorm.ErrDuplicatedKey.
func (r *SubscriptionRepository) Create(ctx context.Context, s domain.Subscription) error {
	m := db.Subscription{
		ID:            s.ID,
		UserID:        s.UserID,
		Tier:          string(s.Tier),
		PurchaseToken: s.PurchaseToken,
		ExpiresAt:     s.ExpiresAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *SubscriptionRepository) GetByToken(ctx context.Context, token string) (domain.Subscription, error) {
	var m db.Subscription
	if err := r.db.WithContext(ctx).First(&m, "purchase_token = ?", token).Error; err != nil {
		return domain.Subscription{}, notFound(err, "subscription")
	}
	return subscriptionFromModel(m), nil
}

// ActiveFor returns the subscription expiring last among those still active at now.
func (r *SubscriptionRepository) ActiveFor(ctx context.Context, userID string, now time.Time) (*domain.Subscription, error) {
	var m db.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("expires_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := subscriptionFromModel(m)
	return &s, nil
}

func subscriptionFromModel(m db.Subscription) domain.Subscription {
	return domain.Subscription{
		ID:            m.ID,
		UserID:        m.UserID,
		Tier:          domain.Tier(m.Tier),
		PurchaseToken: m.PurchaseToken,
		ExpiresAt:     m.ExpiresAt,
		CreatedAt:     m.CreatedAt,
	}
}
