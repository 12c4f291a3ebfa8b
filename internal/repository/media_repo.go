package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
)

// GalleryRepository keeps the ordered list of cards a user shows off.
type GalleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(database *gorm.DB) *GalleryRepository {
	return &GalleryRepository{db: database}
}

func (r *GalleryRepository) ListForUser(ctx context.Context, userID string) ([]domain.GalleryCard, error) {
	var rows []db.GalleryCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("display_order ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.GalleryCard, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.GalleryCard{
			ID:           m.ID,
			UserID:       m.UserID,
			CardID:       m.CardID,
			DisplayOrder: m.DisplayOrder,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}

// Add pins a card; pinning the same card twice surfaces as gorm.ErrDuplicatedKey.
func (r *GalleryRepository) Add(ctx context.Context, g domain.GalleryCard) error {
	m := db.GalleryCard{ID: g.ID, UserID: g.UserID, CardID: g.CardID, DisplayOrder: g.DisplayOrder}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *GalleryRepository) Remove(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&db.GalleryCard{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "gallery entry")
	}
	return nil
}

// RemoveCard unpins a card from every gallery, used when the card leaves its owner.
func (r *GalleryRepository) RemoveCard(ctx context.Context, cardID string) error {
	return r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Delete(&db.GalleryCard{}).Error
}

func (r *GalleryRepository) SaveOrder(ctx context.Context, entries []domain.GalleryCard) error {
	tx := r.db.WithContext(ctx)
	for _, g := range entries {
		err := tx.Model(&db.GalleryCard{}).
			Where("id = ? AND user_id = ?", g.ID, g.UserID).
			Update("display_order", g.DisplayOrder).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// MediaRepository stores non-card uploads.
type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(database *gorm.DB) *MediaRepository {
	return &MediaRepository{db: database}
}

func (r *MediaRepository) Create(ctx context.Context, m domain.MediaAsset) error {
	row := db.MediaAsset{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		StorageKey:   m.StorageKey,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		UploadStatus: string(m.UploadStatus),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (domain.MediaAsset, error) {
	var m db.MediaAsset
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.MediaAsset{}, notFound(err, "media")
	}
	return domain.MediaAsset{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		StorageKey:   m.StorageKey,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		UploadStatus: domain.UploadStatus(m.UploadStatus),
		CreatedAt:    m.CreatedAt,
	}, nil
}

func (r *MediaRepository) Update(ctx context.Context, m domain.MediaAsset) error {
	return r.db.WithContext(ctx).
		Model(&db.MediaAsset{ID: m.ID}).
		Update("upload_status", string(m.UploadStatus)).Error
}

func (r *MediaRepository) StorageUsed(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&db.MediaAsset{}).
		Select("COALESCE(SUM(size_bytes), 0)").
		Where("owner_id = ? AND upload_status = ?", ownerID, string(domain.UploadConfirmed)).
		Scan(&total).Error
	return total, err
}

func (r *MediaRepository) CountUploadsSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MediaAsset{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}

// SearchQuotaRepository keeps one counter row per (user, day).
type SearchQuotaRepository struct {
	db *gorm.DB
}

func NewSearchQuotaRepository(database *gorm.DB) *SearchQuotaRepository {
	return &SearchQuotaRepository{db: database}
}

// Count returns the searches used on day; a missing row means zero.
func (r *SearchQuotaRepository) Count(ctx context.Context, userID, day string) (int, error) {
	var rows []db.SearchQuota
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].Count, nil
}

// Increment bumps the counter with an upsert and returns the new value.
func (r *SearchQuotaRepository) Increment(ctx context.Context, userID, day string) (int, error) {
	tx := r.db.WithContext(ctx)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + 1")}),
	}).Create(&db.SearchQuota{UserID: userID, Day: day, Count: 1}).Error
	if err != nil {
		return 0, err
	}
	return r.Count(ctx, userID, day)
}
