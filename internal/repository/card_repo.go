package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// CardRepository provides data access for uploaded cards.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(database *gorm.DB) *CardRepository {
	return &CardRepository{db: database}
}

func (r *CardRepository) Create(ctx context.Context, c domain.Card) error {
	m := cardToModel(c)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (domain.Card, error) {
	var m db.Card
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Card{}, notFound(err, "card")
	}
	return cardFromModel(m), nil
}

// GetByIDs returns the cards that exist among ids, locking them for the rest
// of the transaction on databases that support row locks.
func (r *CardRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []db.Card
	if err := q.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Card, 0, len(rows))
	for _, m := range rows {
		out = append(out, cardFromModel(m))
	}
	return out, nil
}

func (r *CardRepository) Update(ctx context.Context, c domain.Card) error {
	return r.db.WithContext(ctx).
		Model(&db.Card{ID: c.ID}).
		Updates(map[string]any{
			"title":         c.Title,
			"status":        string(c.Status),
			"upload_status": string(c.UploadStatus),
		}).Error
}

// SetStatus moves every listed card to status in one statement.
func (r *CardRepository) SetStatus(ctx context.Context, ids []string, status domain.CardStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&db.Card{}).
		Where("id IN ?", ids).
		Update("status", string(status)).Error
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Card{}, "id = ?", id).Error
}

// ListByOwner returns an owner's cards newest first, excluding retired ones.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via token.
func (r *CardRepository) ListByOwner(ctx context.Context, ownerID string, token *string, limit int) ([]domain.Card, *string, error) {
	q := r.db.WithContext(ctx).
		Where("owner_id = ? AND status <> ?", ownerID, string(domain.CardTraded)).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	q, err := applyCursor(q, token, "created_at", "id")
	if err != nil {
		return nil, nil, err
	}

	var rows []db.Card
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	rows, next := pagination.Trim(rows, limit, func(m db.Card) (string, time.Time) { return m.ID, m.CreatedAt })

	out := make([]domain.Card, 0, len(rows))
	for _, m := range rows {
		out = append(out, cardFromModel(m))
	}
	return out, next, nil
}

// CountUploadsSince counts upload attempts (pending or confirmed) created at or after since.
func (r *CardRepository) CountUploadsSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Card{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}

// StorageUsed sums the bytes of confirmed, non-retired cards.
func (r *CardRepository) StorageUsed(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&db.Card{}).
		Select("COALESCE(SUM(size_bytes), 0)").
		Where("owner_id = ? AND upload_status = ? AND status <> ?",
			ownerID, string(domain.UploadConfirmed), string(domain.CardTraded)).
		Scan(&total).Error
	return total, err
}

func cardToModel(c domain.Card) db.Card {
	return db.Card{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Title:        c.Title,
		StorageKey:   c.StorageKey,
		ContentType:  c.ContentType,
		SizeBytes:    c.SizeBytes,
		Status:       string(c.Status),
		UploadStatus: string(c.UploadStatus),
	}
}

func cardFromModel(m db.Card) domain.Card {
	return domain.Card{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		StorageKey:   m.StorageKey,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		Status:       domain.CardStatus(m.Status),
		UploadStatus: domain.UploadStatus(m.UploadStatus),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
