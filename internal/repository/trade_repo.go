package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
)

// TradeRepository persists trades together with their items.
type TradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(database *gorm.DB) *TradeRepository {
	return &TradeRepository{db: database}
}

// Create inserts the trade and one trade_items row per item.
func (r *TradeRepository) Create(ctx context.Context, t domain.Trade) error {
	m := tradeToModel(t)
	tx := r.db.WithContext(ctx)
	if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
		return err
	}
	if len(t.Items) == 0 {
		return nil
	}
	items := make([]db.TradeItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, db.TradeItem{
			ID:        it.ID,
			TradeID:   t.ID,
			CardID:    it.CardID,
			OwnerSide: string(it.OwnerSide),
		})
	}
	return tx.Create(&items).Error
}

// GetByID loads a trade with its items.
func (r *TradeRepository) GetByID(ctx context.Context, id string) (domain.Trade, error) {
	var m db.Trade
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&m, "id = ?", id).Error
	if err != nil {
		return domain.Trade{}, notFound(err, "trade")
	}
	return tradeFromModel(m), nil
}

// Update writes status, confirmations and timestamps. Items are immutable.
func (r *TradeRepository) Update(ctx context.Context, t domain.Trade) error {
	return r.db.WithContext(ctx).
		Model(&db.Trade{ID: t.ID}).
		Select("status", "initiator_confirmed", "responder_confirmed", "updated_at",
			"proposed_at", "accepted_at", "completed_at", "rejected_at", "canceled_at").
		Updates(&db.Trade{
			Status:             string(t.Status),
			InitiatorConfirmed: t.InitiatorConfirmed,
			ResponderConfirmed: t.ResponderConfirmed,
			ProposedAt:         t.ProposedAt,
			AcceptedAt:         t.AcceptedAt,
			CompletedAt:        t.CompletedAt,
			RejectedAt:         t.RejectedAt,
			CanceledAt:         t.CanceledAt,
		}).Error
}

// ListForUser returns trades the user takes part in, newest first.
// An empty status lists every status.
func (r *TradeRepository) ListForUser(ctx context.Context, userID string, status domain.TradeStatus, limit int) ([]domain.Trade, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("initiator_id = ? OR responder_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var rows []db.Trade
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Trade, 0, len(rows))
	for _, m := range rows {
		out = append(out, tradeFromModel(m))
	}
	return out, nil
}

// ActiveTradeForCard finds the draft/proposed/accepted trade holding cardID, if any.
func (r *TradeRepository) ActiveTradeForCard(ctx context.Context, cardID string) (*domain.Trade, error) {
	var m db.Trade
	err := r.db.WithContext(ctx).
		Select("trades.*").
		Joins("JOIN trade_items ti ON ti.trade_id = trades.id").
		Where("ti.card_id = ? AND trades.status IN ?", cardID, []string{
			string(domain.TradeDraft), string(domain.TradeProposed), string(domain.TradeAccepted),
		}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := tradeFromModel(m)
	return &t, nil
}

func tradeToModel(t domain.Trade) db.Trade {
	return db.Trade{
		ID:                 t.ID,
		InitiatorID:        t.InitiatorID,
		ResponderID:        t.ResponderID,
		Status:             string(t.Status),
		InitiatorConfirmed: t.InitiatorConfirmed,
		ResponderConfirmed: t.ResponderConfirmed,
		ProposedAt:         t.ProposedAt,
		AcceptedAt:         t.AcceptedAt,
		CompletedAt:        t.CompletedAt,
		RejectedAt:         t.RejectedAt,
		CanceledAt:         t.CanceledAt,
	}
}

func tradeFromModel(m db.Trade) domain.Trade {
	t := domain.Trade{
		ID:                 m.ID,
		InitiatorID:        m.InitiatorID,
		ResponderID:        m.ResponderID,
		Status:             domain.TradeStatus(m.Status),
		InitiatorConfirmed: m.InitiatorConfirmed,
		ResponderConfirmed: m.ResponderConfirmed,
		ProposedAt:         m.ProposedAt,
		AcceptedAt:         m.AcceptedAt,
		CompletedAt:        m.CompletedAt,
		RejectedAt:         m.RejectedAt,
		CanceledAt:         m.CanceledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	for _, it := range m.Items {
		t.Items = append(t.Items, domain.TradeItem{
			ID:        it.ID,
			TradeID:   it.TradeID,
			CardID:    it.CardID,
			OwnerSide: domain.TradeSide(it.OwnerSide),
		})
	}
	return t
}
