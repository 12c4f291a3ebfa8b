package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// ThreadRepository persists message threads and their messages.
type ThreadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(database *gorm.DB) *ThreadRepository {
	return &ThreadRepository{db: database}
}

// Create inserts a thread. A second thread for the same pair violates
// idx_thread_pair and surfaces as gorm.ErrDuplicatedKey.
func (r *ThreadRepository) Create(ctx context.Context, t domain.MessageThread) error {
	a, b := domain.NormalizePair(t.UserAID, t.UserBID)
	m := db.MessageThread{ID: t.ID, UserAID: a, UserBID: b, LastMessageAt: t.LastMessageAt}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *ThreadRepository) GetByID(ctx context.Context, id string) (domain.MessageThread, error) {
	var m db.MessageThread
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.MessageThread{}, notFound(err, "thread")
	}
	return threadFromModel(m), nil
}

// FindByPair looks the pair up in normalized order; no OR over both column orders needed.
func (r *ThreadRepository) FindByPair(ctx context.Context, x, y string) (*domain.MessageThread, error) {
	a, b := domain.NormalizePair(x, y)
	var m db.MessageThread
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := threadFromModel(m)
	return &t, nil
}

func (r *ThreadRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.MessageThread{ID: id}).
		Update("last_message_at", at).Error
}

// ListForUser returns the user's threads, most recently active first.
func (r *ThreadRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.MessageThread, error) {
	var rows []db.MessageThread
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.MessageThread, 0, len(rows))
	for _, m := range rows {
		out = append(out, threadFromModel(m))
	}
	return out, nil
}

// AppendMessage stores a message and returns it with its creation time.
func (r *ThreadRepository) AppendMessage(ctx context.Context, msg domain.ThreadMessage) (domain.ThreadMessage, error) {
	m := db.ThreadMessage{ID: msg.ID, ThreadID: msg.ThreadID, SenderID: msg.SenderID, Body: msg.Body}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return domain.ThreadMessage{}, err
	}
	return messageFromModel(m), nil
}

// ListMessages returns a thread's messages newest first with cursor pagination.
func (r *ThreadRepository) ListMessages(ctx context.Context, threadID string, token *string, limit int) ([]domain.ThreadMessage, *string, error) {
	q := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	q, err := applyCursor(q, token, "created_at", "id")
	if err != nil {
		return nil, nil, err
	}

	var rows []db.ThreadMessage
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	rows, next := pagination.Trim(rows, limit, func(m db.ThreadMessage) (string, time.Time) { return m.ID, m.CreatedAt })

	out := make([]domain.ThreadMessage, 0, len(rows))
	for _, m := range rows {
		out = append(out, messageFromModel(m))
	}
	return out, next, nil
}

// MessageRequestRepository persists first-contact requests.
type MessageRequestRepository struct {
	db *gorm.DB
}

func NewMessageRequestRepository(database *gorm.DB) *MessageRequestRepository {
	return &MessageRequestRepository{db: database}
}

func (r *MessageRequestRepository) Create(ctx context.Context, req domain.MessageRequest) error {
	m := requestToModel(req)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *MessageRequestRepository) GetByID(ctx context.Context, id string) (domain.MessageRequest, error) {
	var m db.MessageRequest
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.MessageRequest{}, notFound(err, "message request")
	}
	return requestFromModel(m), nil
}

func (r *MessageRequestRepository) Update(ctx context.Context, req domain.MessageRequest) error {
	return r.db.WithContext(ctx).
		Model(&db.MessageRequest{ID: req.ID}).
		Updates(map[string]any{
			"status":       string(req.Status),
			"thread_id":    req.ThreadID,
			"responded_at": req.RespondedAt,
		}).Error
}

// FindPendingBetween checks both directions for a pending request.
func (r *MessageRequestRepository) FindPendingBetween(ctx context.Context, x, y string) (*domain.MessageRequest, error) {
	var m db.MessageRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.RequestPending)).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", x, y, y, x).
		Order("created_at ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	req := requestFromModel(m)
	return &req, nil
}

func (r *MessageRequestRepository) ListPendingFor(ctx context.Context, recipientID string, limit int) ([]domain.MessageRequest, error) {
	var rows []db.MessageRequest
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", recipientID, string(domain.RequestPending)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.MessageRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, requestFromModel(m))
	}
	return out, nil
}

func threadFromModel(m db.MessageThread) domain.MessageThread {
	return domain.MessageThread{
		ID:            m.ID,
		UserAID:       m.UserAID,
		UserBID:       m.UserBID,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

func messageFromModel(m db.ThreadMessage) domain.ThreadMessage {
	return domain.ThreadMessage{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func requestToModel(r domain.MessageRequest) db.MessageRequest {
	return db.MessageRequest{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Message:     r.Message,
		Status:      string(r.Status),
		ThreadID:    r.ThreadID,
		RespondedAt: r.RespondedAt,
	}
}

func requestFromModel(m db.MessageRequest) domain.MessageRequest {
	return domain.MessageRequest{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Message:     m.Message,
		Status:      domain.MessageRequestStatus(m.Status),
		ThreadID:    m.ThreadID,
		RespondedAt: m.RespondedAt,
		CreatedAt:   m.CreatedAt,
	}
}
