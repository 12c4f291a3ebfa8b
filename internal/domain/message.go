package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

const MaxMessageLength = 5000

// MessageThread is the single conversation between two users.
// UserAID < UserBID always holds, so a pair maps to exactly one row.
type MessageThread struct {
	ID            string
	UserAID       string
	UserBID       string
	LastMessageAt *time.Time
	CreatedAt     time.Time
}

// NormalizePair orders two user ids so lookups do not depend on direction.
func NormalizePair(x, y string) (string, string) {
	if x < y {
		return x, y
	}
	return y, x
}

func NewMessageThread(x, y string) (MessageThread, error) {
	if x == "" || y == "" {
		return MessageThread{}, svcErr.Validation("both participants are required")
	}
	if x == y {
		return MessageThread{}, svcErr.Validation("cannot open a thread with yourself")
	}
	a, b := NormalizePair(x, y)
	return MessageThread{ID: uuid.NewString(), UserAID: a, UserBID: b}, nil
}

func (t *MessageThread) HasParticipant(userID string) bool {
	return userID == t.UserAID || userID == t.UserBID
}

func (t *MessageThread) Other(userID string) string {
	if userID == t.UserAID {
		return t.UserBID
	}
	return t.UserAID
}

// ThreadMessage is one message posted to a thread.
type ThreadMessage struct {
	ID        string
	ThreadID  string
	SenderID  string
	Body      string
	CreatedAt time.Time
}

func NewThreadMessage(threadID, senderID, body string) (ThreadMessage, error) {
	body, err := validateMessageBody(body)
	if err != nil {
		return ThreadMessage{}, err
	}
	return ThreadMessage{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		SenderID: senderID,
		Body:     body,
	}, nil
}

type MessageRequestStatus string

const (
	RequestPending  MessageRequestStatus = "pending"
	RequestAccepted MessageRequestStatus = "accepted"
	RequestDeclined MessageRequestStatus = "declined"
)

// MessageRequest gates first contact: no thread exists until the recipient accepts.
type MessageRequest struct {
	ID          string
	SenderID    string
	RecipientID string
	Message     string
	Status      MessageRequestStatus
	ThreadID    *string
	RespondedAt *time.Time
	CreatedAt   time.Time
}

func NewMessageRequest(senderID, recipientID, message string) (MessageRequest, error) {
	if senderID == "" || recipientID == "" {
		return MessageRequest{}, svcErr.Validation("sender_id and recipient_id are required")
	}
	if senderID == recipientID {
		return MessageRequest{}, svcErr.Validation("cannot send a message request to yourself")
	}
	body, err := validateMessageBody(message)
	if err != nil {
		return MessageRequest{}, err
	}
	return MessageRequest{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     body,
		Status:      RequestPending,
	}, nil
}

// Accept binds the request to its thread. Only the recipient may accept.
func (r *MessageRequest) Accept(userID, threadID string, now time.Time) error {
	if userID != r.RecipientID {
		return svcErr.Forbidden("only the recipient can accept a message request")
	}
	if r.Status != RequestPending {
		return svcErr.InvalidState("message request is no longer pending")
	}
	r.Status = RequestAccepted
	r.ThreadID = &threadID
	r.RespondedAt = &now
	return nil
}

// Decline closes the request without creating a thread.
func (r *MessageRequest) Decline(userID string, now time.Time) error {
	if userID != r.RecipientID {
		return svcErr.Forbidden("only the recipient can decline a message request")
	}
	if r.Status != RequestPending {
		return svcErr.InvalidState("message request is no longer pending")
	}
	r.Status = RequestDeclined
	r.RespondedAt = &now
	return nil
}

func validateMessageBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n == 0 {
		return "", svcErr.Validation("message must not be empty")
	}
	if n > MaxMessageLength {
		return "", svcErr.Validationf("message must be at most %d characters", MaxMessageLength)
	}
	return body, nil
}
