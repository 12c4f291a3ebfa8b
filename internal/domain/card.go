package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

type CardStatus string

const (
	CardAvailable CardStatus = "available"
	CardTrading   CardStatus = "trading"
	CardTraded    CardStatus = "traded"
)

type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadConfirmed UploadStatus = "confirmed"
)

const maxCardTitle = 120

// Card is a collectible uploaded by a user. Its image lives in object storage
// under StorageKey.
type Card struct {
	ID           string
	OwnerID      string
	Title        string
	StorageKey   string
	ContentType  string
	SizeBytes    int64
	Status       CardStatus
	UploadStatus UploadStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCard creates a pending upload owned by ownerID.
func NewCard(ownerID, title, contentType string, sizeBytes int64) (Card, error) {
	title = strings.TrimSpace(title)
	switch {
	case ownerID == "":
		return Card{}, svcErr.Validation("owner_id is required")
	case title == "":
		return Card{}, svcErr.Validation("title is required")
	case len(title) > maxCardTitle:
		return Card{}, svcErr.Validationf("title must be at most %d characters", maxCardTitle)
	case sizeBytes <= 0:
		return Card{}, svcErr.Validation("size_bytes must be positive")
	case !IsImageContentType(contentType):
		return Card{}, svcErr.Validation("content_type must be an image type")
	}

	id := uuid.NewString()
	return Card{
		ID:           id,
		OwnerID:      ownerID,
		Title:        title,
		StorageKey:   "cards/" + ownerID + "/" + id,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		Status:       CardAvailable,
		UploadStatus: UploadPending,
	}, nil
}

func (c *Card) IsOwnedBy(userID string) bool { return c.OwnerID == userID }

// ConfirmUpload flips a pending upload to confirmed. Confirming twice is a no-op.
func (c *Card) ConfirmUpload() error {
	if c.UploadStatus == UploadConfirmed {
		return nil
	}
	if c.UploadStatus != UploadPending {
		return svcErr.InvalidState("card upload is not pending")
	}
	c.UploadStatus = UploadConfirmed
	return nil
}

// MarkTrading reserves the card for an active trade.
func (c *Card) MarkTrading() error {
	if c.UploadStatus != UploadConfirmed {
		return svcErr.InvalidState("card upload is not confirmed")
	}
	if c.Status != CardAvailable {
		return svcErr.InvalidState("card is not available")
	}
	c.Status = CardTrading
	return nil
}

// Release returns a reserved card to available. Cards already available are left alone.
func (c *Card) Release() {
	if c.Status == CardTrading {
		c.Status = CardAvailable
	}
}

// Retire marks a card as traded away on trade completion.
func (c *Card) Retire() error {
	if c.Status != CardTrading {
		return svcErr.InvalidState("card is not part of an active trade")
	}
	c.Status = CardTraded
	return nil
}

func (c *Card) CanDelete() bool { return c.Status != CardTrading }

// IsImageContentType accepts the formats the mobile clients upload.
func IsImageContentType(ct string) bool {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/jpeg", "image/png", "image/webp", "image/heic":
		return true
	}
	return false
}
