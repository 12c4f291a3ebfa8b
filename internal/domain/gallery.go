package domain

import (
	"time"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

// GalleryCard pins one of a user's cards to their public gallery.
type GalleryCard struct {
	ID           string
	UserID       string
	CardID       string
	DisplayOrder int
	CreatedAt    time.Time
}

func NewGalleryCard(userID string, card Card, order int) (GalleryCard, error) {
	if !card.IsOwnedBy(userID) {
		return GalleryCard{}, svcErr.Forbidden("card belongs to another user")
	}
	if card.UploadStatus != UploadConfirmed {
		return GalleryCard{}, svcErr.InvalidState("card upload is not confirmed")
	}
	return GalleryCard{ID: uuid.NewString(), UserID: userID, CardID: card.ID, DisplayOrder: order}, nil
}

// Reorder assigns display_order 0..n-1 following ids. ids must name exactly
// the current gallery entries.
func Reorder(current []GalleryCard, ids []string) ([]GalleryCard, error) {
	if len(ids) != len(current) {
		return nil, svcErr.Validation("order must list every gallery entry exactly once")
	}
	byID := make(map[string]GalleryCard, len(current))
	for _, g := range current {
		byID[g.ID] = g
	}
	out := make([]GalleryCard, 0, len(ids))
	for i, id := range ids {
		g, ok := byID[id]
		if !ok {
			return nil, svcErr.Validationf("unknown or duplicate gallery entry %s", id)
		}
		delete(byID, id)
		g.DisplayOrder = i
		out = append(out, g)
	}
	return out, nil
}

// MediaAsset is a non-card upload such as an avatar or post photo.
type MediaAsset struct {
	ID           string
	OwnerID      string
	StorageKey   string
	ContentType  string
	SizeBytes    int64
	UploadStatus UploadStatus
	CreatedAt    time.Time
}

func NewMediaAsset(ownerID, contentType string, sizeBytes int64) (MediaAsset, error) {
	if ownerID == "" {
		return MediaAsset{}, svcErr.Validation("owner_id is required")
	}
	if sizeBytes <= 0 {
		return MediaAsset{}, svcErr.Validation("size_bytes must be positive")
	}
	if !IsImageContentType(contentType) {
		return MediaAsset{}, svcErr.Validation("content_type must be an image type")
	}
	id := uuid.NewString()
	return MediaAsset{
		ID:           id,
		OwnerID:      ownerID,
		StorageKey:   "media/" + ownerID + "/" + id,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		UploadStatus: UploadPending,
	}, nil
}

func (m *MediaAsset) ConfirmUpload() {
	m.UploadStatus = UploadConfirmed
}
