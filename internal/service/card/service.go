package card

import (
	"context"
	"time"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Service implements card uploads, media uploads, quotas and the gallery.
// Image bytes never pass through the API: clients PUT to a presigned URL and
// then confirm.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

func NewCardService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// UploadTicket is what a client needs to upload the image for a new card or media asset.
type UploadTicket struct {
	Card      *domain.Card
	Media     *domain.MediaAsset
	UploadURL string
	ExpiresIn time.Duration
}

type UploadInput struct {
	OwnerID     string
	Title       string
	ContentType string
	SizeBytes   int64
}

// RequestUpload creates a pending card and returns a presigned PUT URL.
//
// Behavior:
//   - Fails with QuotaExceeded when no uploads remain today or the storage
//     left is smaller than the declared size.
//   - The pending card counts against today's uploads immediately.
//   - Storage only counts once the upload is confirmed.
func (s *Service) RequestUpload(ctx context.Context, in UploadInput) (UploadTicket, error) {
	s.appCtx.Log(ctx).Debug("RequestUpload called", "owner", in.OwnerID, "size", in.SizeBytes)

	if err := s.checkSize(in.SizeBytes); err != nil {
		return UploadTicket{}, err
	}
	c, err := domain.NewCard(in.OwnerID, in.Title, in.ContentType, in.SizeBytes)
	if err != nil {
		return UploadTicket{}, err
	}

	var url string
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		q, err := s.quota(ctx, r, in.OwnerID)
		if err != nil {
			return err
		}
		if err := q.Allows(in.SizeBytes); err != nil {
			return err
		}
		if err := r.Cards.Create(ctx, c); err != nil {
			return err
		}
		url, err = s.appCtx.Storage.PresignUpload(ctx, c.StorageKey, c.ContentType, c.SizeBytes)
		return err
	})
	if err != nil {
		return UploadTicket{}, s.fail(ctx, "RequestUpload", err, "card not found")
	}

	return UploadTicket{Card: &c, UploadURL: url, ExpiresIn: s.appCtx.Config.Storage.PresignTTL}, nil
}

// ConfirmUpload marks a card's upload complete once the object exists in storage.
func (s *Service) ConfirmUpload(ctx context.Context, cardID, userID string) (domain.Card, error) {
	s.appCtx.Log(ctx).Debug("ConfirmUpload called", "card_id", cardID, "user", userID)

	var out domain.Card
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		c, err := domain.NewCardValidator(r.Cards, r.Trades).RequireOwner(ctx, cardID, userID)
		if err != nil {
			return err
		}
		if c.UploadStatus == domain.UploadConfirmed {
			out = c
			return nil
		}
		ok, err := s.appCtx.Storage.Exists(ctx, c.StorageKey)
		if err != nil {
			return svcErr.Internal("storage unavailable", err)
		}
		if !ok {
			return svcErr.InvalidState("image has not been uploaded yet")
		}
		if err := c.ConfirmUpload(); err != nil {
			return err
		}
		out = c
		return r.Cards.Update(ctx, c)
	})
	if err != nil {
		return domain.Card{}, s.fail(ctx, "ConfirmUpload", err, "card not found")
	}
	return out, nil
}

// Delete removes a card that is not locked in a trade. The stored object is
// deleted afterwards on a best-effort basis.
func (s *Service) Delete(ctx context.Context, cardID, userID string) error {
	s.appCtx.Log(ctx).Debug("Delete called", "card_id", cardID, "user", userID)

	var key string
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		v := domain.NewCardValidator(r.Cards, r.Trades)
		c, err := v.RequireOwner(ctx, cardID, userID)
		if err != nil {
			return err
		}
		if err := v.RequireDeletable(ctx, c); err != nil {
			return err
		}
		if err := r.Gallery.RemoveCard(ctx, c.ID); err != nil {
			return err
		}
		key = c.StorageKey
		return r.Cards.Delete(ctx, c.ID)
	})
	if err != nil {
		return s.fail(ctx, "Delete", err, "card not found")
	}

	if err := s.appCtx.Storage.Delete(ctx, key); err != nil {
		s.appCtx.Log(ctx).Warn("failed to delete card object", "key", key, "err", err)
	}
	return nil
}

// ListCards returns an owner's cards, newest first, excluding traded ones.
func (s *Service) ListCards(ctx context.Context, ownerID string, token *string, limit int) ([]domain.Card, *string, error) {
	cards, next, err := s.appCtx.Store.Repos().Cards.ListByOwner(ctx, ownerID, token, pagination.ClampLimit(limit))
	if err != nil {
		return nil, nil, s.fail(ctx, "ListCards", err, "card not found")
	}
	return cards, next, nil
}

// DownloadURL presigns a GET for a card image. Pending uploads are only
// visible to their owner.
func (s *Service) DownloadURL(ctx context.Context, cardID, userID string) (string, error) {
	c, err := s.appCtx.Store.Repos().Cards.GetByID(ctx, cardID)
	if err != nil {
		return "", s.fail(ctx, "DownloadURL", err, "card not found")
	}
	if c.UploadStatus != domain.UploadConfirmed && !c.IsOwnedBy(userID) {
		return "", svcErr.NotFound("card not found")
	}
	return s.appCtx.Storage.PresignDownload(ctx, c.StorageKey)
}

// GetQuota derives the caller's upload quota from their tier and usage.
func (s *Service) GetQuota(ctx context.Context, userID string) (domain.Quota, error) {
	q, err := s.quota(ctx, s.appCtx.Store.Repos(), userID)
	if err != nil {
		return domain.Quota{}, s.fail(ctx, "GetQuota", err, "user not found")
	}
	return q, nil
}

type MediaInput struct {
	OwnerID     string
	ContentType string
	SizeBytes   int64
}

// RequestMediaUpload creates a pending media asset under the same quota as cards.
func (s *Service) RequestMediaUpload(ctx context.Context, in MediaInput) (UploadTicket, error) {
	s.appCtx.Log(ctx).Debug("RequestMediaUpload called", "owner", in.OwnerID, "size", in.SizeBytes)

	if err := s.checkSize(in.SizeBytes); err != nil {
		return UploadTicket{}, err
	}
	m, err := domain.NewMediaAsset(in.OwnerID, in.ContentType, in.SizeBytes)
	if err != nil {
		return UploadTicket{}, err
	}

	var url string
	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		q, err := s.quota(ctx, r, in.OwnerID)
		if err != nil {
			return err
		}
		if err := q.Allows(in.SizeBytes); err != nil {
			return err
		}
		if err := r.Media.Create(ctx, m); err != nil {
			return err
		}
		url, err = s.appCtx.Storage.PresignUpload(ctx, m.StorageKey, m.ContentType, m.SizeBytes)
		return err
	})
	if err != nil {
		return UploadTicket{}, s.fail(ctx, "RequestMediaUpload", err, "media not found")
	}
	return UploadTicket{Media: &m, UploadURL: url, ExpiresIn: s.appCtx.Config.Storage.PresignTTL}, nil
}

// ConfirmMediaUpload marks a media upload complete once the object exists.
func (s *Service) ConfirmMediaUpload(ctx context.Context, mediaID, userID string) (domain.MediaAsset, error) {
	var out domain.MediaAsset
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		m, err := r.Media.GetByID(ctx, mediaID)
		if err != nil {
			return err
		}
		if m.OwnerID != userID {
			return svcErr.Forbidden("media belongs to another user")
		}
		out = m
		if m.UploadStatus == domain.UploadConfirmed {
			return nil
		}
		ok, err := s.appCtx.Storage.Exists(ctx, m.StorageKey)
		if err != nil {
			return svcErr.Internal("storage unavailable", err)
		}
		if !ok {
			return svcErr.InvalidState("image has not been uploaded yet")
		}
		m.ConfirmUpload()
		out = m
		return r.Media.Update(ctx, m)
	})
	if err != nil {
		return domain.MediaAsset{}, s.fail(ctx, "ConfirmMediaUpload", err, "media not found")
	}
	return out, nil
}

// quota reads tier and usage through r so it sees the caller's transaction.
func (s *Service) quota(ctx context.Context, r domain.Repositories, userID string) (domain.Quota, error) {
	now := s.now()
	sub, err := r.Subscriptions.ActiveFor(ctx, userID, now)
	if err != nil {
		return domain.Quota{}, err
	}
	q := domain.Quota{Tier: domain.TierOf(sub)}
	limits := s.appCtx.Config.Quota
	if q.Tier == domain.TierPremium {
		q.DailyUploadLimit, q.TotalStorageBytes = limits.PremiumDailyUploads, limits.PremiumStorageBytes
	} else {
		q.DailyUploadLimit, q.TotalStorageBytes = limits.FreeDailyUploads, limits.FreeStorageBytes
	}

	since := domain.StartOfDay(now)
	cards, err := r.Cards.CountUploadsSince(ctx, userID, since)
	if err != nil {
		return domain.Quota{}, err
	}
	media, err := r.Media.CountUploadsSince(ctx, userID, since)
	if err != nil {
		return domain.Quota{}, err
	}
	q.UploadsToday = int(cards + media)

	cardBytes, err := r.Cards.StorageUsed(ctx, userID)
	if err != nil {
		return domain.Quota{}, err
	}
	mediaBytes, err := r.Media.StorageUsed(ctx, userID)
	if err != nil {
		return domain.Quota{}, err
	}
	q.StorageUsedBytes = cardBytes + mediaBytes
	return q, nil
}

func (s *Service) checkSize(size int64) error {
	if max := s.appCtx.Config.Quota.MaxUploadSizeBytes; max > 0 && size > max {
		return svcErr.Validationf("size_bytes must be at most %d", max)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if e, ok := svcErr.As(err); !ok || e.Kind == svcErr.KindInternal {
		s.appCtx.Log(ctx).Error(op+" failed", "err", err)
	}
	return svcErr.Wrap(err, notFoundMsg)
}
