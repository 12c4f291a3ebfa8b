package card

import (
	"context"

	"github.com/oggyb/cardswap/internal/domain"
)

// Gallery returns a user's pinned cards in display order.
func (s *Service) Gallery(ctx context.Context, userID string) ([]domain.GalleryCard, error) {
	entries, err := s.appCtx.Store.Repos().Gallery.ListForUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "Gallery", err, "gallery entry not found")
	}
	return entries, nil
}

// AddToGallery pins one of the caller's confirmed cards at the end of their gallery.
func (s *Service) AddToGallery(ctx context.Context, userID, cardID string) (domain.GalleryCard, error) {
	var out domain.GalleryCard
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		c, err := r.Cards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		current, err := r.Gallery.ListForUser(ctx, userID)
		if err != nil {
			return err
		}
		g, err := domain.NewGalleryCard(userID, c, len(current))
		if err != nil {
			return err
		}
		out = g
		return r.Gallery.Add(ctx, g)
	})
	if err != nil {
		return domain.GalleryCard{}, s.fail(ctx, "AddToGallery", err, "card not found")
	}
	return out, nil
}

// RemoveFromGallery unpins an entry and closes the gap in display order.
func (s *Service) RemoveFromGallery(ctx context.Context, userID, entryID string) error {
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if err := r.Gallery.Remove(ctx, userID, entryID); err != nil {
			return err
		}
		rest, err := r.Gallery.ListForUser(ctx, userID)
		if err != nil {
			return err
		}
		for i := range rest {
			rest[i].DisplayOrder = i
		}
		return r.Gallery.SaveOrder(ctx, rest)
	})
	return s.fail(ctx, "RemoveFromGallery", err, "gallery entry not found")
}

// ReorderGallery rewrites display order to follow ids, which must list every
// current entry exactly once.
func (s *Service) ReorderGallery(ctx context.Context, userID string, ids []string) ([]domain.GalleryCard, error) {
	var out []domain.GalleryCard
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		current, err := r.Gallery.ListForUser(ctx, userID)
		if err != nil {
			return err
		}
		ordered, err := domain.Reorder(current, ids)
		if err != nil {
			return err
		}
		out = ordered
		return r.Gallery.SaveOrder(ctx, ordered)
	})
	if err != nil {
		return nil, s.fail(ctx, "ReorderGallery", err, "gallery entry not found")
	}
	return out, nil
}
