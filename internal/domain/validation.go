package domain

import (
	"context"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

// CardValidator holds ownership and lifecycle checks shared by card use cases.
type CardValidator struct {
	cards  CardRepository
	trades TradeRepository
}

func NewCardValidator(cards CardRepository, trades TradeRepository) CardValidator {
	return CardValidator{cards: cards, trades: trades}
}

// RequireOwner loads a card and fails unless userID owns it.
func (v CardValidator) RequireOwner(ctx context.Context, cardID, userID string) (Card, error) {
	card, err := v.cards.GetByID(ctx, cardID)
	if err != nil {
		return Card{}, err
	}
	if !card.IsOwnedBy(userID) {
		return Card{}, svcErr.Forbidden("card belongs to another user")
	}
	return card, nil
}

// RequireDeletable fails while the card is locked in a trade. The card
// status is checked first, then the trade items, so a card whose status
// drifted out of sync with an open trade still cannot be deleted.
func (v CardValidator) RequireDeletable(ctx context.Context, card Card) error {
	if !card.CanDelete() {
		return svcErr.InvalidState("card is part of an active trade")
	}
	active, err := v.trades.ActiveTradeForCard(ctx, card.ID)
	if err != nil {
		return err
	}
	if active != nil {
		return svcErr.InvalidState("card is part of an active trade")
	}
	return nil
}

// TradeValidator checks that every card in a proposal may be traded.
type TradeValidator struct {
	cards CardRepository
}

func NewTradeValidator(cards CardRepository) TradeValidator {
	return TradeValidator{cards: cards}
}

// ValidateProposal loads the referenced cards and verifies each one is owned by
// the side it is listed on, confirmed and available. It returns the cards
// keyed by id.
func (v TradeValidator) ValidateProposal(ctx context.Context, t Trade) (map[string]Card, error) {
	cards, err := v.cards.GetByIDs(ctx, t.CardIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	for _, it := range t.Items {
		c, ok := byID[it.CardID]
		if !ok {
			return nil, svcErr.NotFound("card " + it.CardID + " not found")
		}
		if !c.IsOwnedBy(t.OwnerFor(it.OwnerSide)) {
			return nil, svcErr.Validationf("card %s is not owned by the %s", c.ID, it.OwnerSide)
		}
		if c.UploadStatus != UploadConfirmed {
			return nil, svcErr.InvalidState("card " + c.ID + " upload is not confirmed")
		}
		if c.Status != CardAvailable {
			return nil, svcErr.InvalidState("card " + c.ID + " is not available")
		}
	}
	return byID, nil
}

// ReleaseItems returns every card referenced by the trade to available.
// Cancel and reject both go through here so no card is left stuck in trading.
func ReleaseItems(ctx context.Context, cards CardRepository, t Trade) error {
	ids := t.CardIDs()
	if len(ids) == 0 {
		return nil
	}
	return cards.SetStatus(ctx, ids, CardAvailable)
}
