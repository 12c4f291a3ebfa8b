package domain

import (
	"time"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

type TradeStatus string

const (
	TradeDraft     TradeStatus = "draft"
	TradeProposed  TradeStatus = "proposed"
	TradeAccepted  TradeStatus = "accepted"
	TradeCompleted TradeStatus = "completed"
	TradeRejected  TradeStatus = "rejected"
	TradeCanceled  TradeStatus = "canceled"
)

// IsTerminal reports whether no further transition is possible.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeCompleted || s == TradeRejected || s == TradeCanceled
}

// IsActive reports whether the trade still holds its cards.
func (s TradeStatus) IsActive() bool {
	return s == TradeDraft || s == TradeProposed || s == TradeAccepted
}

type TradeSide string

const (
	SideInitiator TradeSide = "initiator"
	SideResponder TradeSide = "responder"
)

// TradeItem is one card committed to one side of a trade.
type TradeItem struct {
	ID        string
	TradeID   string
	CardID    string
	OwnerSide TradeSide
}

// Trade is an exchange of cards between an initiator and a responder.
//
// Transitions:
//
//	draft -> proposed -> accepted -> completed
//	draft|proposed|accepted -> canceled
//	draft|proposed -> rejected
type Trade struct {
	ID                 string
	InitiatorID        string
	ResponderID        string
	Status             TradeStatus
	InitiatorConfirmed bool
	ResponderConfirmed bool
	Items              []TradeItem
	ProposedAt         *time.Time
	AcceptedAt         *time.Time
	CompletedAt        *time.Time
	RejectedAt         *time.Time
	CanceledAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewProposedTrade builds a proposed trade with one item per offered card.
// Card ownership and availability are checked by TradeValidator.
func NewProposedTrade(initiatorID, responderID string, initiatorCards, responderCards []string, now time.Time) (Trade, error) {
	if initiatorID == "" || responderID == "" {
		return Trade{}, svcErr.Validation("initiator_id and responder_id are required")
	}
	if initiatorID == responderID {
		return Trade{}, svcErr.Validation("cannot trade with yourself")
	}
	if len(initiatorCards)+len(responderCards) == 0 {
		return Trade{}, svcErr.Validation("a trade needs at least one card")
	}

	t := Trade{
		ID:          uuid.NewString(),
		InitiatorID: initiatorID,
		ResponderID: responderID,
		Status:      TradeProposed,
		ProposedAt:  &now,
	}

	seen := make(map[string]struct{}, len(initiatorCards)+len(responderCards))
	add := func(ids []string, side TradeSide) error {
		for _, id := range ids {
			if id == "" {
				return svcErr.Validation("card id must not be empty")
			}
			if _, dup := seen[id]; dup {
				return svcErr.Validationf("card %s is listed twice", id)
			}
			seen[id] = struct{}{}
			t.Items = append(t.Items, TradeItem{
				ID:        uuid.NewString(),
				TradeID:   t.ID,
				CardID:    id,
				OwnerSide: side,
			})
		}
		return nil
	}
	if err := add(initiatorCards, SideInitiator); err != nil {
		return Trade{}, err
	}
	if err := add(responderCards, SideResponder); err != nil {
		return Trade{}, err
	}
	return t, nil
}

func (t *Trade) IsParticipant(userID string) bool {
	return userID == t.InitiatorID || userID == t.ResponderID
}

// SideOf returns the side userID plays in the trade.
func (t *Trade) SideOf(userID string) (TradeSide, bool) {
	switch userID {
	case t.InitiatorID:
		return SideInitiator, true
	case t.ResponderID:
		return SideResponder, true
	}
	return "", false
}

// OwnerFor returns the user expected to own cards on the given side.
func (t *Trade) OwnerFor(side TradeSide) string {
	if side == SideInitiator {
		return t.InitiatorID
	}
	return t.ResponderID
}

// Counterparty returns the other participant.
func (t *Trade) Counterparty(userID string) string {
	if userID == t.InitiatorID {
		return t.ResponderID
	}
	return t.InitiatorID
}

// CardIDs lists every card referenced by the trade.
func (t *Trade) CardIDs() []string {
	ids := make([]string, 0, len(t.Items))
	for _, it := range t.Items {
		ids = append(ids, it.CardID)
	}
	return ids
}

// Accept moves proposed -> accepted. Anything else, including an accept by
// someone other than the responder, is an invalid transition.
func (t *Trade) Accept(userID string, now time.Time) error {
	if userID != t.ResponderID {
		return svcErr.InvalidState("only the responder can accept a trade")
	}
	if t.Status != TradeProposed {
		return svcErr.InvalidState("trade is not awaiting a response")
	}
	t.Status = TradeAccepted
	t.AcceptedAt = &now
	return nil
}

// Reject moves draft|proposed -> rejected. Only the responder may reject.
func (t *Trade) Reject(userID string, now time.Time) error {
	if userID != t.ResponderID {
		return svcErr.Forbidden("only the responder can reject a trade")
	}
	if t.Status != TradeProposed && t.Status != TradeDraft {
		return svcErr.InvalidState("trade can no longer be rejected")
	}
	t.Status = TradeRejected
	t.RejectedAt = &now
	return nil
}

// Cancel moves any active trade to canceled. Either participant may cancel.
func (t *Trade) Cancel(userID string, now time.Time) error {
	if !t.IsParticipant(userID) {
		return svcErr.Forbidden("only trade participants can cancel")
	}
	if !t.Status.IsActive() {
		return svcErr.InvalidState("trade can no longer be canceled")
	}
	t.Status = TradeCanceled
	t.CanceledAt = &now
	return nil
}

// Confirm records one side's confirmation of an accepted trade and reports
// whether both sides have now confirmed, in which case the trade is completed.
func (t *Trade) Confirm(userID string, now time.Time) (bool, error) {
	side, ok := t.SideOf(userID)
	if !ok {
		return false, svcErr.Forbidden("only trade participants can confirm")
	}
	if t.Status != TradeAccepted {
		return false, svcErr.InvalidState("trade is not accepted")
	}
	if side == SideInitiator {
		t.InitiatorConfirmed = true
	} else {
		t.ResponderConfirmed = true
	}
	if t.InitiatorConfirmed && t.ResponderConfirmed {
		t.Status = TradeCompleted
		t.CompletedAt = &now
		return true, nil
	}
	return false, nil
}
