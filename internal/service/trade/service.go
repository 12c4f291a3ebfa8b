package trade

import (
	"context"
	"time"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Service implements the trade use cases on top of the store.
// Every method runs in a single transaction.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

func NewTradeService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type ProposeInput struct {
	InitiatorID      string
	ResponderID      string
	OfferedCardIDs   []string
	RequestedCardIDs []string
}

// Propose creates a proposed trade and reserves every card in it.
//
// Behavior:
//   - Responder must exist and the pair must not have blocked each other.
//   - Offered cards must belong to the initiator, requested cards to the responder.
//   - Every card must be confirmed and available; all become trading.
//   - A failure anywhere leaves no trade and no reserved card behind.
func (s *Service) Propose(ctx context.Context, in ProposeInput) (domain.Trade, error) {
	s.appCtx.Log(ctx).Debug("Propose called",
		"initiator", in.InitiatorID,
		"responder", in.ResponderID,
		"offered", len(in.OfferedCardIDs),
		"requested", len(in.RequestedCardIDs),
	)

	t, err := domain.NewProposedTrade(in.InitiatorID, in.ResponderID, in.OfferedCardIDs, in.RequestedCardIDs, s.now())
	if err != nil {
		return domain.Trade{}, err
	}

	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, in.ResponderID); err != nil {
			return err
		}
		rows, err := r.Friendships.FindBetween(ctx, in.InitiatorID, in.ResponderID)
		if err != nil {
			return err
		}
		if domain.AnyBlocked(rows) {
			return svcErr.Forbidden("cannot trade with this user")
		}

		if _, err := domain.NewTradeValidator(r.Cards).ValidateProposal(ctx, t); err != nil {
			return err
		}
		if err := r.Cards.SetStatus(ctx, t.CardIDs(), domain.CardTrading); err != nil {
			return err
		}
		return r.Trades.Create(ctx, t)
	})
	if err != nil {
		return domain.Trade{}, s.fail(ctx, "Propose", err)
	}

	s.appCtx.Log(ctx).Info("trade proposed", "trade_id", t.ID, "cards", len(t.Items))
	return t, nil
}

// Accept moves a proposed trade to accepted. Responder only.
func (s *Service) Accept(ctx context.Context, tradeID, userID string) (domain.Trade, error) {
	return s.transition(ctx, "Accept", tradeID, func(r domain.Repositories, t *domain.Trade) error {
		return t.Accept(userID, s.now())
	})
}

// Reject ends a draft or proposed trade and returns every card to available.
// Responder only.
func (s *Service) Reject(ctx context.Context, tradeID, userID string) (domain.Trade, error) {
	return s.transition(ctx, "Reject", tradeID, func(r domain.Repositories, t *domain.Trade) error {
		if err := t.Reject(userID, s.now()); err != nil {
			return err
		}
		return domain.ReleaseItems(ctx, r.Cards, *t)
	})
}

// Cancel ends any active trade and returns every card to available.
// Either participant may cancel.
func (s *Service) Cancel(ctx context.Context, tradeID, userID string) (domain.Trade, error) {
	return s.transition(ctx, "Cancel", tradeID, func(r domain.Repositories, t *domain.Trade) error {
		if err := t.Cancel(userID, s.now()); err != nil {
			return err
		}
		return domain.ReleaseItems(ctx, r.Cards, *t)
	})
}

// Confirm records the caller's confirmation of an accepted trade. When both
// sides have confirmed the trade completes: its cards are retired as traded
// and unpinned from galleries.
func (s *Service) Confirm(ctx context.Context, tradeID, userID string) (domain.Trade, error) {
	return s.transition(ctx, "Confirm", tradeID, func(r domain.Repositories, t *domain.Trade) error {
		completed, err := t.Confirm(userID, s.now())
		if err != nil || !completed {
			return err
		}
		ids := t.CardIDs()
		if err := r.Cards.SetStatus(ctx, ids, domain.CardTraded); err != nil {
			return err
		}
		for _, id := range ids {
			if err := r.Gallery.RemoveCard(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns a trade visible to userID. Non-participants get NotFound so
// trade ids cannot be probed.
func (s *Service) Get(ctx context.Context, tradeID, userID string) (domain.Trade, error) {
	t, err := s.appCtx.Store.Repos().Trades.GetByID(ctx, tradeID)
	if err != nil {
		return domain.Trade{}, s.fail(ctx, "Get", err)
	}
	if !t.IsParticipant(userID) {
		return domain.Trade{}, svcErr.NotFound("trade not found")
	}
	return t, nil
}

// List returns the caller's trades, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, userID string, status domain.TradeStatus, limit int) ([]domain.Trade, error) {
	switch status {
	case "", domain.TradeDraft, domain.TradeProposed, domain.TradeAccepted,
		domain.TradeCompleted, domain.TradeRejected, domain.TradeCanceled:
	default:
		return nil, svcErr.Validation("unknown trade status")
	}
	trades, err := s.appCtx.Store.Repos().Trades.ListForUser(ctx, userID, status, pagination.ClampLimit(limit))
	if err != nil {
		return nil, s.fail(ctx, "List", err)
	}
	return trades, nil
}

// transition loads a trade, applies fn and persists the result in one transaction.
func (s *Service) transition(ctx context.Context, op, tradeID string, fn func(r domain.Repositories, t *domain.Trade) error) (domain.Trade, error) {
	s.appCtx.Log(ctx).Debug(op+" called", "trade_id", tradeID)

	var out domain.Trade
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		t, err := r.Trades.GetByID(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := fn(r, &t); err != nil {
			return err
		}
		if err := r.Trades.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return domain.Trade{}, s.fail(ctx, op, err)
	}

	s.appCtx.Log(ctx).Info("trade updated", "trade_id", out.ID, "status", out.Status)
	return out, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	if e, ok := svcErr.As(err); !ok || e.Kind == svcErr.KindInternal {
		s.appCtx.Log(ctx).Error(op+" failed", "err", err)
	}
	return svcErr.Wrap(err, "trade not found")
}
