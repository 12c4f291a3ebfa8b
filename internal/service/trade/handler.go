package trade

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type proposeRequest struct {
	ResponderID      string   `json:"responder_id" binding:"required"`
	OfferedCardIDs   []string `json:"offered_card_ids"`
	RequestedCardIDs []string `json:"requested_card_ids"`
}

type tradeItemView struct {
	CardID    string `json:"card_id"`
	OwnerSide string `json:"owner_side"`
}

type tradeView struct {
	ID                 string          `json:"id"`
	InitiatorID        string          `json:"initiator_id"`
	ResponderID        string          `json:"responder_id"`
	Status             string          `json:"status"`
	InitiatorConfirmed bool            `json:"initiator_confirmed"`
	ResponderConfirmed bool            `json:"responder_confirmed"`
	Items              []tradeItemView `json:"items"`
	ProposedAt         *time.Time      `json:"proposed_at,omitempty"`
	AcceptedAt         *time.Time      `json:"accepted_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	RejectedAt         *time.Time      `json:"rejected_at,omitempty"`
	CanceledAt         *time.Time      `json:"canceled_at,omitempty"`
}

func toView(t domain.Trade) tradeView {
	v := tradeView{
		ID:                 t.ID,
		InitiatorID:        t.InitiatorID,
		ResponderID:        t.ResponderID,
		Status:             string(t.Status),
		InitiatorConfirmed: t.InitiatorConfirmed,
		ResponderConfirmed: t.ResponderConfirmed,
		Items:              make([]tradeItemView, 0, len(t.Items)),
		ProposedAt:         t.ProposedAt,
		AcceptedAt:         t.AcceptedAt,
		CompletedAt:        t.CompletedAt,
		RejectedAt:         t.RejectedAt,
		CanceledAt:         t.CanceledAt,
	}
	for _, it := range t.Items {
		v.Items = append(v.Items, tradeItemView{CardID: it.CardID, OwnerSide: string(it.OwnerSide)})
	}
	return v
}

// Handler exposes the trade use cases over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) propose(c *gin.Context) {
	var req proposeRequest
	if !server.BindJSON(c, &req) {
		return
	}
	t, err := h.svc.Propose(c.Request.Context(), ProposeInput{
		InitiatorID:      server.UserID(c),
		ResponderID:      req.ResponderID,
		OfferedCardIDs:   req.OfferedCardIDs,
		RequestedCardIDs: req.RequestedCardIDs,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toView(t))
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toView(t))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	trades, err := h.svc.List(c.Request.Context(), server.UserID(c), domain.TradeStatus(c.Query("status")), limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]tradeView, 0, len(trades))
	for _, t := range trades {
		out = append(out, toView(t))
	}
	server.OK(c, http.StatusOK, out)
}

// action adapts one of the id-only transitions to a handler.
func (h *Handler) action(fn func(s *Service, c *gin.Context) (domain.Trade, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := fn(h.svc, c)
		if err != nil {
			server.Fail(c, err)
			return
		}
		server.OK(c, http.StatusOK, toView(t))
	}
}
