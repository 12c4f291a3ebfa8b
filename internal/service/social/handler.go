package social

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type friendRequestBody struct {
	UserID string `json:"user_id" binding:"required"`
}

type rateBody struct {
	Score   int     `json:"score" binding:"required"`
	TradeID *string `json:"trade_id"`
	Comment string  `json:"comment"`
}

type reportBody struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type friendshipView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toFriendshipView(f domain.Friendship) friendshipView {
	return friendshipView{
		ID:        f.ID,
		UserID:    f.UserID,
		FriendID:  f.FriendID,
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt,
	}
}

type ratingView struct {
	ID          string  `json:"id"`
	RaterID     string  `json:"rater_id"`
	RatedUserID string  `json:"rated_user_id"`
	Score       int     `json:"score"`
	TradeID     *string `json:"trade_id,omitempty"`
	Comment     string  `json:"comment,omitempty"`
}

type summaryView struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type reportView struct {
	ID         string `json:"id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Status     string `json:"status"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) sendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if !server.BindJSON(c, &body) {
		return
	}
	f, err := h.svc.SendFriendRequest(c.Request.Context(), server.UserID(c), body.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toFriendshipView(f))
}

func (h *Handler) acceptFriendRequest(c *gin.Context) {
	f, err := h.svc.AcceptFriendRequest(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toFriendshipView(f))
}

func (h *Handler) listFriends(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.ListFriends(c.Request.Context(), server.UserID(c), domain.FriendshipStatus(c.Query("status")), limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]friendshipView, 0, len(rows))
	for _, f := range rows {
		out = append(out, toFriendshipView(f))
	}
	server.OK(c, http.StatusOK, out)
}

func (h *Handler) removeFriend(c *gin.Context) {
	if err := h.svc.RemoveFriend(c.Request.Context(), server.UserID(c), c.Param("user_id")); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) block(c *gin.Context) {
	f, err := h.svc.Block(c.Request.Context(), server.UserID(c), c.Param("user_id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toFriendshipView(f))
}

func (h *Handler) unblock(c *gin.Context) {
	if err := h.svc.Unblock(c.Request.Context(), server.UserID(c), c.Param("user_id")); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) rate(c *gin.Context) {
	var body rateBody
	if !server.BindJSON(c, &body) {
		return
	}
	rt, err := h.svc.RateUser(c.Request.Context(), RateInput{
		RaterID:     server.UserID(c),
		RatedUserID: c.Param("user_id"),
		Score:       body.Score,
		TradeID:     body.TradeID,
		Comment:     body.Comment,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, ratingView{
		ID:          rt.ID,
		RaterID:     rt.RaterID,
		RatedUserID: rt.RatedUserID,
		Score:       rt.Score,
		TradeID:     rt.TradeID,
		Comment:     rt.Comment,
	})
}

func (h *Handler) ratingSummary(c *gin.Context) {
	sum, err := h.svc.RatingSummary(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, summaryView(sum))
}

func (h *Handler) report(c *gin.Context) {
	var body reportBody
	if !server.BindJSON(c, &body) {
		return
	}
	rp, err := h.svc.ReportTarget(c.Request.Context(), server.UserID(c), domain.ReportTarget(body.TargetType), body.TargetID, body.Reason)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, reportView{
		ID:         rp.ID,
		TargetType: string(rp.TargetType),
		TargetID:   rp.TargetID,
		Status:     string(rp.Status),
	})
}
