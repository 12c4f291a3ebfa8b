package messaging

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type sendRequestBody struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

type sendMessageBody struct {
	Body string `json:"body" binding:"required"`
}

type requestView struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ThreadID    *string    `json:"thread_id,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toRequestView(r domain.MessageRequest) requestView {
	return requestView{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Message:     r.Message,
		Status:      string(r.Status),
		ThreadID:    r.ThreadID,
		RespondedAt: r.RespondedAt,
		CreatedAt:   r.CreatedAt,
	}
}

type threadView struct {
	ID            string     `json:"id"`
	OtherUserID   string     `json:"other_user_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toThreadView(t domain.MessageThread, viewer string) threadView {
	return threadView{
		ID:            t.ID,
		OtherUserID:   t.Other(viewer),
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
	}
}

type messageView struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageView(m domain.ThreadMessage) messageView {
	return messageView{ID: m.ID, ThreadID: m.ThreadID, SenderID: m.SenderID, Body: m.Body, CreatedAt: m.CreatedAt}
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) sendRequest(c *gin.Context) {
	var body sendRequestBody
	if !server.BindJSON(c, &body) {
		return
	}
	req, err := h.svc.SendRequest(c.Request.Context(), server.UserID(c), body.RecipientID, body.Message)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toRequestView(req))
}

func (h *Handler) incoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	reqs, err := h.svc.ListIncomingRequests(c.Request.Context(), server.UserID(c), limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]requestView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestView(r))
	}
	server.OK(c, http.StatusOK, out)
}

func (h *Handler) acceptRequest(c *gin.Context) {
	userID := server.UserID(c)
	t, err := h.svc.AcceptRequest(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toThreadView(t, userID))
}

func (h *Handler) declineRequest(c *gin.Context) {
	req, err := h.svc.DeclineRequest(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toRequestView(req))
}

func (h *Handler) sendMessage(c *gin.Context) {
	var body sendMessageBody
	if !server.BindJSON(c, &body) {
		return
	}
	m, err := h.svc.SendMessage(c.Request.Context(), server.UserID(c), c.Param("user_id"), body.Body)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toMessageView(m))
}

func (h *Handler) threads(c *gin.Context) {
	userID := server.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	threads, err := h.svc.ListThreads(c.Request.Context(), userID, limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]threadView, 0, len(threads))
	for _, t := range threads {
		out = append(out, toThreadView(t, userID))
	}
	server.OK(c, http.StatusOK, out)
}

func (h *Handler) messages(c *gin.Context) {
	token, limit := server.PageParams(c)
	msgs, next, err := h.svc.ListMessages(c.Request.Context(), c.Param("id"), server.UserID(c), token, limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageView(m))
	}
	server.Page(c, out, next)
}
