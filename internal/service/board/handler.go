package board

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type createPostRequest struct {
	Scope    string `json:"scope" binding:"required"`
	CityCode string `json:"city_code"`
	Category string `json:"category" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
}

type interestRequest struct {
	Message string `json:"message"`
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

type postView struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Scope     string    `json:"scope"`
	CityCode  *string   `json:"city_code,omitempty"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Likes     *int64    `json:"likes,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostView(p domain.Post) postView {
	return postView{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Scope:     string(p.Scope),
		CityCode:  p.CityCode,
		Category:  string(p.Category),
		Title:     p.Title,
		Body:      p.Body,
		Status:    string(p.Status),
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	}
}

type interestView struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toInterestView(i domain.PostInterest) interestView {
	return interestView{
		ID:        i.ID,
		PostID:    i.PostID,
		UserID:    i.UserID,
		Message:   i.Message,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
	}
}

type commentView struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type likeView struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if !server.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreatePost(c.Request.Context(), domain.NewPostInput{
		OwnerID:  server.UserID(c),
		Scope:    domain.PostScope(req.Scope),
		CityCode: req.CityCode,
		Category: domain.PostCategory(req.Category),
		Title:    req.Title,
		Body:     req.Body,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toPostView(p))
}

func (h *Handler) getPost(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.svc.GetPost(ctx, c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	v := toPostView(p)
	if n, err := h.svc.LikeCount(ctx, p.ID); err == nil {
		v.Likes = &n
	}
	server.OK(c, http.StatusOK, v)
}

func (h *Handler) listPosts(c *gin.Context) {
	token, limit := server.PageParams(c)
	posts, next, err := h.svc.ListPosts(c.Request.Context(), c.Query("city"), token, limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostView(p))
	}
	server.Page(c, out, next)
}

func (h *Handler) closePost(c *gin.Context) {
	p, err := h.svc.ClosePost(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toPostView(p))
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), c.Param("id"), server.UserID(c)); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) expressInterest(c *gin.Context) {
	var req interestRequest
	if !server.BindJSON(c, &req) {
		return
	}
	i, err := h.svc.ExpressInterest(c.Request.Context(), c.Param("id"), server.UserID(c), req.Message)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toInterestView(i))
}

func (h *Handler) listInterests(c *gin.Context) {
	items, err := h.svc.ListInterests(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]interestView, 0, len(items))
	for _, i := range items {
		out = append(out, toInterestView(i))
	}
	server.OK(c, http.StatusOK, out)
}

func (h *Handler) respondInterest(accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		i, err := h.svc.RespondInterest(c.Request.Context(), c.Param("id"), server.UserID(c), accept)
		if err != nil {
			server.Fail(c, err)
			return
		}
		server.OK(c, http.StatusOK, toInterestView(i))
	}
}

func (h *Handler) toggleLike(c *gin.Context) {
	res, err := h.svc.ToggleLike(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, likeView{Liked: res.Liked, Count: res.Count})
}

func (h *Handler) addComment(c *gin.Context) {
	var req commentRequest
	if !server.BindJSON(c, &req) {
		return
	}
	cm, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), server.UserID(c), req.Body)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, commentView(cm))
}

func (h *Handler) listComments(c *gin.Context) {
	token, limit := server.PageParams(c)
	comments, next, err := h.svc.ListComments(c.Request.Context(), c.Param("id"), token, limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentView(cm))
	}
	server.Page(c, out, next)
}

func (h *Handler) deleteComment(c *gin.Context) {
	if err := h.svc.DeleteComment(c.Request.Context(), c.Param("id"), server.UserID(c)); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
