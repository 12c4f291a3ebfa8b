package account

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	CityCode    string `json:"city_code"`
}

type sessionRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	CityCode    *string `json:"city_code"`
	AvatarKey   *string `json:"avatar_key"`
}

type bindRequest struct {
	PurchaseToken string    `json:"purchase_token" binding:"required"`
	ExpiresAt     time.Time `json:"expires_at" binding:"required"`
}

type profileView struct {
	UserID        string   `json:"user_id"`
	Username      string   `json:"username,omitempty"`
	DisplayName   string   `json:"display_name"`
	Bio           string   `json:"bio"`
	CityCode      string   `json:"city_code"`
	AvatarKey     string   `json:"avatar_key,omitempty"`
	Tier          string   `json:"tier,omitempty"`
	RatingAverage *float64 `json:"rating_average,omitempty"`
	RatingCount   *int64   `json:"rating_count,omitempty"`
}

func toProfileView(p domain.Profile) profileView {
	return profileView{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		CityCode:    p.CityCode,
		AvatarKey:   p.AvatarKey,
	}
}

type subscriptionView struct {
	ID        string    `json:"id"`
	Tier      string    `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
}

type searchView struct {
	Profiles  []profileView `json:"profiles"`
	Remaining int           `json:"remaining"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !server.BindJSON(c, &req) {
		return
	}
	u, p, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		CityCode:    req.CityCode,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	v := toProfileView(p)
	v.Username = u.Username
	server.OK(c, http.StatusCreated, v)
}

// session verifies credentials and returns the id to send as X-User-ID.
func (h *Handler) session(c *gin.Context) {
	var req sessionRequest
	if !server.BindJSON(c, &req) {
		return
	}
	u, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, gin.H{"user_id": u.ID})
}

func (h *Handler) profile(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		userID = server.UserID(c)
	}
	d, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	v := toProfileView(d.Profile)
	v.Username = d.Username
	v.Tier = string(d.Tier)
	v.RatingAverage = &d.RatingAverage
	v.RatingCount = &d.RatingCount
	server.OK(c, http.StatusOK, v)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !server.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), server.UserID(c), domain.ProfileUpdate(req))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toProfileView(p))
}

func (h *Handler) bindPurchase(c *gin.Context) {
	var req bindRequest
	if !server.BindJSON(c, &req) {
		return
	}
	sub, err := h.svc.BindPurchaseToken(c.Request.Context(), server.UserID(c), req.PurchaseToken, req.ExpiresAt)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, subscriptionView{ID: sub.ID, Tier: string(sub.Tier), ExpiresAt: sub.ExpiresAt})
}

func (h *Handler) tier(c *gin.Context) {
	t, err := h.svc.CurrentTier(c.Request.Context(), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, gin.H{"tier": t})
}

func (h *Handler) nearby(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	profiles, q, err := h.svc.NearbySearch(c.Request.Context(), server.UserID(c), limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := searchView{Profiles: make([]profileView, 0, len(profiles)), Remaining: q.Remaining()}
	for _, p := range profiles {
		out.Profiles = append(out.Profiles, toProfileView(p))
	}
	server.OK(c, http.StatusOK, out)
}

func (h *Handler) searchQuota(c *gin.Context) {
	n, err := h.svc.SearchRemaining(c.Request.Context(), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, gin.H{"remaining": n})
}
