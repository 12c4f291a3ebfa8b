package card

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

type uploadRequest struct {
	Title       string `json:"title" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

type mediaRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

type reorderRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

type addGalleryRequest struct {
	CardID string `json:"card_id" binding:"required"`
}

type cardView struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Status       string    `json:"status"`
	UploadStatus string    `json:"upload_status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCardView(c domain.Card) cardView {
	return cardView{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Title:        c.Title,
		ContentType:  c.ContentType,
		SizeBytes:    c.SizeBytes,
		Status:       string(c.Status),
		UploadStatus: string(c.UploadStatus),
		CreatedAt:    c.CreatedAt,
	}
}

type mediaView struct {
	ID           string `json:"id"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
	UploadStatus string `json:"upload_status"`
}

func toMediaView(m domain.MediaAsset) mediaView {
	return mediaView{ID: m.ID, ContentType: m.ContentType, SizeBytes: m.SizeBytes, UploadStatus: string(m.UploadStatus)}
}

type ticketView struct {
	Card             *cardView  `json:"card,omitempty"`
	Media            *mediaView `json:"media,omitempty"`
	UploadURL        string     `json:"upload_url"`
	ExpiresInSeconds int64      `json:"expires_in_seconds"`
}

type quotaView struct {
	Tier              string `json:"tier"`
	DailyUploadLimit  int    `json:"daily_upload_limit"`
	UploadsToday      int    `json:"uploads_today"`
	RemainingUploads  int    `json:"remaining_uploads"`
	TotalStorageBytes int64  `json:"total_storage_bytes"`
	StorageUsedBytes  int64  `json:"storage_used_bytes"`
	RemainingStorage  int64  `json:"remaining_storage_bytes"`
}

type galleryView struct {
	ID           string `json:"id"`
	CardID       string `json:"card_id"`
	DisplayOrder int    `json:"display_order"`
}

func toGalleryViews(entries []domain.GalleryCard) []galleryView {
	out := make([]galleryView, 0, len(entries))
	for _, g := range entries {
		out = append(out, galleryView{ID: g.ID, CardID: g.CardID, DisplayOrder: g.DisplayOrder})
	}
	return out
}

// Handler exposes card, media and gallery use cases over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) requestUpload(c *gin.Context) {
	var req uploadRequest
	if !server.BindJSON(c, &req) {
		return
	}
	t, err := h.svc.RequestUpload(c.Request.Context(), UploadInput{
		OwnerID:     server.UserID(c),
		Title:       req.Title,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	cv := toCardView(*t.Card)
	server.OK(c, http.StatusCreated, ticketView{Card: &cv, UploadURL: t.UploadURL, ExpiresInSeconds: int64(t.ExpiresIn.Seconds())})
}

func (h *Handler) confirmUpload(c *gin.Context) {
	card, err := h.svc.ConfirmUpload(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toCardView(card))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), server.UserID(c)); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listMine(c *gin.Context) {
	h.listFor(c, server.UserID(c))
}

func (h *Handler) listUser(c *gin.Context) {
	h.listFor(c, c.Param("user_id"))
}

func (h *Handler) listFor(c *gin.Context, ownerID string) {
	token, limit := server.PageParams(c)
	cards, next, err := h.svc.ListCards(c.Request.Context(), ownerID, token, limit)
	if err != nil {
		server.Fail(c, err)
		return
	}
	out := make([]cardView, 0, len(cards))
	for _, card := range cards {
		out = append(out, toCardView(card))
	}
	server.Page(c, out, next)
}

func (h *Handler) downloadURL(c *gin.Context) {
	url, err := h.svc.DownloadURL(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, gin.H{"url": url})
}

func (h *Handler) quota(c *gin.Context) {
	q, err := h.svc.GetQuota(c.Request.Context(), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, quotaView{
		Tier:              string(q.Tier),
		DailyUploadLimit:  q.DailyUploadLimit,
		UploadsToday:      q.UploadsToday,
		RemainingUploads:  q.RemainingUploads(),
		TotalStorageBytes: q.TotalStorageBytes,
		StorageUsedBytes:  q.StorageUsedBytes,
		RemainingStorage:  q.RemainingStorage(),
	})
}

func (h *Handler) requestMedia(c *gin.Context) {
	var req mediaRequest
	if !server.BindJSON(c, &req) {
		return
	}
	t, err := h.svc.RequestMediaUpload(c.Request.Context(), MediaInput{
		OwnerID:     server.UserID(c),
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	mv := toMediaView(*t.Media)
	server.OK(c, http.StatusCreated, ticketView{Media: &mv, UploadURL: t.UploadURL, ExpiresInSeconds: int64(t.ExpiresIn.Seconds())})
}

func (h *Handler) confirmMedia(c *gin.Context) {
	m, err := h.svc.ConfirmMediaUpload(c.Request.Context(), c.Param("id"), server.UserID(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toMediaView(m))
}

func (h *Handler) gallery(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		userID = server.UserID(c)
	}
	entries, err := h.svc.Gallery(c.Request.Context(), userID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toGalleryViews(entries))
}

func (h *Handler) addToGallery(c *gin.Context) {
	var req addGalleryRequest
	if !server.BindJSON(c, &req) {
		return
	}
	g, err := h.svc.AddToGallery(c.Request.Context(), server.UserID(c), req.CardID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusCreated, toGalleryViews([]domain.GalleryCard{g})[0])
}

func (h *Handler) removeFromGallery(c *gin.Context) {
	if err := h.svc.RemoveFromGallery(c.Request.Context(), server.UserID(c), c.Param("id")); err != nil {
		server.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reorderGallery(c *gin.Context) {
	var req reorderRequest
	if !server.BindJSON(c, &req) {
		return
	}
	entries, err := h.svc.ReorderGallery(c.Request.Context(), server.UserID(c), req.EntryIDs)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, http.StatusOK, toGalleryViews(entries))
}
