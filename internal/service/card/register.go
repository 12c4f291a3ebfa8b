package card

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
)

// Registrar ties the card service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	h := NewHandler(NewCardService(r.appCtx))

	g.GET("/me/cards", h.listMine)
	g.GET("/me/quota", h.quota)
	g.GET("/me/gallery", h.gallery)
	g.POST("/me/gallery", h.addToGallery)
	g.PUT("/me/gallery/order", h.reorderGallery)
	g.DELETE("/me/gallery/:id", h.removeFromGallery)
	g.GET("/users/:user_id/cards", h.listUser)
	g.GET("/users/:user_id/gallery", h.gallery)

	cards := g.Group("/cards")
	cards.POST("", h.requestUpload)
	cards.POST("/:id/confirm", h.confirmUpload)
	cards.GET("/:id/image", h.downloadURL)
	cards.DELETE("/:id", h.delete)

	media := g.Group("/media")
	media.POST("", h.requestMedia)
	media.POST("/:id/confirm", h.confirmMedia)
}
