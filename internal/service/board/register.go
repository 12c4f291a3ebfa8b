package board

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
)

// Registrar ties the board service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	h := NewHandler(NewBoardService(r.appCtx))

	posts := g.Group("/posts")
	posts.POST("", h.createPost)
	posts.GET("", h.listPosts)
	posts.GET("/:id", h.getPost)
	posts.POST("/:id/close", h.closePost)
	posts.DELETE("/:id", h.deletePost)
	posts.POST("/:id/interests", h.expressInterest)
	posts.GET("/:id/interests", h.listInterests)
	posts.POST("/:id/like", h.toggleLike)
	posts.POST("/:id/comments", h.addComment)
	posts.GET("/:id/comments", h.listComments)

	g.POST("/interests/:id/accept", h.respondInterest(true))
	g.POST("/interests/:id/reject", h.respondInterest(false))
	g.DELETE("/comments/:id", h.deleteComment)
}
