package social

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
)

// Registrar ties the social service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	h := NewHandler(NewSocialService(r.appCtx))

	g.GET("/friends", h.listFriends)
	g.POST("/friends/requests", h.sendFriendRequest)
	g.POST("/friends/requests/:id/accept", h.acceptFriendRequest)

	g.DELETE("/users/:user_id/friend", h.removeFriend)
	g.POST("/users/:user_id/block", h.block)
	g.DELETE("/users/:user_id/block", h.unblock)
	g.POST("/users/:user_id/ratings", h.rate)
	g.GET("/users/:user_id/ratings", h.ratingSummary)

	g.POST("/reports", h.report)
}
