package messaging

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
)

// Registrar ties the messaging service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	h := NewHandler(NewMessagingService(r.appCtx))

	reqs := g.Group("/message-requests")
	reqs.POST("", h.sendRequest)
	reqs.GET("", h.incoming)
	reqs.POST("/:id/accept", h.acceptRequest)
	reqs.POST("/:id/decline", h.declineRequest)

	g.GET("/threads", h.threads)
	g.GET("/threads/:id/messages", h.messages)
	g.POST("/users/:user_id/messages", h.sendMessage)
}
