package account

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
)

// Registrar ties the account service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
	h      *Handler
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx, h: NewHandler(NewAccountService(appCtx))}
}

// RegisterPublic mounts sign-up and sign-in, which run before a caller id exists.
func (r *Registrar) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/accounts", r.h.register)
	g.POST("/sessions", r.h.session)
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.GET("/me/profile", r.h.profile)
	g.PATCH("/me/profile", r.h.updateProfile)
	g.GET("/me/tier", r.h.tier)
	g.POST("/me/subscriptions", r.h.bindPurchase)
	g.GET("/me/search-quota", r.h.searchQuota)
	g.GET("/users/:user_id/profile", r.h.profile)
	g.GET("/nearby", r.h.nearby)
}
