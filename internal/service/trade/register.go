package trade

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	"github.com/oggyb/cardswap/internal/server"
)

// Registrar ties the trade service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the trade service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the trade routes
func (r *Registrar) Register(g *gin.RouterGroup) {
	h := NewHandler(NewTradeService(r.appCtx))

	trades := g.Group("/trades")
	trades.POST("", h.propose)
	trades.GET("", h.list)
	trades.GET("/:id", h.get)
	trades.POST("/:id/accept", h.action(func(s *Service, c *gin.Context) (domain.Trade, error) {
		return s.Accept(c.Request.Context(), c.Param("id"), server.UserID(c))
	}))
	trades.POST("/:id/reject", h.action(func(s *Service, c *gin.Context) (domain.Trade, error) {
		return s.Reject(c.Request.Context(), c.Param("id"), server.UserID(c))
	}))
	trades.POST("/:id/cancel", h.action(func(s *Service, c *gin.Context) (domain.Trade, error) {
		return s.Cancel(c.Request.Context(), c.Param("id"), server.UserID(c))
	}))
	trades.POST("/:id/confirm", h.action(func(s *Service, c *gin.Context) (domain.Trade, error) {
		return s.Confirm(c.Request.Context(), c.Param("id"), server.UserID(c))
	}))
}
