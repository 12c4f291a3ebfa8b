package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all HTTP service registrars.
// Routes are mounted on the authenticated API group.
type Registrar interface {
	Register(r *gin.RouterGroup)
}

// PublicRegistrar is implemented by registrars that also expose routes
// reachable without a caller id, such as sign-up.
type PublicRegistrar interface {
	RegisterPublic(r *gin.RouterGroup)
}
