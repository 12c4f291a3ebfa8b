package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/logger"
)

const (
	// HeaderUserID carries the caller id resolved by the identity provider in front of the API.
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	userIDKey = "user_id"
)

// AccessLog writes one slog line per request and puts a request-scoped
// logger into the request context.
func AccessLog(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		l := base.With("request_id", reqID)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))

		c.Next()

		l.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", c.GetString(userIDKey),
		)
	}
}

// RequireUser rejects requests without a caller id.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderUserID)
		if _, err := uuid.Parse(id); err != nil {
			Fail(c, svcErr.Unauthorized("missing or invalid "+HeaderUserID+" header"))
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the authenticated caller id set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
