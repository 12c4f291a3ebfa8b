package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/config"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine: recovery, access log, unauthenticated
// health probe and the /v1 API group behind RequireUser.
func NewRouter(appCtx *app.AppContext, registrars ...Registrar) *gin.Engine {
	if appCtx.Config == nil || appCtx.Config.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), AccessLog(appCtx.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		if err := Ping(c.Request.Context(), appCtx); err != nil {
			appCtx.Log(c.Request.Context()).Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, Envelope{Data: gin.H{"status": "unavailable"}})
			return
		}
		OK(c, http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/v1")
	api := r.Group("/v1", RequireUser())
	for _, reg := range registrars {
		if pr, ok := reg.(PublicRegistrar); ok {
			pr.RegisterPublic(public)
		}
		reg.Register(api)
	}
	return r
}

// Ping checks the database and Redis.
func Ping(ctx context.Context, appCtx *app.AppContext) error {
	sqlDB, err := appCtx.DB.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if appCtx.RedisCache != nil {
		if err := appCtx.RedisCache.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}

// StartHTTPServer serves handler until ctx is cancelled, then shuts down gracefully.
func StartHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
