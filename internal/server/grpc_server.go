package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/cardswap/internal/app"
)

const healthInterval = 15 * time.Second

// NewGRPCServer builds the ops server: standard health service kept in sync
// with DB/Redis reachability, plus reflection for grpcurl.
func NewGRPCServer(ctx context.Context, appCtx *app.AppContext) *grpc.Server {
	grpcServer := grpc.NewServer()

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	go watchHealth(ctx, appCtx, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)
	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until ctx is done.
func StartGRPCServer(ctx context.Context, appCtx *app.AppContext) error {
	cfg := appCtx.Config
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := NewGRPCServer(ctx, appCtx)
	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	appCtx.Logger.Info("starting gRPC server", "addr", addr)
	return grpcServer.Serve(lis)
}

func watchHealth(ctx context.Context, appCtx *app.AppContext, hs *health.Server) {
	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		if err := Ping(ctx, appCtx); err != nil {
			appCtx.Logger.Warn("dependency unhealthy", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
	}

	update()
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
