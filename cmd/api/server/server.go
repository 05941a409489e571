package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"users-api/cmd/api/di"
	grpcadapter "users-api/internal/adapter/grpc"
	"users-api/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
	GRPC   *grpc.Server
	health *grpcadapter.HealthReporter
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(c.UserHandler, c.HealthHandler, c.RateLimiter, ":"+cfg.App.HTTPPort, l),
		health: c.HealthReporter,
	}
	if cfg.App.GRPCPort != "" {
		s.GRPC = SetupGRPC(c.HealthReporter, l)
	}
	return s
}

// Run serves HTTP and gRPC until ctx is canceled or a server fails, then shuts
// both down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.health.Run(gctx)
	})

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil {
		g.Go(func() error {
			return s.startGRPC(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

// startGRPC starts the gRPC server
func (s *Server) startGRPC(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.grpcAddress())
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC server running", zap.String("address", lis.Addr().String()))
	if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// shutdown gracefully stops both servers
func (s *Server) shutdown() error {
	timeout := time.Duration(s.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", s.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.HTTP.Shutdown(shutdownCtx); err != nil {
		s.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			s.GRPC.Stop()
		}
	}

	return errors.Join(errs...)
}
