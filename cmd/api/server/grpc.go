package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "users-api/internal/adapter/grpc"
	"users-api/pkg/logger"
)

// SetupGRPC creates the gRPC server carrying the standard health service
func SetupGRPC(reporter *grpcadapter.HealthReporter, l *zap.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.AccessLogInterceptor(l),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, reporter.Server())

	return grpcServer
}
