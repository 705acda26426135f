// Package grpc exposes the account flows over gRPC, next to the REST API.
package grpc

import (
	"context"
	"net"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/rpc"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address string
	auth    *services.AuthService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as *services.AuthService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    as,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterAuthServiceServer(srv, &handler{auth: s.auth, logger: s.logger})
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
