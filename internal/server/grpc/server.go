// Package grpc serves the replica, front end and directory services and
// provides the clients the processes use to reach each other.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/auctionrep/internal/logging"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/directory"
	"github.com/dmitrijs2005/auctionrep/internal/server/frontend"
	"github.com/dmitrijs2005/auctionrep/internal/server/replica"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address      string
	logger       logging.Logger
	register     func(grpc.ServiceRegistrar)
	interceptors []grpc.UnaryServerInterceptor
}

func newServer(address string, l logging.Logger, module string, register func(grpc.ServiceRegistrar)) *GRPCServer {
	logger := l.With("module", module)
	return &GRPCServer{
		address:  address,
		logger:   logger,
		register: register,
		interceptors: []grpc.UnaryServerInterceptor{
			recoveryInterceptor(logger),
			loggingInterceptor(logger),
		},
	}
}

// NewReplicaServer serves r as a ReplicaService.
func NewReplicaServer(address string, l logging.Logger, r *replica.Replica) *GRPCServer {
	h := &replicaHandler{replica: r, logger: l.With("module", "replica_handler")}
	return newServer(address, l, "replica_grpc", func(s grpc.ServiceRegistrar) {
		pb.RegisterReplicaServiceServer(s, h)
	})
}

// NewFrontEndServer serves fe as the FrontEndService. A nil limiter disables
// rate limiting.
func NewFrontEndServer(address string, l logging.Logger, fe *frontend.FrontEnd, limiter *rate.Limiter) *GRPCServer {
	h := &frontEndHandler{fe: fe, logger: l.With("module", "frontend_handler")}
	s := newServer(address, l, "frontend_grpc", func(s grpc.ServiceRegistrar) {
		pb.RegisterFrontEndServiceServer(s, h)
	})
	if limiter != nil {
		s.interceptors = append(s.interceptors, rateLimitInterceptor(limiter))
	}
	return s
}

func NewDirectoryServer(address string, l logging.Logger, d *directory.Directory) *GRPCServer {
	h := &directoryHandler{dir: d, logger: l.With("module", "directory_handler")}
	return newServer(address, l, "directory_grpc", func(s grpc.ServiceRegistrar) {
		pb.RegisterDirectoryServiceServer(s, h)
	})
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := s.Listen()
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Listen announces the configured address without serving it yet.
func (s *GRPCServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.address)
}

// Serve serves on an already open listener until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.interceptors...))

	s.register(srv)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
