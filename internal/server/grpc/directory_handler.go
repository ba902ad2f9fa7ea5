package grpc

import (
	"context"

	"github.com/dmitrijs2005/auctionrep/internal/logging"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/directory"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type directoryHandler struct {
	dir    *directory.Directory
	logger logging.Logger
}

func (h *directoryHandler) Bind(ctx context.Context, req *pb.BindRequest) (*emptypb.Empty, error) {
	if req.Name == "" || req.Address == "" {
		return nil, status.Error(codes.InvalidArgument, "name and address are required")
	}
	h.dir.Bind(req.Name, req.Address)
	h.logger.Info(ctx, "bound", "name", req.Name, "address", req.Address)
	return &emptypb.Empty{}, nil
}

func (h *directoryHandler) Unbind(ctx context.Context, req *pb.UnbindRequest) (*pb.UnbindResponse, error) {
	removed := h.dir.Unbind(req.Name)
	if removed {
		h.logger.Info(ctx, "unbound", "name", req.Name)
	}
	return &pb.UnbindResponse{Removed: removed}, nil
}

func (h *directoryHandler) Lookup(_ context.Context, req *pb.LookupRequest) (*pb.LookupResponse, error) {
	addr, err := h.dir.Lookup(req.Name)
	if err != nil {
		return &pb.LookupResponse{}, nil
	}
	return &pb.LookupResponse{Address: addr, Found: true}, nil
}

func (h *directoryHandler) List(context.Context, *emptypb.Empty) (*pb.ListResponse, error) {
	entries := h.dir.List()
	out := &pb.ListResponse{Entries: make([]pb.DirectoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, pb.DirectoryEntry{Name: e.Name, Address: e.Address})
	}
	return out, nil
}
