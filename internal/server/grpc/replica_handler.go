package grpc

import (
	"context"

	"github.com/dmitrijs2005/auctionrep/internal/logging"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/dmitrijs2005/auctionrep/internal/server/replica"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// replicaHandler answers domain rejections with null or false results and a
// reason. Only faults become gRPC errors.
type replicaHandler struct {
	replica *replica.Replica
	logger  logging.Logger
}

func (h *replicaHandler) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	id := h.replica.Register(ctx, req.Email, req.PublicKey)
	return &pb.RegisterResponse{UserID: &id}, nil
}

func (h *replicaHandler) Challenge(ctx context.Context, req *pb.ChallengeRequest) (*pb.ChallengeResponse, error) {
	info, err := h.replica.Challenge(ctx, req.UserID, req.ClientNonce)
	if err != nil {
		return &pb.ChallengeResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.ChallengeResponse{Info: &info}, nil
}

func (h *replicaHandler) Authenticate(ctx context.Context, req *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error) {
	tok, err := h.replica.Authenticate(ctx, req.UserID, req.Signature)
	if err != nil {
		return &pb.AuthenticateResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.AuthenticateResponse{Token: pb.TokenFromModel(tok)}, nil
}

func (h *replicaHandler) GetSpec(ctx context.Context, req *pb.GetSpecRequest) (*pb.GetSpecResponse, error) {
	item, err := h.replica.GetSpec(ctx, req.UserID, req.ItemID, req.Token)
	if err != nil {
		return &pb.GetSpecResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.GetSpecResponse{Item: &item}, nil
}

func (h *replicaHandler) NewAuction(ctx context.Context, req *pb.NewAuctionRequest) (*pb.NewAuctionResponse, error) {
	id, err := h.replica.NewAuction(ctx, req.UserID, req.Item, req.Token)
	if err != nil {
		return &pb.NewAuctionResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.NewAuctionResponse{ItemID: &id}, nil
}

func (h *replicaHandler) ListItems(ctx context.Context, req *pb.ListItemsRequest) (*pb.ListItemsResponse, error) {
	items, err := h.replica.ListItems(ctx, req.UserID, req.Token)
	if err != nil {
		return &pb.ListItemsResponse{Reason: pb.ReasonOf(err)}, nil
	}
	if items == nil {
		items = []models.Listing{}
	}
	return &pb.ListItemsResponse{Items: items}, nil
}

func (h *replicaHandler) CloseAuction(ctx context.Context, req *pb.CloseAuctionRequest) (*pb.CloseAuctionResponse, error) {
	res, err := h.replica.CloseAuction(ctx, req.UserID, req.ItemID, req.Token)
	if err != nil {
		return &pb.CloseAuctionResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.CloseAuctionResponse{Result: &res}, nil
}

func (h *replicaHandler) Bid(ctx context.Context, req *pb.BidRequest) (*pb.BidResponse, error) {
	if err := h.replica.Bid(ctx, req.UserID, req.ItemID, req.Price, req.Token); err != nil {
		return &pb.BidResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.BidResponse{Accepted: true}, nil
}

func (h *replicaHandler) GetPrimaryReplicaID(context.Context, *emptypb.Empty) (*pb.PrimaryReplicaIDResponse, error) {
	return &pb.PrimaryReplicaIDResponse{ReplicaID: h.replica.ID()}, nil
}

func (h *replicaHandler) IsAlive(context.Context, *emptypb.Empty) (*pb.IsAliveResponse, error) {
	return &pb.IsAliveResponse{Alive: h.replica.IsAlive()}, nil
}

func (h *replicaHandler) GetState(ctx context.Context, _ *emptypb.Empty) (*pb.StateMessage, error) {
	snap, err := h.replica.GetState()
	if err != nil {
		h.logger.Error(ctx, "snapshot failed", "error", err)
		return nil, status.Error(codes.Internal, "snapshot failed")
	}
	return &pb.StateMessage{Snapshot: snap}, nil
}

func (h *replicaHandler) UpdateState(ctx context.Context, req *pb.StateMessage) (*pb.UpdateStateResponse, error) {
	if err := h.replica.UpdateState(ctx, req.Snapshot); err != nil {
		return &pb.UpdateStateResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.UpdateStateResponse{Applied: true}, nil
}

func (h *replicaHandler) UpdateReplicaStates(ctx context.Context, _ *emptypb.Empty) (*pb.UpdateReplicaStatesResponse, error) {
	n := h.replica.UpdateReplicaStates(ctx)
	return &pb.UpdateReplicaStatesResponse{Updated: int32(n)}, nil
}
