package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/frontend"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type frontEndHandler struct {
	fe     *frontend.FrontEnd
	logger logging.Logger
}

// unavailable maps a failed election or a lost primary to codes.Unavailable.
// Domain rejections yield nil and are answered in the response body.
func unavailable(err error) error {
	if errors.Is(err, common.ErrorNoPrimary) || errors.Is(err, common.ErrorUnavailable) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return nil
}

func (h *frontEndHandler) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	id, err := h.fe.Register(ctx, req.Email, req.PublicKey)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.RegisterResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.RegisterResponse{UserID: &id}, nil
}

func (h *frontEndHandler) Challenge(ctx context.Context, req *pb.ChallengeRequest) (*pb.ChallengeResponse, error) {
	info, err := h.fe.Challenge(ctx, req.UserID, req.ClientNonce)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.ChallengeResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.ChallengeResponse{Info: &info}, nil
}

func (h *frontEndHandler) Authenticate(ctx context.Context, req *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error) {
	tok, err := h.fe.Authenticate(ctx, req.UserID, req.Signature)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.AuthenticateResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.AuthenticateResponse{Token: pb.TokenFromModel(tok)}, nil
}

func (h *frontEndHandler) GetSpec(ctx context.Context, req *pb.GetSpecRequest) (*pb.GetSpecResponse, error) {
	item, err := h.fe.GetSpec(ctx, req.UserID, req.ItemID, req.Token)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.GetSpecResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.GetSpecResponse{Item: &item}, nil
}

func (h *frontEndHandler) NewAuction(ctx context.Context, req *pb.NewAuctionRequest) (*pb.NewAuctionResponse, error) {
	id, err := h.fe.NewAuction(ctx, req.UserID, req.Item, req.Token)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.NewAuctionResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.NewAuctionResponse{ItemID: &id}, nil
}

func (h *frontEndHandler) ListItems(ctx context.Context, req *pb.ListItemsRequest) (*pb.ListItemsResponse, error) {
	items, err := h.fe.ListItems(ctx, req.UserID, req.Token)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.ListItemsResponse{Reason: pb.ReasonOf(err)}, nil
	}
	if items == nil {
		items = []models.Listing{}
	}
	return &pb.ListItemsResponse{Items: items}, nil
}

func (h *frontEndHandler) CloseAuction(ctx context.Context, req *pb.CloseAuctionRequest) (*pb.CloseAuctionResponse, error) {
	res, err := h.fe.CloseAuction(ctx, req.UserID, req.ItemID, req.Token)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.CloseAuctionResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.CloseAuctionResponse{Result: &res}, nil
}

func (h *frontEndHandler) Bid(ctx context.Context, req *pb.BidRequest) (*pb.BidResponse, error) {
	err := h.fe.Bid(ctx, req.UserID, req.ItemID, req.Price, req.Token)
	if serr := unavailable(err); serr != nil {
		return nil, serr
	}
	if err != nil {
		return &pb.BidResponse{Reason: pb.ReasonOf(err)}, nil
	}
	return &pb.BidResponse{Accepted: true}, nil
}

func (h *frontEndHandler) GetPrimaryReplicaID(ctx context.Context, _ *emptypb.Empty) (*pb.PrimaryReplicaIDResponse, error) {
	id, err := h.fe.GetPrimaryReplicaID(ctx)
	if err != nil {
		h.logger.Warn(ctx, "primary id unavailable", "error", err)
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &pb.PrimaryReplicaIDResponse{ReplicaID: id}, nil
}
