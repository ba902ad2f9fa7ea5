package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// AuctionServer is the client-facing operation surface, served by both the
// front end and every replica.
type AuctionServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	GetSpec(context.Context, *GetSpecRequest) (*GetSpecResponse, error)
	NewAuction(context.Context, *NewAuctionRequest) (*NewAuctionResponse, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	CloseAuction(context.Context, *CloseAuctionRequest) (*CloseAuctionResponse, error)
	Bid(context.Context, *BidRequest) (*BidResponse, error)
	GetPrimaryReplicaID(context.Context, *emptypb.Empty) (*PrimaryReplicaIDResponse, error)
}

func auctionMethods(service string) []grpc.MethodDesc {
	return []grpc.MethodDesc{
		unary(service, "Register", AuctionServer.Register),
		unary(service, "Challenge", AuctionServer.Challenge),
		unary(service, "Authenticate", AuctionServer.Authenticate),
		unary(service, "GetSpec", AuctionServer.GetSpec),
		unary(service, "NewAuction", AuctionServer.NewAuction),
		unary(service, "ListItems", AuctionServer.ListItems),
		unary(service, "CloseAuction", AuctionServer.CloseAuction),
		unary(service, "Bid", AuctionServer.Bid),
		unary(service, "GetPrimaryReplicaID", AuctionServer.GetPrimaryReplicaID),
	}
}

// AuctionClient calls the client-facing operations of one service.
type AuctionClient struct {
	cc      grpc.ClientConnInterface
	service string
}

func (c *AuctionClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, c.service, "Register", in, opts...)
}

func (c *AuctionClient) Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*ChallengeResponse, error) {
	return invoke[ChallengeResponse](ctx, c.cc, c.service, "Challenge", in, opts...)
}

func (c *AuctionClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	return invoke[AuthenticateResponse](ctx, c.cc, c.service, "Authenticate", in, opts...)
}

func (c *AuctionClient) GetSpec(ctx context.Context, in *GetSpecRequest, opts ...grpc.CallOption) (*GetSpecResponse, error) {
	return invoke[GetSpecResponse](ctx, c.cc, c.service, "GetSpec", in, opts...)
}

func (c *AuctionClient) NewAuction(ctx context.Context, in *NewAuctionRequest, opts ...grpc.CallOption) (*NewAuctionResponse, error) {
	return invoke[NewAuctionResponse](ctx, c.cc, c.service, "NewAuction", in, opts...)
}

func (c *AuctionClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, c.service, "ListItems", in, opts...)
}

func (c *AuctionClient) CloseAuction(ctx context.Context, in *CloseAuctionRequest, opts ...grpc.CallOption) (*CloseAuctionResponse, error) {
	return invoke[CloseAuctionResponse](ctx, c.cc, c.service, "CloseAuction", in, opts...)
}

func (c *AuctionClient) Bid(ctx context.Context, in *BidRequest, opts ...grpc.CallOption) (*BidResponse, error) {
	return invoke[BidResponse](ctx, c.cc, c.service, "Bid", in, opts...)
}

func (c *AuctionClient) GetPrimaryReplicaID(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PrimaryReplicaIDResponse, error) {
	return invoke[PrimaryReplicaIDResponse](ctx, c.cc, c.service, "GetPrimaryReplicaID", in, opts...)
}
