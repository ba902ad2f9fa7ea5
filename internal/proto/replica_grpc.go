package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ReplicaServiceName = "auction.ReplicaService"

// ReplicaServiceServer is served by every backend replica.
type ReplicaServiceServer interface {
	AuctionServer

	IsAlive(context.Context, *emptypb.Empty) (*IsAliveResponse, error)
	GetState(context.Context, *emptypb.Empty) (*StateMessage, error)
	UpdateState(context.Context, *StateMessage) (*UpdateStateResponse, error)
	UpdateReplicaStates(context.Context, *emptypb.Empty) (*UpdateReplicaStatesResponse, error)
}

var ReplicaService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ReplicaServiceName,
	HandlerType: (*ReplicaServiceServer)(nil),
	Methods: append(auctionMethods(ReplicaServiceName),
		unary(ReplicaServiceName, "IsAlive", ReplicaServiceServer.IsAlive),
		unary(ReplicaServiceName, "GetState", ReplicaServiceServer.GetState),
		unary(ReplicaServiceName, "UpdateState", ReplicaServiceServer.UpdateState),
		unary(ReplicaServiceName, "UpdateReplicaStates", ReplicaServiceServer.UpdateReplicaStates),
	),
	Streams:  []grpc.StreamDesc{},
	Metadata: "auction/replica",
}

func RegisterReplicaServiceServer(s grpc.ServiceRegistrar, srv ReplicaServiceServer) {
	s.RegisterService(&ReplicaService_ServiceDesc, srv)
}

type ReplicaServiceClient struct {
	AuctionClient
}

func NewReplicaServiceClient(cc grpc.ClientConnInterface) *ReplicaServiceClient {
	return &ReplicaServiceClient{AuctionClient{cc: cc, service: ReplicaServiceName}}
}

func (c *ReplicaServiceClient) IsAlive(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*IsAliveResponse, error) {
	return invoke[IsAliveResponse](ctx, c.cc, c.service, "IsAlive", in, opts...)
}

func (c *ReplicaServiceClient) GetState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*StateMessage, error) {
	return invoke[StateMessage](ctx, c.cc, c.service, "GetState", in, opts...)
}

func (c *ReplicaServiceClient) UpdateState(ctx context.Context, in *StateMessage, opts ...grpc.CallOption) (*UpdateStateResponse, error) {
	return invoke[UpdateStateResponse](ctx, c.cc, c.service, "UpdateState", in, opts...)
}

func (c *ReplicaServiceClient) UpdateReplicaStates(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*UpdateReplicaStatesResponse, error) {
	return invoke[UpdateReplicaStatesResponse](ctx, c.cc, c.service, "UpdateReplicaStates", in, opts...)
}
