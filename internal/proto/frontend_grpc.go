package proto

import (
	"google.golang.org/grpc"
)

const FrontEndServiceName = "auction.FrontEndService"

// FrontEndServiceServer is the surface clients talk to.
type FrontEndServiceServer interface {
	AuctionServer
}

var FrontEndService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: FrontEndServiceName,
	HandlerType: (*FrontEndServiceServer)(nil),
	Methods:     auctionMethods(FrontEndServiceName),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "auction/frontend",
}

func RegisterFrontEndServiceServer(s grpc.ServiceRegistrar, srv FrontEndServiceServer) {
	s.RegisterService(&FrontEndService_ServiceDesc, srv)
}

type FrontEndServiceClient struct {
	AuctionClient
}

func NewFrontEndServiceClient(cc grpc.ClientConnInterface) *FrontEndServiceClient {
	return &FrontEndServiceClient{AuctionClient{cc: cc, service: FrontEndServiceName}}
}
