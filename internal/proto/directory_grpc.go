package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const DirectoryServiceName = "auction.DirectoryService"

type DirectoryServiceServer interface {
	Bind(context.Context, *BindRequest) (*emptypb.Empty, error)
	Unbind(context.Context, *UnbindRequest) (*UnbindResponse, error)
	Lookup(context.Context, *LookupRequest) (*LookupResponse, error)
	List(context.Context, *emptypb.Empty) (*ListResponse, error)
}

var DirectoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryServiceName,
	HandlerType: (*DirectoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DirectoryServiceName, "Bind", DirectoryServiceServer.Bind),
		unary(DirectoryServiceName, "Unbind", DirectoryServiceServer.Unbind),
		unary(DirectoryServiceName, "Lookup", DirectoryServiceServer.Lookup),
		unary(DirectoryServiceName, "List", DirectoryServiceServer.List),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "auction/directory",
}

func RegisterDirectoryServiceServer(s grpc.ServiceRegistrar, srv DirectoryServiceServer) {
	s.RegisterService(&DirectoryService_ServiceDesc, srv)
}

type DirectoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryServiceClient(cc grpc.ClientConnInterface) *DirectoryServiceClient {
	return &DirectoryServiceClient{cc: cc}
}

func (c *DirectoryServiceClient) Bind(ctx context.Context, in *BindRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, DirectoryServiceName, "Bind", in, opts...)
}

func (c *DirectoryServiceClient) Unbind(ctx context.Context, in *UnbindRequest, opts ...grpc.CallOption) (*UnbindResponse, error) {
	return invoke[UnbindResponse](ctx, c.cc, DirectoryServiceName, "Unbind", in, opts...)
}

func (c *DirectoryServiceClient) Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupResponse, error) {
	return invoke[LookupResponse](ctx, c.cc, DirectoryServiceName, "Lookup", in, opts...)
}

func (c *DirectoryServiceClient) List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, DirectoryServiceName, "List", in, opts...)
}
