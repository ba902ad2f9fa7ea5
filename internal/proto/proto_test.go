package proto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestCodec_ProtoAndPlainMessages(t *testing.T) {
	c := jsonCodec{}

	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
	require.NoError(t, c.Unmarshal(data, &emptypb.Empty{}))

	data, err = c.Marshal(&BidResponse{Accepted: false, Reason: "bid_too_low"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"accepted":false,"reason":"bid_too_low"}`, string(data))
}

func TestCodec_NullResults(t *testing.T) {
	c := jsonCodec{}

	data, err := c.Marshal(&GetSpecResponse{Reason: "not_found"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":null,"reason":"not_found"}`, string(data))

	data, err = c.Marshal(&ListItemsResponse{Items: []models.Listing{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data), "an empty listing is not a rejection")
}

func TestToken_TimestampRoundTrip(t *testing.T) {
	c := jsonCodec{}
	exp := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)

	data, err := c.Marshal(&AuthenticateResponse{Token: TokenFromModel(models.Token{Value: "v", ExpiresAt: exp})})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2026-01-02T03:04:05.000000600Z"`)

	var out AuthenticateResponse
	require.NoError(t, c.Unmarshal(data, &out))
	require.NotNil(t, out.Token)
	got := out.Token.Model()
	assert.Equal(t, "v", got.Value)
	assert.True(t, got.ExpiresAt.Equal(exp))

	require.NoError(t, c.Unmarshal([]byte(`{"token":{"value":"v","expires_at":null}}`), &out))
	assert.Nil(t, out.Token.ExpiresAt)
	assert.True(t, out.Token.Model().ExpiresAt.IsZero())
}

func TestReasons(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{common.ErrorBidTooLow, "bid_too_low"},
		{fmt.Errorf("wrapped: %w", common.ErrorForbidden), "forbidden"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReasonOf(tt.err))
	}

	assert.ErrorIs(t, ErrorOf("not_found"), common.ErrorNotFound)
	assert.ErrorIs(t, ErrorOf(""), common.ErrorInternal)
	assert.ErrorIs(t, ErrorOf("something new"), common.ErrorInternal)
}

type directoryStub struct {
	bound map[string]string
}

func (d *directoryStub) Bind(_ context.Context, in *BindRequest) (*emptypb.Empty, error) {
	d.bound[in.Name] = in.Address
	return &emptypb.Empty{}, nil
}

func (d *directoryStub) Unbind(_ context.Context, in *UnbindRequest) (*UnbindResponse, error) {
	_, ok := d.bound[in.Name]
	delete(d.bound, in.Name)
	return &UnbindResponse{Removed: ok}, nil
}

func (d *directoryStub) Lookup(_ context.Context, in *LookupRequest) (*LookupResponse, error) {
	addr, ok := d.bound[in.Name]
	return &LookupResponse{Address: addr, Found: ok}, nil
}

func (d *directoryStub) List(context.Context, *emptypb.Empty) (*ListResponse, error) {
	out := &ListResponse{}
	for n, a := range d.bound {
		out.Entries = append(out.Entries, DirectoryEntry{Name: n, Address: a})
	}
	return out, nil
}

func TestServiceDesc_OverBufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	seen := ""
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return h(ctx, req)
	}))
	RegisterDirectoryServiceServer(srv, &directoryStub{bound: map[string]string{}})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := NewDirectoryServiceClient(conn)

	_, err = c.Bind(ctx, &BindRequest{Name: "r1", Address: "127.0.0.1:1"})
	require.NoError(t, err)
	assert.Equal(t, "/auction.DirectoryService/Bind", seen)

	got, err := c.Lookup(ctx, &LookupRequest{Name: "r1"})
	require.NoError(t, err)
	assert.Equal(t, &LookupResponse{Address: "127.0.0.1:1", Found: true}, got)

	removed, err := c.Unbind(ctx, &UnbindRequest{Name: "r1"})
	require.NoError(t, err)
	assert.True(t, removed.Removed)

	list, err := c.List(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, list.Entries)
}

func TestTokenFromModel(t *testing.T) {
	exp := time.Unix(10, 0).UTC()
	tok := TokenFromModel(models.Token{Value: "x", ExpiresAt: exp})
	assert.True(t, tok.ExpiresAt.AsTime().Equal(exp))
	assert.Equal(t, timestamppb.New(exp).GetSeconds(), tok.ExpiresAt.GetSeconds())
}
