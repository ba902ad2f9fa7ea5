package client

import (
	"context"
	"crypto/ed25519"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// stubFrontEnd is a single-user front end: every login issues token-<n>, and
// only the most recent token is accepted.
type stubFrontEnd struct {
	mu         sync.Mutex
	priv       ed25519.PrivateKey
	forgeSig   bool
	logins     int
	current    string
	requestIDs []string
}

func (s *stubFrontEnd) seen(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	s.requestIDs = append(s.requestIDs, md.Get("x-request-id")...)
}

func (s *stubFrontEnd) Register(ctx context.Context, _ *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen(ctx)
	id := int64(1)
	return &pb.RegisterResponse{UserID: &id}, nil
}

func (s *stubFrontEnd) Challenge(_ context.Context, req *pb.ChallengeRequest) (*pb.ChallengeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := []byte(req.ClientNonce)
	if s.forgeSig {
		msg = []byte("something else")
	}
	sig, _ := cryptox.Sign(s.priv, msg)
	return &pb.ChallengeResponse{Info: &models.ChallengeInfo{ServerNonce: "server-nonce", Signature: sig}}, nil
}

func (s *stubFrontEnd) Authenticate(context.Context, *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++
	s.current = "token-" + string(rune('0'+s.logins))
	return &pb.AuthenticateResponse{Token: pb.TokenFromModel(models.Token{Value: s.current, ExpiresAt: time.Now().Add(10 * time.Second)})}, nil
}

func (s *stubFrontEnd) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.current
}

func (s *stubFrontEnd) loginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *stubFrontEnd) firstRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requestIDs) == 0 {
		return ""
	}
	return s.requestIDs[0]
}

// expire invalidates the current token as if it had run out.
func (s *stubFrontEnd) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
}

func (s *stubFrontEnd) GetSpec(_ context.Context, req *pb.GetSpecRequest) (*pb.GetSpecResponse, error) {
	if !s.valid(req.Token) {
		return &pb.GetSpecResponse{Reason: "unauthorized"}, nil
	}
	return &pb.GetSpecResponse{Item: &models.Listing{ID: req.ItemID, Name: "Lamp"}}, nil
}

func (s *stubFrontEnd) NewAuction(_ context.Context, req *pb.NewAuctionRequest) (*pb.NewAuctionResponse, error) {
	if !s.valid(req.Token) {
		return &pb.NewAuctionResponse{Reason: "unauthorized"}, nil
	}
	id := int64(1)
	return &pb.NewAuctionResponse{ItemID: &id}, nil
}

func (s *stubFrontEnd) ListItems(_ context.Context, req *pb.ListItemsRequest) (*pb.ListItemsResponse, error) {
	if !s.valid(req.Token) {
		return &pb.ListItemsResponse{Reason: "unauthorized"}, nil
	}
	return &pb.ListItemsResponse{Items: []models.Listing{}}, nil
}

func (s *stubFrontEnd) CloseAuction(_ context.Context, req *pb.CloseAuctionRequest) (*pb.CloseAuctionResponse, error) {
	return &pb.CloseAuctionResponse{Reason: "forbidden"}, nil
}

func (s *stubFrontEnd) Bid(_ context.Context, req *pb.BidRequest) (*pb.BidResponse, error) {
	if !s.valid(req.Token) {
		return &pb.BidResponse{Reason: "unauthorized"}, nil
	}
	return &pb.BidResponse{Accepted: req.Price > 10, Reason: "bid_too_low"}, nil
}

func (s *stubFrontEnd) GetPrimaryReplicaID(context.Context, *emptypb.Empty) (*pb.PrimaryReplicaIDResponse, error) {
	return nil, status.Error(codes.Unavailable, "no live replica")
}

func startStub(t *testing.T, stub *stubFrontEnd) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	pb.RegisterFrontEndServiceServer(srv, stub)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func newStub(t *testing.T) (*stubFrontEnd, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	return &stubFrontEnd{priv: priv}, pub
}

func dialStub(t *testing.T, stub *stubFrontEnd, serverPub ed25519.PublicKey) *Client {
	t.Helper()
	c, err := Dial(startStub(t, stub), serverPub)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLogin_VerifiesServerIdentity(t *testing.T) {
	ctx := context.Background()
	stub, serverPub := newStub(t)
	stub.forgeSig = true
	c := dialStub(t, stub, serverPub)

	_, priv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	_, err = c.Login(ctx, "a@x.com", priv)
	assert.ErrorIs(t, err, ErrServerIdentityFailed)
	assert.Zero(t, stub.loginCount(), "client must not authenticate to an unverified server")
}

func TestLogin_AndCalls(t *testing.T) {
	ctx := context.Background()
	stub, serverPub := newStub(t)
	c := dialStub(t, stub, serverPub)

	_, priv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	id, err := c.Login(ctx, "a@x.com", priv)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	uid, tok := c.Session()
	assert.Equal(t, int64(1), uid)
	assert.Equal(t, "token-1", tok.Value)

	spec, err := c.GetSpec(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), spec.ID)

	assert.ErrorIs(t, c.Bid(ctx, 1, 5), common.ErrorBidTooLow)
	require.NoError(t, c.Bid(ctx, 1, 15))

	_, err = c.CloseAuction(ctx, 1)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.NotEmpty(t, stub.firstRequestID())
}

func TestSession_RenewedOnceWhenExpired(t *testing.T) {
	ctx := context.Background()
	stub, serverPub := newStub(t)
	c := dialStub(t, stub, serverPub)

	_, priv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	_, err = c.Login(ctx, "a@x.com", priv)
	require.NoError(t, err)

	stub.expire()

	id, err := c.NewAuction(ctx, models.SaleItem{Name: "Lamp"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 2, stub.loginCount())

	_, tok := c.Session()
	assert.Equal(t, "token-2", tok.Value)
}

func TestCalls_RequireLogin(t *testing.T) {
	stub, serverPub := newStub(t)
	c := dialStub(t, stub, serverPub)

	_, err := c.ListItems(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestPrimaryReplicaID_Unavailable(t *testing.T) {
	stub, serverPub := newStub(t)
	c := dialStub(t, stub, serverPub)

	_, err := c.PrimaryReplicaID(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
