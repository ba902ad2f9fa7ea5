package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	pb "github.com/dmitrijs2005/auctionrep/internal/proto"
	"github.com/dmitrijs2005/auctionrep/internal/server/directory"
	"github.com/dmitrijs2005/auctionrep/internal/server/frontend"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/dmitrijs2005/auctionrep/internal/server/replica"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Dial creates a lazily connecting client for address.
func Dial(address string) (*grpc.ClientConn, error) {
	return grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func unreachable(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// RemoteReplica is a replica reached over gRPC. It serves the front end as a
// Backend and other replicas as a Peer.
type RemoteReplica struct {
	name    string
	client  *pb.ReplicaServiceClient
	timeout time.Duration
}

func NewRemoteReplica(name string, cc grpc.ClientConnInterface, timeout time.Duration) *RemoteReplica {
	return &RemoteReplica{name: name, client: pb.NewReplicaServiceClient(cc), timeout: timeout}
}

func (r *RemoteReplica) Name() string { return r.name }

func (r *RemoteReplica) IsAlive(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.client.IsAlive(ctx, &emptypb.Empty{}); err != nil {
		return unreachable(err)
	}
	return nil
}

func (r *RemoteReplica) GetPrimaryReplicaID(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.GetPrimaryReplicaID(ctx, &emptypb.Empty{})
	if err != nil {
		return "", unreachable(err)
	}
	return resp.ReplicaID, nil
}

// UpdateReplicaStates is bounded by ctx only: the primary applies its own
// per-peer timeouts.
func (r *RemoteReplica) UpdateReplicaStates(ctx context.Context) (int, error) {
	resp, err := r.client.UpdateReplicaStates(ctx, &emptypb.Empty{})
	if err != nil {
		return 0, unreachable(err)
	}
	return int(resp.Updated), nil
}

func (r *RemoteReplica) GetState(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.GetState(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, unreachable(err)
	}
	return resp.Snapshot, nil
}

func (r *RemoteReplica) UpdateState(ctx context.Context, snap *models.Snapshot) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.UpdateState(ctx, &pb.StateMessage{Snapshot: snap})
	if err != nil {
		return unreachable(err)
	}
	if !resp.Applied {
		return pb.ErrorOf(resp.Reason)
	}
	return nil
}

func (r *RemoteReplica) Register(ctx context.Context, email string, publicKey []byte) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Register(ctx, &pb.RegisterRequest{Email: email, PublicKey: publicKey})
	if err != nil {
		return 0, unreachable(err)
	}
	if resp.UserID == nil {
		return 0, pb.ErrorOf(resp.Reason)
	}
	return *resp.UserID, nil
}

func (r *RemoteReplica) Challenge(ctx context.Context, userID int64, clientNonce string) (models.ChallengeInfo, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Challenge(ctx, &pb.ChallengeRequest{UserID: userID, ClientNonce: clientNonce})
	if err != nil {
		return models.ChallengeInfo{}, unreachable(err)
	}
	if resp.Info == nil {
		return models.ChallengeInfo{}, pb.ErrorOf(resp.Reason)
	}
	return *resp.Info, nil
}

func (r *RemoteReplica) Authenticate(ctx context.Context, userID int64, signature []byte) (models.Token, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Authenticate(ctx, &pb.AuthenticateRequest{UserID: userID, Signature: signature})
	if err != nil {
		return models.Token{}, unreachable(err)
	}
	if resp.Token == nil {
		return models.Token{}, pb.ErrorOf(resp.Reason)
	}
	return resp.Token.Model(), nil
}

func (r *RemoteReplica) GetSpec(ctx context.Context, userID, itemID int64, token string) (models.Listing, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.GetSpec(ctx, &pb.GetSpecRequest{UserID: userID, ItemID: itemID, Token: token})
	if err != nil {
		return models.Listing{}, unreachable(err)
	}
	if resp.Item == nil {
		return models.Listing{}, pb.ErrorOf(resp.Reason)
	}
	return *resp.Item, nil
}

func (r *RemoteReplica) NewAuction(ctx context.Context, userID int64, item models.SaleItem, token string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.NewAuction(ctx, &pb.NewAuctionRequest{UserID: userID, Item: item, Token: token})
	if err != nil {
		return 0, unreachable(err)
	}
	if resp.ItemID == nil {
		return 0, pb.ErrorOf(resp.Reason)
	}
	return *resp.ItemID, nil
}

func (r *RemoteReplica) ListItems(ctx context.Context, userID int64, token string) ([]models.Listing, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.ListItems(ctx, &pb.ListItemsRequest{UserID: userID, Token: token})
	if err != nil {
		return nil, unreachable(err)
	}
	if resp.Items == nil {
		return nil, pb.ErrorOf(resp.Reason)
	}
	return resp.Items, nil
}

func (r *RemoteReplica) CloseAuction(ctx context.Context, userID, itemID int64, token string) (models.Result, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CloseAuction(ctx, &pb.CloseAuctionRequest{UserID: userID, ItemID: itemID, Token: token})
	if err != nil {
		return models.Result{}, unreachable(err)
	}
	if resp.Result == nil {
		return models.Result{}, pb.ErrorOf(resp.Reason)
	}
	return *resp.Result, nil
}

func (r *RemoteReplica) Bid(ctx context.Context, userID, itemID, price int64, token string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Bid(ctx, &pb.BidRequest{UserID: userID, ItemID: itemID, Price: price, Token: token})
	if err != nil {
		return unreachable(err)
	}
	if !resp.Accepted {
		return pb.ErrorOf(resp.Reason)
	}
	return nil
}

// DirectoryClient talks to the registry directory.
type DirectoryClient struct {
	conn    *grpc.ClientConn
	client  *pb.DirectoryServiceClient
	timeout time.Duration
}

func NewDirectoryClient(address string, timeout time.Duration) (*DirectoryClient, error) {
	conn, err := Dial(address)
	if err != nil {
		return nil, fmt.Errorf("dial directory %s: %w", address, err)
	}
	return &DirectoryClient{conn: conn, client: pb.NewDirectoryServiceClient(conn), timeout: timeout}, nil
}

func (d *DirectoryClient) Bind(ctx context.Context, name, address string) error {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.client.Bind(ctx, &pb.BindRequest{Name: name, Address: address})
	return err
}

func (d *DirectoryClient) Unbind(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.client.Unbind(ctx, &pb.UnbindRequest{Name: name})
	return err
}

func (d *DirectoryClient) Lookup(ctx context.Context, name string) (string, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.Lookup(ctx, &pb.LookupRequest{Name: name})
	if err != nil {
		return "", err
	}
	if !resp.Found {
		return "", common.ErrorNotFound
	}
	return resp.Address, nil
}

// List returns every bound entry in registration order.
func (d *DirectoryClient) List(ctx context.Context) ([]directory.Entry, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.List(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	entries := make([]directory.Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		entries = append(entries, directory.Entry{Name: e.Name, Address: e.Address})
	}
	return entries, nil
}

func (d *DirectoryClient) Close() error {
	return d.conn.Close()
}

// ReplicaResolver turns the directory listing into replica handles, keeping
// one connection per address.
type ReplicaResolver struct {
	dir     *DirectoryClient
	timeout time.Duration

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

func NewReplicaResolver(dir *DirectoryClient, timeout time.Duration) *ReplicaResolver {
	return &ReplicaResolver{dir: dir, timeout: timeout, conns: make(map[string]*grpc.ClientConn)}
}

func (r *ReplicaResolver) conn(address string) (*grpc.ClientConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[address]; ok {
		return c, nil
	}
	c, err := Dial(address)
	if err != nil {
		return nil, err
	}
	r.conns[address] = c
	return c, nil
}

func (r *ReplicaResolver) remotes(ctx context.Context) ([]*RemoteReplica, error) {
	entries, err := r.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}

	var out []*RemoteReplica
	for _, e := range directory.Replicas(entries) {
		c, err := r.conn(e.Address)
		if err != nil {
			continue
		}
		out = append(out, NewRemoteReplica(e.Name, c, r.timeout))
	}
	return out, nil
}

// Peers implements replica.PeerSource.
func (r *ReplicaResolver) Peers(ctx context.Context) ([]replica.Peer, error) {
	remotes, err := r.remotes(ctx)
	if err != nil {
		return nil, err
	}
	peers := make([]replica.Peer, 0, len(remotes))
	for _, rr := range remotes {
		peers = append(peers, rr)
	}
	return peers, nil
}

// Replicas implements frontend.ReplicaSource.
func (r *ReplicaResolver) Replicas(ctx context.Context) ([]frontend.Backend, error) {
	remotes, err := r.remotes(ctx)
	if err != nil {
		return nil, err
	}
	backends := make([]frontend.Backend, 0, len(remotes))
	for _, rr := range remotes {
		backends = append(backends, rr)
	}
	return backends, nil
}

func (r *ReplicaResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for addr, c := range r.conns {
		_ = c.Close()
		delete(r.conns, addr)
	}
	return nil
}
