package replica

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/metrics"
	"github.com/dmitrijs2005/auctionrep/internal/server/auction"
	"github.com/dmitrijs2005/auctionrep/internal/server/auth"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/dmitrijs2005/auctionrep/internal/server/services"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localPeer reaches another in-process replica directly.
type localPeer struct {
	name string
	r    *Replica
}

func (p localPeer) Name() string { return p.name }

func (p localPeer) GetState(context.Context) (*models.Snapshot, error) {
	return p.r.GetState()
}

func (p localPeer) UpdateState(ctx context.Context, snap *models.Snapshot) error {
	return p.r.UpdateState(ctx, snap)
}

type deadPeer struct {
	name string
}

func (p deadPeer) Name() string { return p.name }

func (deadPeer) GetState(context.Context) (*models.Snapshot, error) {
	return nil, errors.New("connection refused")
}

func (deadPeer) UpdateState(context.Context, *models.Snapshot) error {
	return errors.New("connection refused")
}

type staticSource struct {
	mu    sync.Mutex
	peers []Peer
	err   error
}

func (s *staticSource) Peers(context.Context) ([]Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peers, s.err
}

func newReplica(t *testing.T, id string, source PeerSource) *Replica {
	t.Helper()
	_, priv, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	store := auction.NewStore()
	svc := services.NewAuctionService(store, auth.NewHandler(store, priv), logging.Nop())
	return New(id, svc, NewReplicator(id, store, source, logging.Nop(), metrics.Nop()))
}

func seed(t *testing.T, r *Replica) {
	t.Helper()
	s := r.Store()
	owner := s.Register("a@x.com", []byte("ka"))
	bidder := s.Register("b@x.com", []byte("kb"))
	lamp := s.NewAuction(owner, models.SaleItem{Name: "Lamp", ReservePrice: 10})
	s.NewAuction(owner, models.SaleItem{Name: "Vase"})
	require.NoError(t, s.Bid(bidder, lamp, 15))
}

func TestReplica_IdentityAndLiveness(t *testing.T) {
	r := newReplica(t, "replica-1", &staticSource{})
	assert.Equal(t, "replica-1", r.ID())
	assert.True(t, r.IsAlive())
}

func TestGetState_Checksummed(t *testing.T) {
	r := newReplica(t, "a", &staticSource{})
	seed(t, r)

	snap, err := r.GetState()
	require.NoError(t, err)
	assert.Equal(t, "a", snap.Origin)
	assert.Equal(t, int64(3), snap.NextUserID)
	assert.Equal(t, int64(3), snap.NextItemID)

	sum, err := Checksum(snap)
	require.NoError(t, err)
	assert.Equal(t, snap.Checksum, sum)
	assert.Len(t, sum, 32)
}

func TestUpdateState_RoundTrip(t *testing.T) {
	a := newReplica(t, "a", &staticSource{})
	b := newReplica(t, "b", &staticSource{})
	seed(t, a)

	snap, err := a.GetState()
	require.NoError(t, err)
	require.NoError(t, b.UpdateState(context.Background(), snap))

	if diff := cmp.Diff(a.Store().ListItems(), b.Store().ListItems()); diff != "" {
		t.Fatalf("listItems differ (-a +b):\n%s", diff)
	}
	for _, id := range []int64{1, 2, 3} {
		wantSpec, wantErr := a.Store().GetSpec(id)
		gotSpec, gotErr := b.Store().GetSpec(id)
		assert.Equal(t, wantSpec, gotSpec)
		assert.Equal(t, wantErr, gotErr)
	}
	assert.Equal(t, a.Store().Version(), b.Store().Version())
}

func TestUpdateState_LastWriterWins(t *testing.T) {
	a := newReplica(t, "a", &staticSource{})
	b := newReplica(t, "b", &staticSource{})
	seed(t, a)
	b.Store().Register("only-on-b@x.com", nil)

	snap, err := a.GetState()
	require.NoError(t, err)
	require.NoError(t, b.UpdateState(context.Background(), snap))

	assert.False(t, b.Store().UserExists(3))
	_, err = b.Store().UserByEmail("only-on-b@x.com")
	assert.ErrorIs(t, err, common.ErrorUnknownUser)
}

func TestUpdateState_RejectsTampered(t *testing.T) {
	ctx := context.Background()
	a := newReplica(t, "a", &staticSource{})
	b := newReplica(t, "b", &staticSource{})
	seed(t, a)
	b.Store().Register("keep@x.com", nil)

	snap, err := a.GetState()
	require.NoError(t, err)
	snap.Items[0].HighestBid = 1_000_000

	assert.ErrorIs(t, b.UpdateState(ctx, snap), common.ErrorChecksumMismatch)
	assert.True(t, b.Store().UserExists(1), "rejected snapshot must leave state untouched")

	snap.Checksum = nil
	assert.ErrorIs(t, b.UpdateState(ctx, snap), common.ErrorChecksumMismatch)
	assert.ErrorIs(t, b.UpdateState(ctx, nil), common.ErrorChecksumMismatch)
}

func TestUpdateReplicaStates_SkipsSelfFrontEndAndDeadPeers(t *testing.T) {
	source := &staticSource{}
	primary := newReplica(t, "a", source)
	b := newReplica(t, "b", &staticSource{})
	c := newReplica(t, "c", &staticSource{})
	fe := newReplica(t, "FrontEnd", &staticSource{})

	source.peers = []Peer{
		localPeer{name: "FrontEnd", r: fe},
		localPeer{name: "a", r: primary},
		deadPeer{name: "dead"},
		localPeer{name: "b", r: b},
		localPeer{name: "c", r: c},
	}
	seed(t, primary)

	n := primary.UpdateReplicaStates(context.Background())

	assert.Equal(t, 2, n)
	assert.Len(t, b.Store().ListItems(), 2)
	assert.Len(t, c.Store().ListItems(), 2)
	assert.Empty(t, fe.Store().ListItems(), "front end must not receive state")
}

func TestUpdateReplicaStates_DiscoveryFailure(t *testing.T) {
	r := newReplica(t, "a", &staticSource{err: errors.New("directory down")})
	assert.Zero(t, r.UpdateReplicaStates(context.Background()))
}

func TestBootstrap_FirstAnsweringPeer(t *testing.T) {
	first := newReplica(t, "first", &staticSource{})
	second := newReplica(t, "second", &staticSource{})
	seed(t, first)
	second.Store().Register("other@x.com", nil)

	r := newReplica(t, "new", &staticSource{peers: []Peer{
		deadPeer{name: "gone"},
		localPeer{name: "first", r: first},
		localPeer{name: "second", r: second},
	}})

	assert.True(t, r.Bootstrap(context.Background()))
	if diff := cmp.Diff(first.Store().ListItems(), r.Store().ListItems()); diff != "" {
		t.Fatalf("bootstrap pulled wrong state (-want +got):\n%s", diff)
	}
	_, err := r.Store().UserByEmail("other@x.com")
	assert.ErrorIs(t, err, common.ErrorUnknownUser)
}

func TestBootstrap_NoPeers(t *testing.T) {
	r := newReplica(t, "new", &staticSource{peers: []Peer{deadPeer{name: "gone"}}})
	assert.False(t, r.Bootstrap(context.Background()))
	assert.Empty(t, r.Store().ListItems())
	assert.Zero(t, r.Store().Version())
}
