package replica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/metrics"
	"github.com/dmitrijs2005/auctionrep/internal/server/auction"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"golang.org/x/sync/errgroup"
)

// Peer is another replica reachable for state transfer.
type Peer interface {
	Name() string
	GetState(ctx context.Context) (*models.Snapshot, error)
	UpdateState(ctx context.Context, snap *models.Snapshot) error
}

// PeerSource enumerates the replicas currently registered in the directory,
// in directory order.
type PeerSource interface {
	Peers(ctx context.Context) ([]Peer, error)
}

// Replicator moves whole-state snapshots between the local store and peers.
type Replicator struct {
	self    string
	store   *auction.Store
	source  PeerSource
	now     func() time.Time
	logger  logging.Logger
	metrics metrics.Recorder
}

func NewReplicator(self string, store *auction.Store, source PeerSource, l logging.Logger, m metrics.Recorder) *Replicator {
	return &Replicator{
		self:    self,
		store:   store,
		source:  source,
		now:     time.Now,
		logger:  l.With("module", "replicator"),
		metrics: m,
	}
}

// Checksum hashes the canonical JSON form of snap with its Checksum field
// cleared. Map keys are sorted by encoding/json, so equal states hash equally.
func Checksum(snap *models.Snapshot) ([]byte, error) {
	body := *snap
	body.Checksum = nil

	data, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return cryptox.Digest(data), nil
}

// GetState returns a checksummed deep copy of the local state.
func (r *Replicator) GetState() (*models.Snapshot, error) {
	snap := r.store.Snapshot(r.self, r.now().UTC())

	sum, err := Checksum(snap)
	if err != nil {
		return nil, err
	}
	snap.Checksum = sum

	return snap, nil
}

// UpdateState replaces the local state with snap after checking its checksum.
func (r *Replicator) UpdateState(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		r.metrics.RecordSnapshotRejected()
		return fmt.Errorf("empty snapshot: %w", common.ErrorChecksumMismatch)
	}

	sum, err := Checksum(snap)
	if err != nil {
		r.metrics.RecordSnapshotRejected()
		return err
	}
	if !bytes.Equal(sum, snap.Checksum) {
		r.metrics.RecordSnapshotRejected()
		r.logger.Warn(ctx, "snapshot rejected", "origin", snap.Origin, "version", snap.Version)
		return common.ErrorChecksumMismatch
	}

	r.store.Restore(snap)
	r.metrics.RecordSnapshotApplied()
	r.logger.Debug(ctx, "snapshot applied", "origin", snap.Origin, "version", snap.Version)

	return nil
}

// peers lists the registered replicas other than this one, skipping front ends.
func (r *Replicator) peers(ctx context.Context) ([]Peer, error) {
	all, err := r.source.Peers(ctx)
	if err != nil {
		return nil, err
	}

	peers := make([]Peer, 0, len(all))
	for _, p := range all {
		if p.Name() == r.self || common.IsFrontEndName(p.Name()) {
			continue
		}
		peers = append(peers, p)
	}
	return peers, nil
}

// UpdateReplicaStates pushes the current state to every peer concurrently and
// returns how many accepted it. Unreachable peers are skipped.
func (r *Replicator) UpdateReplicaStates(ctx context.Context) int {
	peers, err := r.peers(ctx)
	if err != nil {
		r.logger.Warn(ctx, "peer discovery failed", "error", err)
		return 0
	}
	if len(peers) == 0 {
		return 0
	}

	snap, err := r.GetState()
	if err != nil {
		r.logger.Error(ctx, "snapshot failed", "error", err)
		return 0
	}

	var (
		g       errgroup.Group
		updated atomic.Int64
	)
	for _, p := range peers {
		p := p
		g.Go(func() error {
			if err := p.UpdateState(ctx, snap); err != nil {
				r.metrics.RecordReplicationPush(false)
				r.logger.Warn(ctx, "peer skipped", "peer", p.Name(), "error", err)
				return nil
			}
			r.metrics.RecordReplicationPush(true)
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(updated.Load())
}

// Bootstrap pulls the state of the first peer that answers and reports
// whether one did. With no reachable peer the store is left empty.
func (r *Replicator) Bootstrap(ctx context.Context) bool {
	peers, err := r.peers(ctx)
	if err != nil {
		r.logger.Warn(ctx, "peer discovery failed, starting empty", "error", err)
		return false
	}

	for _, p := range peers {
		snap, err := p.GetState(ctx)
		if err != nil {
			r.logger.Debug(ctx, "peer did not answer", "peer", p.Name(), "error", err)
			continue
		}
		if err := r.UpdateState(ctx, snap); err != nil {
			continue
		}
		r.logger.Info(ctx, "state pulled", "peer", p.Name(), "version", snap.Version)
		return true
	}

	r.logger.Info(ctx, "no peer reachable, starting empty")
	return false
}
