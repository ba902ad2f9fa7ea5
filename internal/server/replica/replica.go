// Package replica turns an auction service into a replica: it can hand out
// its whole state, accept a peer's state wholesale and push its own state to
// every other registered replica.
package replica

import (
	"context"

	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"github.com/dmitrijs2005/auctionrep/internal/server/services"
)

// Replica serves the auction operations of its service and delegates state
// transfer to its replicator.
type Replica struct {
	*services.AuctionService

	id         string
	replicator *Replicator
}

func New(id string, svc *services.AuctionService, r *Replicator) *Replica {
	return &Replica{AuctionService: svc, id: id, replicator: r}
}

// ID is the name this replica is registered under.
func (r *Replica) ID() string { return r.id }

// IsAlive always holds; an unreachable replica fails the call instead.
func (r *Replica) IsAlive() bool { return true }

func (r *Replica) GetState() (*models.Snapshot, error) {
	return r.replicator.GetState()
}

func (r *Replica) UpdateState(ctx context.Context, snap *models.Snapshot) error {
	return r.replicator.UpdateState(ctx, snap)
}

func (r *Replica) UpdateReplicaStates(ctx context.Context) int {
	return r.replicator.UpdateReplicaStates(ctx)
}

func (r *Replica) Bootstrap(ctx context.Context) bool {
	return r.replicator.Bootstrap(ctx)
}
