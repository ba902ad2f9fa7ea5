// Package frontend routes every client call to a single elected primary
// replica and asks that primary to replicate its state afterwards.
//
// The primary is the first replica, in directory order, that answers a
// liveness probe. It is kept for as long as it keeps answering; the first
// failed probe triggers a fresh discovery and election.
package frontend

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/metrics"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
)

// Backend is a handle on one replica. Transport failures are reported wrapped
// in common.ErrorUnavailable; every other error is the replica's answer.
type Backend interface {
	Name() string
	IsAlive(ctx context.Context) error
	GetPrimaryReplicaID(ctx context.Context) (string, error)
	UpdateReplicaStates(ctx context.Context) (int, error)

	Register(ctx context.Context, email string, publicKey []byte) (int64, error)
	Challenge(ctx context.Context, userID int64, clientNonce string) (models.ChallengeInfo, error)
	Authenticate(ctx context.Context, userID int64, signature []byte) (models.Token, error)
	GetSpec(ctx context.Context, userID, itemID int64, token string) (models.Listing, error)
	NewAuction(ctx context.Context, userID int64, item models.SaleItem, token string) (int64, error)
	ListItems(ctx context.Context, userID int64, token string) ([]models.Listing, error)
	CloseAuction(ctx context.Context, userID, itemID int64, token string) (models.Result, error)
	Bid(ctx context.Context, userID, itemID, price int64, token string) error
}

// ReplicaSource lists the registered replicas in directory order. Front end
// entries are already filtered out.
type ReplicaSource interface {
	Replicas(ctx context.Context) ([]Backend, error)
}

type FrontEnd struct {
	mu      sync.Mutex
	primary Backend

	source  ReplicaSource
	logger  logging.Logger
	metrics metrics.Recorder
}

func New(source ReplicaSource, l logging.Logger, m metrics.Recorder) *FrontEnd {
	return &FrontEnd{
		source:  source,
		logger:  l.With("module", "frontend"),
		metrics: m,
	}
}

// Primary returns the current primary, electing a new one when there is none
// or the held one fails its probe.
func (f *FrontEnd) Primary(ctx context.Context) (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.primary != nil {
		if err := f.primary.IsAlive(ctx); err == nil {
			return f.primary, nil
		}
		f.logger.Warn(ctx, "primary lost", "replica", f.primary.Name())
		f.primary = nil
	}

	return f.elect(ctx)
}

func (f *FrontEnd) elect(ctx context.Context) (Backend, error) {
	candidates, err := f.source.Replicas(ctx)
	if err != nil {
		f.metrics.RecordElectionFailure()
		f.logger.Error(ctx, "replica discovery failed", "error", err)
		return nil, errors.Join(common.ErrorNoPrimary, err)
	}

	for _, c := range candidates {
		if common.IsFrontEndName(c.Name()) {
			continue
		}
		if err := c.IsAlive(ctx); err != nil {
			f.logger.Debug(ctx, "candidate not alive", "replica", c.Name(), "error", err)
			continue
		}
		f.primary = c
		f.metrics.RecordElection(c.Name())
		f.logger.Info(ctx, "primary elected", "replica", c.Name())
		return c, nil
	}

	f.metrics.RecordElectionFailure()
	f.logger.Error(ctx, "no live replica", "candidates", len(candidates))
	return nil, common.ErrorNoPrimary
}

// Healthy reports whether a primary can currently be resolved.
func (f *FrontEnd) Healthy(ctx context.Context) error {
	_, err := f.Primary(ctx)
	return err
}

// forward runs call on the primary and, unless the call itself failed in
// transport, has the primary push its state to the other replicas before the
// result is returned.
func forward[T any](ctx context.Context, f *FrontEnd, method string, call func(Backend) (T, error)) (T, error) {
	p, err := f.Primary(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	res, err := call(p)
	if errors.Is(err, common.ErrorUnavailable) {
		f.metrics.RecordForward(method, false)
		f.logger.Warn(ctx, "forwarded call failed", "method", method, "replica", p.Name(), "error", err)
		return res, err
	}
	f.metrics.RecordForward(method, true)

	if _, rerr := p.UpdateReplicaStates(ctx); rerr != nil {
		f.logger.Warn(ctx, "replication request failed", "replica", p.Name(), "error", rerr)
	}

	return res, err
}

func (f *FrontEnd) Register(ctx context.Context, email string, publicKey []byte) (int64, error) {
	return forward(ctx, f, "Register", func(b Backend) (int64, error) {
		return b.Register(ctx, email, publicKey)
	})
}

func (f *FrontEnd) Challenge(ctx context.Context, userID int64, clientNonce string) (models.ChallengeInfo, error) {
	return forward(ctx, f, "Challenge", func(b Backend) (models.ChallengeInfo, error) {
		return b.Challenge(ctx, userID, clientNonce)
	})
}

func (f *FrontEnd) Authenticate(ctx context.Context, userID int64, signature []byte) (models.Token, error) {
	return forward(ctx, f, "Authenticate", func(b Backend) (models.Token, error) {
		return b.Authenticate(ctx, userID, signature)
	})
}

func (f *FrontEnd) GetSpec(ctx context.Context, userID, itemID int64, token string) (models.Listing, error) {
	return forward(ctx, f, "GetSpec", func(b Backend) (models.Listing, error) {
		return b.GetSpec(ctx, userID, itemID, token)
	})
}

func (f *FrontEnd) NewAuction(ctx context.Context, userID int64, item models.SaleItem, token string) (int64, error) {
	return forward(ctx, f, "NewAuction", func(b Backend) (int64, error) {
		return b.NewAuction(ctx, userID, item, token)
	})
}

func (f *FrontEnd) ListItems(ctx context.Context, userID int64, token string) ([]models.Listing, error) {
	return forward(ctx, f, "ListItems", func(b Backend) ([]models.Listing, error) {
		return b.ListItems(ctx, userID, token)
	})
}

func (f *FrontEnd) CloseAuction(ctx context.Context, userID, itemID int64, token string) (models.Result, error) {
	return forward(ctx, f, "CloseAuction", func(b Backend) (models.Result, error) {
		return b.CloseAuction(ctx, userID, itemID, token)
	})
}

func (f *FrontEnd) Bid(ctx context.Context, userID, itemID, price int64, token string) error {
	_, err := forward(ctx, f, "Bid", func(b Backend) (struct{}, error) {
		return struct{}{}, b.Bid(ctx, userID, itemID, price, token)
	})
	return err
}

// GetPrimaryReplicaID is read-only and does not trigger replication.
func (f *FrontEnd) GetPrimaryReplicaID(ctx context.Context) (string, error) {
	p, err := f.Primary(ctx)
	if err != nil {
		return "", err
	}

	id, err := p.GetPrimaryReplicaID(ctx)
	f.metrics.RecordForward("GetPrimaryReplicaID", err == nil)
	return id, err
}
