// Package services exposes the authorized operation surface of one replica.
// Every auction operation checks the caller's session token before touching
// the store and reports failures as typed errors from internal/common.
package services

import (
	"context"

	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/server/auction"
	"github.com/dmitrijs2005/auctionrep/internal/server/auth"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
)

type AuctionService struct {
	store *auction.Store
	auth  *auth.Handler
	log   logging.Logger
}

func NewAuctionService(store *auction.Store, h *auth.Handler, log logging.Logger) *AuctionService {
	return &AuctionService{store: store, auth: h, log: log}
}

// Store returns the state behind the service. Replication reads and replaces it.
func (s *AuctionService) Store() *auction.Store {
	return s.store
}

func (s *AuctionService) Register(ctx context.Context, email string, publicKey []byte) int64 {
	return s.auth.Register(ctx, email, publicKey)
}

func (s *AuctionService) Challenge(ctx context.Context, userID int64, clientNonce string) (models.ChallengeInfo, error) {
	return s.auth.Challenge(ctx, userID, clientNonce)
}

func (s *AuctionService) Authenticate(ctx context.Context, userID int64, signature []byte) (models.Token, error) {
	return s.auth.Authenticate(ctx, userID, signature)
}

func (s *AuctionService) authorize(ctx context.Context, op string, userID int64, token string) error {
	if err := s.auth.Authorize(userID, token); err != nil {
		s.log.Warn(ctx, "unauthorized call", "op", op, "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (s *AuctionService) GetSpec(ctx context.Context, userID, itemID int64, token string) (models.Listing, error) {
	if err := s.authorize(ctx, "getSpec", userID, token); err != nil {
		return models.Listing{}, err
	}
	return s.store.GetSpec(itemID)
}

func (s *AuctionService) NewAuction(ctx context.Context, userID int64, item models.SaleItem, token string) (int64, error) {
	if err := s.authorize(ctx, "newAuction", userID, token); err != nil {
		return 0, err
	}

	id := s.store.NewAuction(userID, item)
	s.log.Info(ctx, "auction opened", "item_id", id, "owner_id", userID, "name", item.Name)

	return id, nil
}

func (s *AuctionService) ListItems(ctx context.Context, userID int64, token string) ([]models.Listing, error) {
	if err := s.authorize(ctx, "listItems", userID, token); err != nil {
		return nil, err
	}
	return s.store.ListItems(), nil
}

func (s *AuctionService) CloseAuction(ctx context.Context, userID, itemID int64, token string) (models.Result, error) {
	if err := s.authorize(ctx, "closeAuction", userID, token); err != nil {
		return models.Result{}, err
	}

	res, err := s.store.CloseAuction(userID, itemID)
	if err != nil {
		s.log.Warn(ctx, "close rejected", "item_id", itemID, "user_id", userID, "error", err)
		return models.Result{}, err
	}
	s.log.Info(ctx, "auction closed", "item_id", itemID, "winner", res.WinningEmail, "price", res.WinningPrice)

	return res, nil
}

func (s *AuctionService) Bid(ctx context.Context, userID, itemID, price int64, token string) error {
	if err := s.authorize(ctx, "bid", userID, token); err != nil {
		return err
	}

	if err := s.store.Bid(userID, itemID, price); err != nil {
		s.log.Debug(ctx, "bid rejected", "item_id", itemID, "user_id", userID, "price", price, "error", err)
		return err
	}

	return nil
}

