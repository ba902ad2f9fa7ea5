// Package auction is the in-memory authoritative state of one replica:
// registered users, auction records, pending challenges and session tokens.
// It holds no networking; replication copies it by value through Snapshot and
// Restore.
package auction

import (
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
)

type locker interface {
	Lock()
	Unlock()
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Store owns every map of the replica state. Each exported method is one
// operation and holds the store guard for its whole duration.
type Store struct {
	mu locker

	usersByEmail map[string]*models.User
	usersByID    map[int64]*models.User
	items        map[int64]*models.Item
	tokens       map[int64]models.Token
	challenges   map[int64]string

	lastUserID int64
	lastItemID int64
	version    uint64
}

type Option func(*Store)

// WithoutLocking drops the per-operation guard. Only single-goroutine callers
// may use such a store: concurrent writers to Go maps abort the process.
func WithoutLocking() Option {
	return func(s *Store) {
		s.mu = nopLocker{}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{mu: &sync.Mutex{}}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) reset() {
	s.usersByEmail = make(map[string]*models.User)
	s.usersByID = make(map[int64]*models.User)
	s.items = make(map[int64]*models.Item)
	s.tokens = make(map[int64]models.Token)
	s.challenges = make(map[int64]string)
	s.lastUserID = 0
	s.lastItemID = 0
}

// Version is the number of mutations applied to this state, including the ones
// inherited through Restore.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Register returns the id bound to email, refreshing its public key, or binds
// a new id when the email is unknown.
func (s *Store) Register(email string, publicKey []byte) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++

	if u, ok := s.usersByEmail[email]; ok {
		u.PublicKey = append([]byte(nil), publicKey...)
		return u.ID
	}

	s.lastUserID++
	u := &models.User{
		ID:        s.lastUserID,
		Email:     email,
		PublicKey: append([]byte(nil), publicKey...),
	}
	s.usersByEmail[email] = u
	s.usersByID[u.ID] = u

	return u.ID
}

// User returns a copy of the user with the given id.
func (s *Store) User(id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[id]
	if !ok {
		return nil, common.ErrorUnknownUser
	}
	return u.Clone(), nil
}

// UserByEmail returns a copy of the user registered under email.
func (s *Store) UserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, common.ErrorUnknownUser
	}
	return u.Clone(), nil
}

func (s *Store) UserExists(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.usersByID[id]
	return ok
}

// NewAuction opens an auction owned by ownerID and returns its item id.
func (s *Store) NewAuction(ownerID int64, sale models.SaleItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.lastItemID++

	s.items[s.lastItemID] = &models.Item{
		ID:           s.lastItemID,
		Name:         sale.Name,
		Description:  sale.Description,
		ReservePrice: sale.ReservePrice,
		OwnerID:      ownerID,
		Open:         true,
	}

	return s.lastItemID
}

// GetSpec returns the public listing of an open item.
func (s *Store) GetSpec(itemID int64) (models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || !item.Open {
		return models.Listing{}, common.ErrorNotFound
	}
	return item.Listing(), nil
}

// Record returns a copy of the full record of an item, open or closed.
func (s *Store) Record(itemID int64) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *item
	return &c, nil
}

// ListItems returns the listings of all open items ordered by id.
func (s *Store) ListItems() []models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings := make([]models.Listing, 0, len(s.items))
	for _, item := range s.items {
		if item.Open {
			listings = append(listings, item.Listing())
		}
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })

	return listings
}

// Bid accepts price only when it is strictly greater than the current highest
// bid. The reserve price is not a floor.
func (s *Store) Bid(userID, itemID, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || !item.Open {
		return common.ErrorNotFound
	}
	if price <= item.HighestBid {
		return common.ErrorBidTooLow
	}

	s.version++
	item.HighestBid = price
	item.HighestBidderID = userID

	return nil
}

// CloseAuction closes an open item on behalf of its owner and reports the
// winner. The record is kept; only the public listing disappears.
func (s *Store) CloseAuction(userID, itemID int64) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || !item.Open {
		return models.Result{}, common.ErrorNotFound
	}
	if item.OwnerID != userID {
		return models.Result{}, common.ErrorForbidden
	}

	s.version++
	item.Open = false

	result := models.Result{WinningPrice: item.HighestBid}
	if bidder, ok := s.usersByID[item.HighestBidderID]; ok && item.HasBidder() {
		result.WinningEmail = bidder.Email
		result.HasWinner = true
	}

	return result, nil
}

// PutChallenge stores the pending server nonce for userID, replacing any
// previous one.
func (s *Store) PutChallenge(userID int64, nonce string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.challenges[userID] = nonce
}

func (s *Store) Challenge(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, ok := s.challenges[userID]
	return nonce, ok
}

// PutToken stores the session token of userID, replacing any previous one.
func (s *Store) PutToken(userID int64, token models.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.tokens[userID] = token
}

func (s *Store) Token(userID int64) (models.Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[userID]
	return t, ok
}

// Snapshot deep-copies the whole state. Users and items are ordered by id.
func (s *Store) Snapshot(origin string, takenAt time.Time) *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &models.Snapshot{
		Version:    s.version,
		Origin:     origin,
		TakenAt:    takenAt,
		NextUserID: s.lastUserID + 1,
		NextItemID: s.lastItemID + 1,
		Users:      make([]*models.User, 0, len(s.usersByID)),
		Items:      make([]*models.Item, 0, len(s.items)),
		Tokens:     make(map[int64]models.Token, len(s.tokens)),
		Challenges: make(map[int64]string, len(s.challenges)),
	}

	for _, u := range s.usersByID {
		snap.Users = append(snap.Users, u.Clone())
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })

	for _, item := range s.items {
		c := *item
		snap.Items = append(snap.Items, &c)
	}
	sort.Slice(snap.Items, func(i, j int) bool { return snap.Items[i].ID < snap.Items[j].ID })

	for id, t := range s.tokens {
		snap.Tokens[id] = t
	}
	for id, nonce := range s.challenges {
		snap.Challenges[id] = nonce
	}

	return snap
}

// Restore replaces the whole state with a copy of snap. Nothing is merged.
func (s *Store) Restore(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	s.lastUserID = max(snap.NextUserID-1, 0)
	s.lastItemID = max(snap.NextItemID-1, 0)

	for _, u := range snap.Users {
		c := u.Clone()
		s.usersByID[c.ID] = c
		s.usersByEmail[c.Email] = c
		s.lastUserID = max(s.lastUserID, c.ID)
	}
	for _, item := range snap.Items {
		c := *item
		s.items[c.ID] = &c
		s.lastItemID = max(s.lastItemID, c.ID)
	}
	for id, t := range snap.Tokens {
		s.tokens[id] = t
	}
	for id, nonce := range snap.Challenges {
		s.challenges[id] = nonce
	}

	s.version = snap.Version
}
