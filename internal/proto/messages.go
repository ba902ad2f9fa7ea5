package proto

import (
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/server/models"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Rejected calls answer with a null or false result. Reason names the cause
// for logs and Go clients; callers relying on the null/false contract can
// ignore it.

type RegisterRequest struct {
	Email     string `json:"email"`
	PublicKey []byte `json:"public_key"`
}

type RegisterResponse struct {
	UserID *int64 `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

type ChallengeRequest struct {
	UserID      int64  `json:"user_id"`
	ClientNonce string `json:"client_nonce"`
}

type ChallengeResponse struct {
	Info   *models.ChallengeInfo `json:"info"`
	Reason string                `json:"reason,omitempty"`
}

type AuthenticateRequest struct {
	UserID    int64  `json:"user_id"`
	Signature []byte `json:"signature"`
}

// Token is a session token on the wire.
type Token struct {
	Value     string                 `json:"value"`
	ExpiresAt *timestamppb.Timestamp `json:"expires_at"`
}

func TokenFromModel(t models.Token) *Token {
	return &Token{Value: t.Value, ExpiresAt: timestamppb.New(t.ExpiresAt)}
}

func (t *Token) Model() models.Token {
	var exp time.Time
	if t.ExpiresAt != nil {
		exp = t.ExpiresAt.AsTime()
	}
	return models.Token{Value: t.Value, ExpiresAt: exp}
}

type AuthenticateResponse struct {
	Token  *Token `json:"token"`
	Reason string `json:"reason,omitempty"`
}

type GetSpecRequest struct {
	UserID int64  `json:"user_id"`
	ItemID int64  `json:"item_id"`
	Token  string `json:"token"`
}

type GetSpecResponse struct {
	Item   *models.Listing `json:"item"`
	Reason string          `json:"reason,omitempty"`
}

type NewAuctionRequest struct {
	UserID int64           `json:"user_id"`
	Item   models.SaleItem `json:"item"`
	Token  string          `json:"token"`
}

type NewAuctionResponse struct {
	ItemID *int64 `json:"item_id"`
	Reason string `json:"reason,omitempty"`
}

type ListItemsRequest struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// ListItemsResponse has a nil Items on rejection and an empty one when no
// auction is open.
type ListItemsResponse struct {
	Items  []models.Listing `json:"items"`
	Reason string           `json:"reason,omitempty"`
}

type CloseAuctionRequest struct {
	UserID int64  `json:"user_id"`
	ItemID int64  `json:"item_id"`
	Token  string `json:"token"`
}

type CloseAuctionResponse struct {
	Result *models.Result `json:"result"`
	Reason string         `json:"reason,omitempty"`
}

type BidRequest struct {
	UserID int64  `json:"user_id"`
	ItemID int64  `json:"item_id"`
	Price  int64  `json:"price"`
	Token  string `json:"token"`
}

type BidResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type IsAliveResponse struct {
	Alive bool `json:"alive"`
}

type PrimaryReplicaIDResponse struct {
	ReplicaID string `json:"replica_id"`
}

type StateMessage struct {
	Snapshot *models.Snapshot `json:"snapshot"`
}

type UpdateStateResponse struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

type UpdateReplicaStatesResponse struct {
	Updated int32 `json:"updated"`
}

type DirectoryEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type BindRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UnbindRequest struct {
	Name string `json:"name"`
}

type UnbindResponse struct {
	Removed bool `json:"removed"`
}

type LookupRequest struct {
	Name string `json:"name"`
}

type LookupResponse struct {
	Address string `json:"address"`
	Found   bool   `json:"found"`
}

type ListResponse struct {
	Entries []DirectoryEntry `json:"entries"`
}
