// Package auth implements the challenge-response handshake and session tokens
// on top of the auction store.
//
// A client registers its public key, sends a nonce to Challenge and checks
// the server signature over it, then signs the returned server nonce and
// hands the signature to Authenticate, which issues a short-lived token.
package auth

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/server/auction"
	"github.com/dmitrijs2005/auctionrep/internal/server/models"
)

type Handler struct {
	store    *auction.Store
	key      ed25519.PrivateKey
	validity time.Duration
	now      func() time.Time
	log      logging.Logger
}

type Option func(*Handler)

// WithClock replaces time.Now as the source of issue and validation times.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func WithTokenValidity(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.validity = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// NewHandler builds a handler signing with key. A nil key leaves the handler
// degraded: every Challenge fails until the replica is restarted with a key.
func NewHandler(store *auction.Store, key ed25519.PrivateKey, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		key:      key,
		validity: common.DefaultTokenValidity,
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(ctx context.Context, email string, publicKey []byte) int64 {
	id := h.store.Register(email, publicKey)
	h.log.Info(ctx, "user registered", "user_id", id, "email", email)
	return id
}

// Challenge stores a fresh server nonce for userID and signs clientNonce with
// the server key.
func (h *Handler) Challenge(ctx context.Context, userID int64, clientNonce string) (models.ChallengeInfo, error) {
	if h.key == nil {
		h.log.Error(ctx, "challenge refused, server key not loaded", "user_id", userID)
		return models.ChallengeInfo{}, common.ErrorInternal
	}

	serverNonce, err := common.MakeRandBase64String(common.NonceSize)
	if err != nil {
		return models.ChallengeInfo{}, common.ErrorInternal
	}

	sig, err := cryptox.Sign(h.key, []byte(clientNonce))
	if err != nil {
		h.log.Error(ctx, "signing client nonce", "user_id", userID, "error", err)
		return models.ChallengeInfo{}, common.ErrorInternal
	}

	h.store.PutChallenge(userID, serverNonce)

	return models.ChallengeInfo{ServerNonce: serverNonce, Signature: sig}, nil
}

// Authenticate checks signature against the pending server nonce of userID and
// issues a new session token, replacing any earlier one.
func (h *Handler) Authenticate(ctx context.Context, userID int64, signature []byte) (models.Token, error) {
	user, err := h.store.User(userID)
	if err != nil {
		h.log.Warn(ctx, "authenticate for unknown user", "user_id", userID)
		return models.Token{}, common.ErrorAuthFailed
	}

	nonce, ok := h.store.Challenge(userID)
	if !ok {
		h.log.Warn(ctx, "authenticate without challenge", "user_id", userID)
		return models.Token{}, common.ErrorAuthFailed
	}

	if err := cryptox.Verify(user.PublicKey, []byte(nonce), signature); err != nil {
		h.log.Warn(ctx, "signature rejected", "user_id", userID, "error", err)
		return models.Token{}, common.ErrorAuthFailed
	}

	now := h.now()
	token := models.Token{ExpiresAt: now.Add(h.validity)}
	token.Value, err = GenerateToken(userID, h.key, now, token.ExpiresAt)
	if err != nil {
		h.log.Error(ctx, "minting token", "user_id", userID, "error", err)
		return models.Token{}, common.ErrorInternal
	}

	h.store.PutToken(userID, token)
	h.log.Info(ctx, "user authenticated", "user_id", userID, "expires_at", token.ExpiresAt)

	return token, nil
}

// IsValidToken reports whether token is exactly the one last issued to userID
// and has not yet expired.
func (h *Handler) IsValidToken(userID int64, token string) bool {
	stored, ok := h.store.Token(userID)
	if !ok || token == "" || stored.Value != token {
		return false
	}
	return h.now().Before(stored.ExpiresAt)
}

// Authorize is IsValidToken plus the registered-user check done by every
// auction operation.
func (h *Handler) Authorize(userID int64, token string) error {
	if !h.IsValidToken(userID, token) {
		return common.ErrorUnauthorized
	}
	if !h.store.UserExists(userID) {
		return common.ErrorUnknownUser
	}
	return nil
}

