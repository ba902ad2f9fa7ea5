// Package models holds the data types shared by the auction store, the auth
// handler, replication and the RPC layer.
package models

import (
	"bytes"
	"time"
)

// User is a registered client identity. PublicKey is the PKIX DER encoding of
// the user's current Ed25519 key.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	PublicKey []byte `json:"public_key"`
}

func (u *User) Clone() *User {
	c := *u
	c.PublicKey = bytes.Clone(u.PublicKey)
	return &c
}

// Token is a session token and its absolute expiry.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengeInfo is returned by the challenge step: the server's own nonce and
// the server signature over the client's nonce.
type ChallengeInfo struct {
	ServerNonce string `json:"server_nonce"`
	Signature   []byte `json:"signature"`
}
