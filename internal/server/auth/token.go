package auth

import (
	"crypto/ed25519"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by a session token. The token is opaque to clients and is
// validated by exact match against the stored copy, so the claims only serve
// as a self-describing, server-signed record of who it was issued to.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken mints a compact EdDSA-signed JWT for userID expiring at exp.
// Without a key it falls back to a random opaque string.
func GenerateToken(userID int64, key ed25519.PrivateKey, issuedAt, exp time.Time) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return common.MakeRandBase64String(common.NonceSize)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	return token.SignedString(key)
}

// GetUserIDFromToken verifies the signature and expiry of a token minted by
// GenerateToken and returns its subject.
func GetUserIDFromToken(tokenString string, pub ed25519.PublicKey, now time.Time) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return 0, err
	}

	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	return strconv.ParseInt(claims.Subject, 10, 64)
}
