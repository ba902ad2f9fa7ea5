// Package cryptox manages the Ed25519 key material used by the challenge-response
// handshake: generating key pairs, reading and writing key files, signing and
// verifying nonces, and hashing replication snapshots.
//
// Key files hold Base64 text. Public keys use the PKIX (X.509
// SubjectPublicKeyInfo) DER encoding, private keys use PKCS#8 DER, so a public
// key file can be read without knowing anything about the private key format.
package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/filex"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrNotEd25519       = errors.New("key is not an Ed25519 key")
	ErrInvalidSignature = errors.New("invalid signature")
)

// GenerateKeyPair creates a fresh Ed25519 key pair.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// MarshalPublicKey returns the PKIX DER encoding of pub.
func MarshalPublicKey(pub ed25519.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pub)
}

// ParsePublicKey decodes a PKIX DER public key and checks that it is Ed25519.
func ParsePublicKey(der []byte) (ed25519.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, ErrNotEd25519
	}
	return pub, nil
}

func parsePrivateKey(der []byte) (ed25519.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrNotEd25519
	}
	return priv, nil
}

func writeBase64File(path string, der []byte, perm os.FileMode) error {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(der)), perm)
}

func readBase64File(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
}

// StorePublicKey writes pub to path as Base64(PKIX DER).
func StorePublicKey(path string, pub ed25519.PublicKey) error {
	der, err := MarshalPublicKey(pub)
	if err != nil {
		return err
	}
	return writeBase64File(path, der, 0o644)
}

// StorePrivateKey writes priv to path as Base64(PKCS#8 DER), readable by the owner only.
func StorePrivateKey(path string, priv ed25519.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(der)
	return writeBase64File(path, der, 0o600)
}

// LoadPublicKey reads a public key file written by StorePublicKey.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	der, err := readBase64File(path)
	if err != nil {
		return nil, fmt.Errorf("read public key %s: %w", path, err)
	}
	return ParsePublicKey(der)
}

// LoadPrivateKey reads a private key file written by StorePrivateKey.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	der, err := readBase64File(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}
	return parsePrivateKey(der)
}

// LoadOrGenerate loads the key pair at privPath/pubPath when both files exist,
// otherwise generates a new pair and stores it there. generated reports which
// branch was taken.
func LoadOrGenerate(privPath, pubPath string) (priv ed25519.PrivateKey, generated bool, err error) {
	if fileExists(privPath) && fileExists(pubPath) {
		priv, err = LoadPrivateKey(privPath)
		if err != nil {
			return nil, false, err
		}
		if _, err = LoadPublicKey(pubPath); err != nil {
			return nil, false, err
		}
		return priv, false, nil
	}

	pub, priv, err := GenerateKeyPair()
	if err != nil {
		return nil, false, err
	}
	if err := StorePublicKey(pubPath, pub); err != nil {
		return nil, false, fmt.Errorf("store public key: %w", err)
	}
	if err := StorePrivateKey(privPath, priv); err != nil {
		return nil, false, fmt.Errorf("store private key: %w", err)
	}
	return priv, true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Sign signs msg with priv.
func Sign(priv ed25519.PrivateKey, msg []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	return ed25519.Sign(priv, msg), nil
}

// Verify checks sig over msg against a PKIX DER encoded public key.
// A malformed key and a bad signature are both reported as errors.
func Verify(pubDER, msg, sig []byte) error {
	pub, err := ParsePublicKey(pubDER)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// Digest returns the BLAKE2b-256 hash of data.
func Digest(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
