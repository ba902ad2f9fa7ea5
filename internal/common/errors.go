// Package common defines shared constants and sentinel errors used across
// the auction replicas, the front end and the directory. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUnknownUser  = errors.New("unknown user")

	// Auction state machine errors.
	ErrorForbidden = errors.New("forbidden")
	ErrorBidTooLow = errors.New("bid not higher than current highest bid")

	// Handshake errors (bad signature, malformed key, no pending challenge).
	ErrorAuthFailed = errors.New("authentication failed")

	// Replication errors.
	ErrorChecksumMismatch = errors.New("snapshot checksum mismatch")

	// Front end errors. ErrorUnavailable wraps every transport failure of a
	// call to another process.
	ErrorNoPrimary   = errors.New("no live replica to elect as primary")
	ErrorUnavailable = errors.New("replica unavailable")
)
