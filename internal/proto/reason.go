package proto

import (
	"errors"

	"github.com/dmitrijs2005/auctionrep/internal/common"
)

var reasons = []struct {
	err  error
	name string
}{
	{common.ErrorUnauthorized, "unauthorized"},
	{common.ErrorUnknownUser, "unknown_user"},
	{common.ErrorNotFound, "not_found"},
	{common.ErrorForbidden, "forbidden"},
	{common.ErrorBidTooLow, "bid_too_low"},
	{common.ErrorAuthFailed, "auth_failed"},
	{common.ErrorChecksumMismatch, "checksum_mismatch"},
	{common.ErrorInternal, "internal"},
}

// ReasonOf names err for a response Reason field. Nil yields "".
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "internal"
}

// ErrorOf maps a Reason back to its sentinel error. An empty reason on a
// null result still is a rejection and maps to common.ErrorInternal.
func ErrorOf(reason string) error {
	for _, r := range reasons {
		if r.name == reason {
			return r.err
		}
	}
	return common.ErrorInternal
}
