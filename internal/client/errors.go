package client

import "errors"

var (
	ErrUnavailable          = errors.New("server unavailable")
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrServerIdentityFailed = errors.New("server signature does not verify")
)
