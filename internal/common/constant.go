package common

import (
	"strings"
	"time"
)

// FrontEndName is the directory name the front end binds itself under.
// Peer enumeration skips every name containing it.
const FrontEndName = "FrontEnd"

// DefaultTokenValidity is the lifetime of a session token.
const DefaultTokenValidity = 10 * time.Second

// NonceSize is the number of random bytes behind challenges and tokens.
const NonceSize = 16

// IsFrontEndName reports whether a directory entry belongs to a front end.
func IsFrontEndName(name string) bool {
	return strings.Contains(name, FrontEndName)
}
