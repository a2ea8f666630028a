package apikey

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh opaque bearer key. Each successful login replaces the
// user's previous key with a new one.
func New() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// FromHeader extracts the key from an Authorization header value. The
// clients send "Basic <key>" where <key> is the opaque key itself, not a
// base64 user:pass pair; a bare key is accepted too.
func FromHeader(header string) string {
	return strings.TrimPrefix(header, "Basic ")
}
