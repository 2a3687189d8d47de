package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

const hashLength = 32

// Hasher anonymizes the caller. Raw identifiers (address, user agent) never
// leave this package: only the salted hash is used as a rate-limit key, so
// counters and logs carry no personal data.
type Hasher struct {
	salt string
}

func NewHasher(salt string) Hasher {
	return Hasher{
		salt: salt,
	}
}

func (h Hasher) Hash(r *http.Request) string {
	sum := sha256.Sum256([]byte(h.salt + "|" + clientAddr(r) + "|" + r.UserAgent()))
	return hex.EncodeToString(sum[:])[:hashLength]
}

func clientAddr(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
