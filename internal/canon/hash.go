package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes. The version suffix leaves room to change the hashed
// layout later.
const (
	DomainSnapshot = "scriptplay/snapshot/v1"
	DomainSlot     = "scriptplay/slot/v1"
	DomainState    = "scriptplay/state/v1"
)

// Hash returns hex(SHA256(domain || 0x00 || data)).
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest hashes the canonical encoding of v under domain.
func Digest(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return Hash(domain, data), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when v is known to be encodable.
func MustDigest(domain string, v any) string {
	d, err := Digest(domain, v)
	if err != nil {
		panic(err)
	}
	return d
}
