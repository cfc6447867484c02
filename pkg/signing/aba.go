// Package signing holds the canonical ABA HMAC-SHA256 algorithm: the native
// reference implementation used by compatibility tests, and the JavaScript
// snippet seeded into new snippet stores.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Thongheng/HashGen/pkg/domain"
)

// ErrPasscodeTooShort rejects passcodes that cannot be split into key and IV.
var ErrPasscodeTooShort = errors.New("signing: passcode must be at least 16 characters")

const ivLength = 16

// metaOrderKey is an internal ordering-metadata key some payload producers
// attach; it never participates in signing.
const metaOrderKey = "__keys_order__"

// ABAHMACSHA256 computes the legacy digest: the passcode's trailing 16
// characters are the IV and the remainder the HMAC key; the message is the IV
// followed by the API key and the payload values concatenated in field order;
// the digest is lowercase hex HMAC-SHA256 over it.
//
// Field order is req.KeyOrder verbatim when given, including duplicates;
// unknown keys contribute an empty string, never an error. Without KeyOrder
// the payload's own key order applies, minus the "hash" field and the
// internal ordering-metadata key. Identical inputs always produce identical
// output; no I/O, no randomness.
func ABAHMACSHA256(req domain.InvocationRequest) (string, error) {
	passcode := []rune(req.Passcode)
	if len(passcode) < ivLength {
		return "", ErrPasscodeTooShort
	}
	iv := string(passcode[len(passcode)-ivLength:])
	key := string(passcode[:len(passcode)-ivLength])

	var buf strings.Builder
	buf.WriteString(req.APIKey)

	keys := req.KeyOrder
	if len(keys) == 0 {
		keys = DefaultKeyOrder(req.Payload)
	}
	for _, k := range keys {
		if req.Payload == nil {
			continue
		}
		if v, ok := req.Payload.Get(k); ok {
			buf.WriteString(domain.ValueString(v))
		}
	}

	message := iv + buf.String()
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// DefaultKeyOrder returns the payload's keys in document order, excluding the
// "hash" field and the internal ordering-metadata key.
func DefaultKeyOrder(p *domain.Payload) []string {
	if p == nil {
		return nil
	}
	var keys []string
	for _, k := range p.Keys() {
		if k == "hash" || k == metaOrderKey {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
