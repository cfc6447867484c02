package engine

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/crypto/sha3"
)

// installModules populates a fresh runtime with the helper modules snippets
// may use: hash primitives, HMAC, base64 and time. JSON is native to the
// language. The runtime grants no filesystem or network access, but that is a
// convention for keeping snippets small rather than a security boundary; the
// engine trusts the snippet author.
func installModules(vm *goja.Runtime) {
	vm.Set("hashlib", map[string]any{
		"md5":      hexDigest(md5.New),
		"sha1":     hexDigest(sha1.New),
		"sha256":   hexDigest(sha256.New),
		"sha512":   hexDigest(sha512.New),
		"sha3_256": hexDigest(sha3.New256),
		"sha3_512": hexDigest(sha3.New512),
	})
	vm.Set("hmac", map[string]any{
		"sha1":         hmacHex(sha1.New),
		"sha256":       hmacHex(sha256.New),
		"sha512":       hmacHex(sha512.New),
		"sha256Base64": hmacBase64(sha256.New),
		"sha512Base64": hmacBase64(sha512.New),
	})
	vm.Set("base64", map[string]any{
		"encode": func(data string) string {
			return base64.StdEncoding.EncodeToString([]byte(data))
		},
		"decode": func(data string) (string, error) {
			out, err := base64.StdEncoding.DecodeString(data)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	})
	vm.Set("timeutil", map[string]any{
		"now":       func() int64 { return time.Now().Unix() },
		"nowMillis": func() int64 { return time.Now().UnixMilli() },
		"utc": func(layout string) string {
			return time.Now().UTC().Format(layout)
		},
	})
}

func hexDigest(newHash func() hash.Hash) func(string) string {
	return func(data string) string {
		h := newHash()
		h.Write([]byte(data))
		return hex.EncodeToString(h.Sum(nil))
	}
}

func hmacHex(newHash func() hash.Hash) func(key, message string) string {
	return func(key, message string) string {
		mac := hmac.New(newHash, []byte(key))
		mac.Write([]byte(message))
		return hex.EncodeToString(mac.Sum(nil))
	}
}

func hmacBase64(newHash func() hash.Hash) func(key, message string) string {
	return func(key, message string) string {
		mac := hmac.New(newHash, []byte(key))
		mac.Write([]byte(message))
		return base64.StdEncoding.EncodeToString(mac.Sum(nil))
	}
}
