package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"reflect"
	"testing"

	"github.com/Thongheng/HashGen/pkg/domain"
)

// legacyDigest computes the expected digest from first principles so the
// implementation under test cannot agree with itself by accident.
func legacyDigest(t *testing.T, key, message string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func examplePayload(t *testing.T) *domain.Payload {
	t.Helper()
	p, err := domain.ParsePayload([]byte(`{"username":"user","request_time":"20260101010101"}`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return p
}

func TestABAHMACSHA256WorkedExample(t *testing.T) {
	// passcode = key "mysecretkey1234" + iv "5678901234567890"
	const passcode = "mysecretkey12345678901234567890"

	got, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  examplePayload(t),
		Passcode: passcode,
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	want := legacyDigest(t, "mysecretkey1234", "5678901234567890"+"user"+"20260101010101")
	if got != want {
		t.Fatalf("digest = %s, want %s", got, want)
	}
}

func TestABAHMACSHA256Deterministic(t *testing.T) {
	req := domain.InvocationRequest{
		Payload:  examplePayload(t),
		Passcode: "mysecretkey12345678901234567890",
		APIKey:   "prefix",
		KeyOrder: []string{"username", "request_time"},
	}
	first, err := ABAHMACSHA256(req)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := ABAHMACSHA256(req)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if next != first {
			t.Fatalf("digest changed between identical calls: %s vs %s", next, first)
		}
	}
}

func TestABAHMACSHA256ShortPasscode(t *testing.T) {
	_, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  examplePayload(t),
		Passcode: "short-passcode1", // 15 characters
	})
	if !errors.Is(err, ErrPasscodeTooShort) {
		t.Fatalf("error = %v, want ErrPasscodeTooShort", err)
	}
}

func TestABAHMACSHA256DefaultOrderMatchesExplicit(t *testing.T) {
	passcode := "mysecretkey12345678901234567890"
	p, err := domain.ParsePayload([]byte(`{"username":"user","hash":"ignored","request_time":"20260101010101","__keys_order__":"meta"}`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}

	implicit, err := ABAHMACSHA256(domain.InvocationRequest{Payload: p, Passcode: passcode})
	if err != nil {
		t.Fatalf("sign implicit: %v", err)
	}
	explicit, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  p,
		Passcode: passcode,
		KeyOrder: []string{"username", "request_time"},
	})
	if err != nil {
		t.Fatalf("sign explicit: %v", err)
	}
	if implicit != explicit {
		t.Fatalf("implicit %s != explicit %s", implicit, explicit)
	}
}

func TestDefaultKeyOrderSkipsHashAndMeta(t *testing.T) {
	p, err := domain.ParsePayload([]byte(`{"b":"1","hash":"x","a":"2","__keys_order__":"y"}`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if got := DefaultKeyOrder(p); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("order = %v", got)
	}
}

func TestABAHMACSHA256UnknownAndDuplicateKeys(t *testing.T) {
	passcode := "mysecretkey12345678901234567890"
	p := examplePayload(t)

	withUnknown, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  p,
		Passcode: passcode,
		KeyOrder: []string{"username", "no_such_field", "request_time"},
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	plain, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  p,
		Passcode: passcode,
		KeyOrder: []string{"username", "request_time"},
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if withUnknown != plain {
		t.Fatalf("unknown keys must resolve to empty string")
	}

	doubled, err := ABAHMACSHA256(domain.InvocationRequest{
		Payload:  p,
		Passcode: passcode,
		KeyOrder: []string{"username", "username"},
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	want := legacyDigest(t, "mysecretkey1234", "5678901234567890"+"user"+"user")
	if doubled != want {
		t.Fatalf("duplicate keys digest = %s, want %s", doubled, want)
	}
}

func TestABAHMACSHA256Avalanche(t *testing.T) {
	passcode := "mysecretkey12345678901234567890"
	base, err := domain.ParsePayload([]byte(`{"username":"user"}`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	tweaked, err := domain.ParsePayload([]byte(`{"username":"uses"}`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}

	a, err := ABAHMACSHA256(domain.InvocationRequest{Payload: base, Passcode: passcode})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	b, err := ABAHMACSHA256(domain.InvocationRequest{Payload: tweaked, Passcode: passcode})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if a == b {
		t.Fatalf("single byte change did not alter the digest")
	}
}

func TestDefaultSnippetShape(t *testing.T) {
	s := DefaultSnippet()
	if s.Name != DefaultSnippetName {
		t.Fatalf("name = %q", s.Name)
	}
	if s.Code == "" || s.Description == "" {
		t.Fatalf("default snippet incomplete: %+v", s)
	}
}
