package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/signing"
)

func parsePayload(t *testing.T, raw string) *domain.Payload {
	t.Helper()
	p, err := domain.ParsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return p
}

func TestExecuteDefaultSnippetMatchesNativeAlgorithm(t *testing.T) {
	req := domain.InvocationRequest{
		Payload:  parsePayload(t, `{"username":"user","request_time":"20260101010101"}`),
		Passcode: "mysecretkey12345678901234567890",
	}

	want, err := signing.ABAHMACSHA256(req)
	if err != nil {
		t.Fatalf("native: %v", err)
	}
	got, err := New().Execute(context.Background(), signing.DefaultSnippet().Code, req)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != want {
		t.Fatalf("snippet digest %s != native digest %s", got, want)
	}
}

func TestExecuteDefaultSnippetWithExplicitKeyOrderAndAPIKey(t *testing.T) {
	req := domain.InvocationRequest{
		Payload:  parsePayload(t, `{"username":"user","request_time":"20260101010101","hash":"old"}`),
		Passcode: "mysecretkey12345678901234567890",
		APIKey:   "apikey-123",
		KeyOrder: []string{"request_time", "username"},
	}

	want, err := signing.ABAHMACSHA256(req)
	if err != nil {
		t.Fatalf("native: %v", err)
	}
	got, err := New().Execute(context.Background(), signing.DefaultSnippet().Code, req)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != want {
		t.Fatalf("snippet digest %s != native digest %s", got, want)
	}
}

func TestExecuteThreeParameterEntryPoint(t *testing.T) {
	// Legacy signature without keyOrder; it must still be invocable, and the
	// unbound fourth argument must not change its result.
	code := `function generate(payload, passcode, apiKey) {
		return apiKey + "|" + passcode + "|" + payload.username;
	}`
	req := domain.InvocationRequest{
		Payload:  parsePayload(t, `{"username":"user"}`),
		Passcode: "pc",
		APIKey:   "ak",
		KeyOrder: []string{"ignored"},
	}
	got, err := New().Execute(context.Background(), code, req)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "ak|pc|user" {
		t.Fatalf("result = %q", got)
	}

	req.KeyOrder = nil
	again, err := New().Execute(context.Background(), code, req)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if again != got {
		t.Fatalf("three-parameter snippet must not observe keyOrder: %q vs %q", again, got)
	}
}

func TestExecuteFourParameterEntryPointGetsNullKeyOrder(t *testing.T) {
	code := `function generate(payload, passcode, apiKey, keyOrder) {
		return keyOrder === null ? "absent" : keyOrder.join("+");
	}`
	eng := New()

	got, err := eng.Execute(context.Background(), code, domain.InvocationRequest{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "absent" {
		t.Fatalf("nil key order should arrive as null, got %q", got)
	}

	got, err = eng.Execute(context.Background(), code, domain.InvocationRequest{KeyOrder: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "a+b" {
		t.Fatalf("key order = %q", got)
	}
}

func TestExecuteDefaultedKeyOrderParameterReceivesCallerOrder(t *testing.T) {
	// A defaulted keyOrder parameter lowers the function's declared length to
	// three, but the caller's order must still arrive positionally.
	code := `function generate(payload, passcode, apiKey, keyOrder = null) {
		return keyOrder === null ? "default" : keyOrder.join("+");
	}`
	eng := New()

	got, err := eng.Execute(context.Background(), code, domain.InvocationRequest{KeyOrder: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "a+b" {
		t.Fatalf("caller-supplied key order must reach the entry point, got %q", got)
	}

	got, err = eng.Execute(context.Background(), code, domain.InvocationRequest{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "default" {
		t.Fatalf("absent key order should trigger the parameter default, got %q", got)
	}
}

func TestExecuteMissingEntryPoint(t *testing.T) {
	_, err := New().Execute(context.Background(), `var unrelated = 1;`, domain.InvocationRequest{})
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("error = %v, want ErrNoEntryPoint", err)
	}
}

func TestExecuteEntryPointNotCallable(t *testing.T) {
	_, err := New().Execute(context.Background(), `var generate = "not a function";`, domain.InvocationRequest{})
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("error = %v, want ErrNoEntryPoint", err)
	}
}

func TestExecuteSnippetThrowBecomesExecError(t *testing.T) {
	code := `function generate(payload, passcode, apiKey, keyOrder) {
		throw new Error("PassCode must be at least 16 characters long.");
	}`
	_, err := New().Execute(context.Background(), code, domain.InvocationRequest{})

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want *ExecError", err)
	}
	if !strings.Contains(execErr.Message, "at least 16 characters") {
		t.Fatalf("message = %q", execErr.Message)
	}
	if execErr.Stack == "" {
		t.Fatalf("expected a stack trace")
	}
}

func TestExecuteSyntaxErrorBecomesExecError(t *testing.T) {
	_, err := New().Execute(context.Background(), `function generate( {`, domain.InvocationRequest{})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want *ExecError", err)
	}
}

func TestExecuteCoercesResultToString(t *testing.T) {
	got, err := New().Execute(context.Background(), `function generate(p, pc, ak, ko) { return 42; }`, domain.InvocationRequest{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "42" {
		t.Fatalf("result = %q", got)
	}
}

func TestExecuteHelperModules(t *testing.T) {
	code := `function generate(payload, passcode, apiKey, keyOrder) {
		return [
			hashlib.sha256("abc"),
			hmac.sha256("key", "msg"),
			base64.encode("abc"),
			base64.decode("YWJj"),
		].join(" ");
	}`
	got, err := New().Execute(context.Background(), code, domain.InvocationRequest{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	sum := sha256.Sum256([]byte("abc"))
	parts := strings.Fields(got)
	if len(parts) != 4 {
		t.Fatalf("parts = %v", parts)
	}
	if parts[0] != hex.EncodeToString(sum[:]) {
		t.Fatalf("hashlib.sha256 = %q", parts[0])
	}
	if parts[2] != "YWJj" || parts[3] != "abc" {
		t.Fatalf("base64 round trip = %q %q", parts[2], parts[3])
	}
}

func TestExecuteIsolatesInvocations(t *testing.T) {
	eng := New()
	// First snippet leaves global state behind; the second must not see it.
	if _, err := eng.Execute(context.Background(), `var leaked = "x"; function generate(p, pc, ak, ko) { return "ok"; }`, domain.InvocationRequest{}); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	got, err := eng.Execute(context.Background(), `function generate(p, pc, ak, ko) { return typeof leaked; }`, domain.InvocationRequest{})
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if got != "undefined" {
		t.Fatalf("state leaked between invocations: %q", got)
	}
}

func TestExecuteCancelledContextInterrupts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Execute(ctx, `function generate(p, pc, ak, ko) { while (true) {} }`, domain.InvocationRequest{})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want *ExecError", err)
	}
}

func TestExecutePayloadKeysKeepDocumentOrder(t *testing.T) {
	code := `function generate(payload, passcode, apiKey, keyOrder) {
		return Object.keys(payload).join(",");
	}`
	got, err := New().Execute(context.Background(), code, domain.InvocationRequest{
		Payload: parsePayload(t, `{"zulu":"1","alpha":"2","mike":"3"}`),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "zulu,alpha,mike" {
		t.Fatalf("key order = %q", got)
	}
}
