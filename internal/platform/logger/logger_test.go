package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"email", "someone@example.com",
		"user_id", "7b0c2f1e",
		"plan_id", "p-1",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("email not redacted: %v", out[1])
	}
	if s, ok := out[3].(string); !ok || !strings.HasPrefix(s, "hash:") {
		t.Fatalf("user_id not hashed: %v", out[3])
	}
	if out[5] != "p-1" {
		t.Fatalf("plan_id should pass through, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key lost: %v", out[6])
	}
}

func TestSanitizeValueNested(t *testing.T) {
	got := sanitizeValue("", map[string]interface{}{
		"authorization": "Bearer abc",
		"title":         "Learn SQL",
	})
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["authorization"] != "[REDACTED]" {
		t.Fatalf("authorization not redacted: %v", m["authorization"])
	}
	if m["title"] != "Learn SQL" {
		t.Fatalf("title changed: %v", m["title"])
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTYifQ.sig") {
		t.Fatalf("expected jwt shape to match")
	}
	if looksLikeJWT("not.a.jwt") {
		t.Fatalf("short segments should not match")
	}
}
