package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	l := &Logger{redact: true}
	out := l.sanitizeKVs([]interface{}{
		"email", "someone@example.com",
		"api_key", "sk-live",
		"stage", "hooks",
		"user_id", "4a3c",
	})
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("expected email and api_key redacted, got %v", out)
	}
	if out[5] != "hooks" {
		t.Fatalf("expected stage untouched, got %v", out[5])
	}
	hashed, _ := out[7].(string)
	if !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("expected hashed user_id, got %q", hashed)
	}
}

func TestSanitizeKVsOddLengthAndDisabled(t *testing.T) {
	l := &Logger{redact: true}
	out := l.sanitizeKVs([]interface{}{"token", "abc", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}

	off := &Logger{redact: false}
	raw := []interface{}{"password", "hunter2"}
	if got := off.sanitizeKVs(raw); got[1] != "hunter2" {
		t.Fatalf("expected passthrough when redaction is off, got %v", got)
	}
}

func TestSanitizeValueJWTString(t *testing.T) {
	l := &Logger{redact: true}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := l.sanitizeValue("header", jwt); got != "[REDACTED]" {
		t.Fatalf("expected jwt-looking value redacted, got %v", got)
	}
}
