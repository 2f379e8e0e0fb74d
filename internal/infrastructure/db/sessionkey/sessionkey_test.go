package sessionkey

import (
	"strings"
	"testing"
)

func TestHash_DeterministicAndOpaque(t *testing.T) {
	sid := "6f1c2b0e-3a1d-4b57-9a3e-0c2f1b7d9e44"

	a := Hash(sid)
	b := Hash(sid)
	if a != b {
		t.Fatalf("expected stable hash, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if strings.Contains(a, sid) {
		t.Fatal("hash must not contain the raw session id")
	}
	if Hash("other") == a {
		t.Fatal("distinct session ids must not collide")
	}
}
