package xid

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New("tx")
	if !strings.HasPrefix(id, "tx-") {
		t.Fatalf("expected tx- prefix, got %q", id)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New("b")
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
