package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateIDFormat(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	id := GenerateID(14)
	if len(id) != 14 {
		t.Fatalf("expected length 14, got %d", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("unexpected rune %q in id %s", r, id)
		}
	}
}

func TestGenerateSecureIDFormat(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateSecureID(16)
		if len(id) != 16 {
			t.Fatalf("expected length 16, got %d", len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("unexpected rune %q in id %s", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestParseQueryOptionsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/events", nil)
	opts := ParseQueryOptions(r)
	if opts.Page != 1 || opts.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", opts.Page, opts.Limit)
	}
}

func TestParseQueryOptionsClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/events?page=3&limit=500", nil)
	opts := ParseQueryOptions(r)
	if opts.Page != 3 {
		t.Fatalf("expected page=3, got %d", opts.Page)
	}
	if opts.Limit != 10 {
		t.Fatalf("expected oversized limit to fall back to 10, got %d", opts.Limit)
	}
}
