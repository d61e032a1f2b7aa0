package order

import (
	"testing"
	"time"

	"billingdesk/backend/internal/store/memory"
)

func waitForSearch(t *testing.T, s *Session, want string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		query, _, err := s.SearchResults()
		if err != nil {
			t.Fatalf("search delivered error: %v", err)
		}
		if query == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("search for %q never delivered, last query %q", want, query)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestDebouncedProductSearch(t *testing.T) {
	s := NewSession(memory.NewSeeded(), nil, 0)
	s.SetSearchQuiet(2 * time.Millisecond)

	s.SearchProducts("no-such-product")
	s.SearchProducts("rice")
	waitForSearch(t, s, "rice")

	query, products, err := s.SearchResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "rice" {
		t.Fatalf("superseded query %q delivered instead of rice", query)
	}
	if len(products) == 0 {
		t.Fatalf("expected at least one product matching rice")
	}
}

func TestSearchBlankQueryClears(t *testing.T) {
	s := NewSession(memory.NewSeeded(), nil, 0)
	s.SetSearchQuiet(2 * time.Millisecond)

	s.SearchProducts("rice")
	waitForSearch(t, s, "rice")

	s.SearchProducts("   ")
	query, products, err := s.SearchResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "" || len(products) != 0 {
		t.Fatalf("blank query should clear results, got %q with %d products", query, len(products))
	}
}
