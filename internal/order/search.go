package order

import (
	"context"
	"strings"
	"time"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/lookup"
)

const searchPageSize = 20

// SetSearchQuiet overrides the debounce quiet period for product search.
// It only takes effect before the first SearchProducts call.
func (s *Session) SetSearchQuiet(quiet time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiet > 0 && s.search == nil {
		s.searchQuiet = quiet
	}
}

// SearchProducts schedules a debounced product lookup. Results land
// asynchronously and are read back with SearchResults; rapid retriggers
// supersede older queries so only the newest one ever delivers. A blank
// query cancels any pending lookup and clears the last results.
func (s *Session) SearchProducts(query string) {
	query = strings.TrimSpace(query)
	runner := s.searchRunner()
	if query == "" {
		runner.Cancel()
		s.mu.Lock()
		s.lastSearch = searchOutcome{}
		s.mu.Unlock()
		return
	}
	// The request that triggered the search may finish before the quiet
	// period elapses, so the lookup runs on a background context.
	runner.Trigger(context.Background(), query)
}

// CancelSearch drops any pending or in-flight product lookup.
func (s *Session) CancelSearch() {
	s.searchRunner().Cancel()
}

// SearchResults returns the query and products of the latest delivered
// lookup. The query distinguishes "no results yet" from "no matches".
func (s *Session) SearchResults() (string, []domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.lastSearch.products))
	copy(out, s.lastSearch.products)
	return s.lastSearch.query, out, s.lastSearch.err
}

type searchOutcome struct {
	query    string
	products []domain.Product
	err      error
}

func (s *Session) searchRunner() *lookup.Debounced[[]domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		s.search = lookup.New(s.searchQuiet, s.runSearch, s.deliverSearch)
	}
	return s.search
}

func (s *Session) runSearch(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, query, domain.Page{Number: 1, Size: searchPageSize})
}

func (s *Session) deliverSearch(res lookup.Result[[]domain.Product]) {
	s.mu.Lock()
	s.lastSearch = searchOutcome{query: res.Query, products: res.Value, err: res.Err}
	s.mu.Unlock()
}
