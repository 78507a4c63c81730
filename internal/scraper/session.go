package scraper

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// seenCapacity bounds the per-run seen-URL set; a supplier category rarely
// exceeds a few thousand listings.
const seenCapacity = 8192

// Stats are the running counters of one crawl run, reported at run end.
type Stats struct {
	PagesVisited int
	Saved        int
	Duplicates   int
	Rejected     int
	Errors       int
}

// Session is the ephemeral state of one supplier+category run: the seen-URL
// set and the counters. It is created before the run and discarded after;
// nothing in it is persisted.
type Session struct {
	Supplier string
	Category string
	Stats    Stats

	seen *lru.Cache[string, struct{}]
}

// NewSession creates the session for one supplier+category run.
func NewSession(supplier, category string) *Session {
	seen, _ := lru.New[string, struct{}](seenCapacity)
	return &Session{
		Supplier: supplier,
		Category: category,
		seen:     seen,
	}
}

// Seen reports whether the product URL was already admitted this run.
func (s *Session) Seen(url string) bool {
	if url == "" {
		return false
	}
	_, ok := s.seen.Get(url)
	return ok
}

// MarkSeen records a product URL in the session set.
func (s *Session) MarkSeen(url string) {
	if url == "" {
		return
	}
	s.seen.Add(url, struct{}{})
}
