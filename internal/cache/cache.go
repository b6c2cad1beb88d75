// Package cache memoizes external lookups for the lifetime of the process.
//
// Two independent tables are kept: (title, author) -> ISBN resolution and
// (school, isbn) -> holding check. Keys are normalized so that spacing and
// casing variance in the source data hits the same entry. Failed lookups are
// cached too; a permanently unresolvable title is not re-queried every run.
// There is no eviction: the cache grows for the lifetime of the process.
package cache

import (
	"strings"
	"sync"

	"github.com/AH100-1/book-project/internal/models"
)

// ResultCache is safe for concurrent use by multiple job loops.
type ResultCache struct {
	mu       sync.RWMutex
	isbn     map[string]models.ResolvedISBN
	holdings map[string]models.HoldingResult

	isbnHits      int
	isbnMisses    int
	holdingHits   int
	holdingMisses int
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	ISBNHits      int `json:"isbn_hits"`
	ISBNMisses    int `json:"isbn_misses"`
	ISBNSize      int `json:"isbn_size"`
	HoldingHits   int `json:"holding_hits"`
	HoldingMisses int `json:"holding_misses"`
	HoldingSize   int `json:"holding_size"`
}

// New creates an empty ResultCache. Construct one per process and pass it by
// reference; tests use separate instances for isolation.
func New() *ResultCache {
	return &ResultCache{
		isbn:     make(map[string]models.ResolvedISBN),
		holdings: make(map[string]models.HoldingResult),
	}
}

// GetISBN looks up a cached resolution for the given title and author.
func (c *ResultCache) GetISBN(title, author string) (models.ResolvedISBN, bool) {
	key := isbnKey(title, author)

	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.isbn[key]
	if ok {
		c.isbnHits++
	} else {
		c.isbnMisses++
	}
	return res, ok
}

// SetISBN stores a resolution result, including failed ones.
func (c *ResultCache) SetISBN(title, author string, res models.ResolvedISBN) {
	key := isbnKey(title, author)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isbn[key] = res
}

// GetHolding looks up a cached holding check for the given school and ISBN.
func (c *ResultCache) GetHolding(school, isbn string) (models.HoldingResult, bool) {
	key := holdingKey(school, isbn)

	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.holdings[key]
	if ok {
		c.holdingHits++
	} else {
		c.holdingMisses++
	}
	return res, ok
}

// SetHolding stores a holding check result.
func (c *ResultCache) SetHolding(school, isbn string, res models.HoldingResult) {
	key := holdingKey(school, isbn)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdings[key] = res
}

// Stats returns hit/miss counters and current table sizes.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		ISBNHits:      c.isbnHits,
		ISBNMisses:    c.isbnMisses,
		ISBNSize:      len(c.isbn),
		HoldingHits:   c.holdingHits,
		HoldingMisses: c.holdingMisses,
		HoldingSize:   len(c.holdings),
	}
}

// Clear drops all entries and resets the counters.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isbn = make(map[string]models.ResolvedISBN)
	c.holdings = make(map[string]models.HoldingResult)
	c.isbnHits, c.isbnMisses = 0, 0
	c.holdingHits, c.holdingMisses = 0, 0
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func isbnKey(title, author string) string {
	return normalizeKey(title) + "|" + normalizeKey(author)
}

func holdingKey(school, isbn string) string {
	return normalizeKey(school) + "|" + strings.TrimSpace(isbn)
}
