package cache

import (
	"sync"
	"testing"

	"github.com/AH100-1/book-project/internal/models"
)

func TestISBNCacheNormalizesKeys(t *testing.T) {
	c := New()
	c.SetISBN("어린 왕자", "생텍쥐페리", models.ResolvedISBN{ISBN13: "9788949190693"})

	// Spacing and casing variance must hit the same entry.
	res, ok := c.GetISBN("어린왕자", "생텍쥐페리")
	if !ok {
		t.Fatal("expected cache hit for whitespace variant")
	}
	if res.ISBN13 != "9788949190693" {
		t.Errorf("unexpected ISBN: %s", res.ISBN13)
	}

	res, ok = c.GetISBN("THE Little Prince", "Saint-Exupery")
	if ok {
		t.Errorf("unexpected hit: %+v", res)
	}
}

func TestErrorResultsAreCached(t *testing.T) {
	c := New()
	c.SetISBN("unknown book", "", models.ResolvedISBN{ErrorReason: "no results"})

	res, ok := c.GetISBN("unknown book", "")
	if !ok {
		t.Fatal("expected hit for cached error result")
	}
	if res.ISBN13 != "" || res.ErrorReason != "no results" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestHoldingCacheAndStats(t *testing.T) {
	c := New()

	if _, ok := c.GetHolding("샘골초등학교", "9788949190693"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.SetHolding("샘골초등학교", "9788949190693", models.HoldingResult{
		Exists:            true,
		HolderCount:       3,
		MatchedSchoolName: "샘골초등학교",
	})

	res, ok := c.GetHolding("샘골 초등학교", "9788949190693")
	if !ok || !res.Exists || res.HolderCount != 3 {
		t.Fatalf("expected hit with stored values, got ok=%v res=%+v", ok, res)
	}

	stats := c.Stats()
	if stats.HoldingHits != 1 || stats.HoldingMisses != 1 || stats.HoldingSize != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestClearResetsEverything(t *testing.T) {
	c := New()
	c.SetISBN("a", "b", models.ResolvedISBN{ISBN13: "1"})
	c.GetISBN("a", "b")
	c.Clear()

	if _, ok := c.GetISBN("a", "b"); ok {
		t.Fatal("expected miss after clear")
	}
	stats := c.Stats()
	// The post-clear lookup above counts as the only miss.
	if stats.ISBNSize != 0 || stats.ISBNHits != 0 || stats.ISBNMisses != 1 {
		t.Errorf("unexpected stats after clear: %+v", stats)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.SetISBN("title", "author", models.ResolvedISBN{ISBN13: "9788900000000"})
				c.GetISBN("title", "author")
				c.Stats()
			}
		}()
	}
	wg.Wait()

	if _, ok := c.GetISBN("title", "author"); !ok {
		t.Fatal("expected hit after concurrent writes")
	}
}
