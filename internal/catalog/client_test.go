package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeCatalog struct {
	mu sync.Mutex
	// pages maps provCode -> page -> books; missing provCode returns empty.
	pages      map[string]map[int][]Book
	totalPages map[string]int
	totalCount map[string]int
	failProv   map[string]bool
	requested  []requestedPage
}

type requestedPage struct {
	prov string
	page int
}

func (f *fakeCatalog) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SearchKeyword string `json:"searchKeyword"`
			ProvCode      string `json:"provCode"`
			Page          int    `json:"page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		page := req.Page
		if page == 0 {
			page = 1
		}

		f.mu.Lock()
		f.requested = append(f.requested, requestedPage{prov: req.ProvCode, page: page})
		fail := f.failProv[req.ProvCode]
		books := f.pages[req.ProvCode][page]
		totalPages := f.totalPages[req.ProvCode]
		totalCount := f.totalCount[req.ProvCode]
		f.mu.Unlock()

		if fail {
			// Connection-level failure: hijack and drop.
			hj, ok := w.(http.Hijacker)
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}

		resp := map[string]any{
			"status": "OK",
			"data": map[string]any{
				"allTotalCount": totalCount,
				"totalPage":     totalPages,
				"bookList":      books,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(url string, maxPartitions int) *Client {
	return NewClient(Options{
		BaseURL:       url,
		PageSize:      100,
		PageDelay:     -1, // no pacing in tests
		MaxPartitions: maxPartitions,
		RetryMax:      -1, // fail fast in tests
	})
}

func (f *fakeCatalog) requestedPages(prov string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pages []int
	for _, r := range f.requested {
		if r.prov == prov {
			pages = append(pages, r.page)
		}
	}
	return pages
}

func TestSearchAllPagesStopsAtTotalPages(t *testing.T) {
	// The final page is non-empty and sits exactly at totalPages; the client
	// must not request totalPages+1.
	fake := &fakeCatalog{
		pages: map[string]map[int][]Book{
			"B10": {
				1: {{SchoolName: "가초등학교"}, {SchoolName: "나초등학교"}},
				2: {{SchoolName: "다초등학교"}},
			},
		},
		totalPages: map[string]int{"B10": 2},
		totalCount: map[string]int{"B10": 3},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL, 6)
	books, count, err := c.SearchAllPages(context.Background(), "9788900000000", "B10")
	if err != nil {
		t.Fatalf("SearchAllPages: %v", err)
	}
	if len(books) != 3 {
		t.Errorf("expected 3 books, got %d", len(books))
	}
	if count != 3 {
		t.Errorf("expected total count 3, got %d", count)
	}
	if pages := fake.requestedPages("B10"); len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Errorf("expected pages [1 2], got %v", pages)
	}
}

func TestSearchAllPagesStopsOnEmptyPage(t *testing.T) {
	fake := &fakeCatalog{
		pages:      map[string]map[int][]Book{"B10": {1: {{SchoolName: "가초등학교"}}}},
		totalPages: map[string]int{"B10": 5}, // inconsistent: page 2 is empty
		totalCount: map[string]int{"B10": 1},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL, 6)
	books, _, err := c.SearchAllPages(context.Background(), "9788900000000", "B10")
	if err != nil {
		t.Fatalf("SearchAllPages: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("expected 1 book, got %d", len(books))
	}
	if pages := fake.requestedPages("B10"); len(pages) != 2 {
		t.Errorf("expected to stop after the empty page 2, got %v", pages)
	}
}

func TestSearchPartitionNonSuccessYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 6)
	res, err := c.SearchPartition(context.Background(), "9788900000000", "B10", 1, 100)
	if err != nil {
		t.Fatalf("expected empty result, got error: %v", err)
	}
	if res.TotalCount != 0 || len(res.Books) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearchMultiPartitionOrderAndTruncation(t *testing.T) {
	fake := &fakeCatalog{
		pages:      map[string]map[int][]Book{},
		totalPages: map[string]int{},
		totalCount: map[string]int{},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.SearchMultiPartition(context.Background(), "9788900000000", "J10")
	if err != nil {
		t.Fatalf("SearchMultiPartition: %v", err)
	}

	fake.mu.Lock()
	var provs []string
	for _, r := range fake.requested {
		provs = append(provs, r.prov)
	}
	fake.mu.Unlock()

	// Preferred partition first, then canonical order, deduplicated,
	// 3 partitions total.
	want := []string{"J10", "B10", "C10"}
	if len(provs) != len(want) {
		t.Fatalf("expected partitions %v, got %v", want, provs)
	}
	for i := range want {
		if provs[i] != want[i] {
			t.Fatalf("expected partitions %v, got %v", want, provs)
		}
	}
}

func TestSearchMultiPartitionCollectsWarnings(t *testing.T) {
	fake := &fakeCatalog{
		pages: map[string]map[int][]Book{
			"B10": {1: {{SchoolName: "가초등학교"}}},
			"D10": {1: {{SchoolName: "나초등학교"}}},
		},
		totalPages: map[string]int{"B10": 1, "D10": 1},
		totalCount: map[string]int{"B10": 1, "D10": 1},
		failProv:   map[string]bool{"C10": true},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	res, err := c.SearchMultiPartition(context.Background(), "9788900000000", "")
	if err != nil {
		t.Fatalf("SearchMultiPartition: %v", err)
	}

	// C10 failed but B10 and D10 still contributed.
	if len(res.Books) != 2 {
		t.Errorf("expected 2 books from surviving partitions, got %d", len(res.Books))
	}
	if res.TotalCount != 2 {
		t.Errorf("expected summed count 2, got %d", res.TotalCount)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].ProvCode != "C10" {
		t.Errorf("expected one warning for C10, got %+v", res.Warnings)
	}
}

func TestFindSchoolMatches(t *testing.T) {
	books := []Book{
		{SchoolName: "서울샘골초등학교"},
		{SchoolName: "달빛중학교"},
		{SchoolName: "샘골초등학교"},
		{SchoolName: "서울샘골초등학교"},
	}

	m := FindSchoolMatches(books, "샘골초등학교")
	if len(m.Books) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(m.Books))
	}
	if m.FirstMatchedName != "서울샘골초등학교" {
		t.Errorf("expected first matched name to keep catalog order, got %q", m.FirstMatchedName)
	}
	if len(m.AllMatchedNames) != 3 {
		t.Errorf("expected duplicates preserved in AllMatchedNames, got %v", m.AllMatchedNames)
	}
}

func TestProvCode(t *testing.T) {
	if got := ProvCode("경기도"); got != "J10" {
		t.Errorf("ProvCode(경기도) = %q, want J10", got)
	}
	if got := ProvCode("아틀란티스"); got != "" {
		t.Errorf("ProvCode(unknown) = %q, want empty", got)
	}
}
