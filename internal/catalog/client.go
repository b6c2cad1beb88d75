// Package catalog talks to the national reading-catalog service. The catalog
// is partitioned by region; a holding check for an ISBN walks partitions
// sequentially, paging through each one, and aggregates the results.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AH100-1/book-project/internal/matcher"
)

// DefaultBaseURL points at the production catalog service.
const DefaultBaseURL = "https://read365.edunet.net"

const searchEndpoint = "/alpasq/api/search"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL       string
	Timeout       time.Duration // per-request timeout (default 30s)
	PageSize      int           // results per page (default 100)
	PageDelay     time.Duration // pause between page requests (default 100ms, negative disables)
	MaxPartitions int           // partitions searched per holding check (default 6)
	RetryMax      int           // retry attempts per request (default 3, negative disables)
}

// Client queries the catalog service. Requests are retried on transport and
// 5xx failures with exponential backoff.
type Client struct {
	baseURL       string
	pageSize      int
	pageDelay     time.Duration
	maxPartitions int
	http          *retryablehttp.Client
}

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.PageDelay < 0 {
		opts.PageDelay = 0
	} else if opts.PageDelay == 0 {
		opts.PageDelay = 100 * time.Millisecond
	}
	if opts.MaxPartitions <= 0 {
		opts.MaxPartitions = 6
	}

	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	} else if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		pageSize:      opts.PageSize,
		pageDelay:     opts.PageDelay,
		maxPartitions: opts.MaxPartitions,
		http:          rc,
	}
}

// Book is one holding row returned by the catalog.
type Book struct {
	SchoolName string `json:"schoolName"`
	ProvCode   string `json:"provCode,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
}

// PageResult is one page of a partition search.
type PageResult struct {
	TotalCount int
	TotalPages int
	Books      []Book
}

type searchRequest struct {
	SearchKeyword string `json:"searchKeyword"`
	CoverYn       string `json:"coverYn"`
	Facet         string `json:"facet"`
	ProvCode      string `json:"provCode,omitempty"`
	Page          int    `json:"page,omitempty"`
	Rows          int    `json:"rows,omitempty"`
}

type searchResponse struct {
	Status string `json:"status"`
	Data   *struct {
		AllTotalCount int    `json:"allTotalCount"`
		TotalPage     int    `json:"totalPage"`
		BookList      []Book `json:"bookList"`
	} `json:"data"`
}

// SearchPartition runs one paged search for an ISBN. An empty provCode means
// no partition filter. Non-success API responses yield an empty result;
// transport-level failures are returned as errors.
func (c *Client) SearchPartition(ctx context.Context, isbn, provCode string, page, pageSize int) (PageResult, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	payload := searchRequest{
		SearchKeyword: isbn,
		CoverYn:       "Y",
		Facet:         "Y",
		ProvCode:      provCode,
	}
	if page > 1 {
		payload.Page = page
	}
	if pageSize != 100 {
		payload.Rows = pageSize
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return PageResult{}, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchEndpoint, bytes.NewReader(body))
	if err != nil {
		return PageResult{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return PageResult{}, fmt.Errorf("catalog search %s: %w", isbn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Printf("catalog search %s (prov=%s): status %d, treating as empty", isbn, provCode, resp.StatusCode)
		return PageResult{}, nil
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return PageResult{}, fmt.Errorf("decode catalog response: %w", err)
	}

	if decoded.Status != "OK" || decoded.Data == nil {
		return PageResult{}, nil
	}

	return PageResult{
		TotalCount: decoded.Data.AllTotalCount,
		TotalPages: decoded.Data.TotalPage,
		Books:      decoded.Data.BookList,
	}, nil
}

// SearchAllPages collects every page of one partition search. The loop stops
// on an empty page or once the reported page count is reached, so an
// inconsistent totalPages from the service cannot cause an endless loop.
// A short delay separates page requests.
func (c *Client) SearchAllPages(ctx context.Context, isbn, provCode string) ([]Book, int, error) {
	var all []Book
	totalCount := 0

	for page := 1; ; page++ {
		res, err := c.SearchPartition(ctx, isbn, provCode, page, c.pageSize)
		if err != nil {
			return nil, 0, err
		}
		if page == 1 {
			totalCount = res.TotalCount
		}
		if len(res.Books) == 0 {
			break
		}
		all = append(all, res.Books...)
		if page >= res.TotalPages {
			break
		}
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return nil, 0, err
		}
	}

	return all, totalCount, nil
}

// PartitionWarning records a partition whose search failed during a
// multi-partition aggregation.
type PartitionWarning struct {
	ProvCode string `json:"prov_code"`
	Message  string `json:"message"`
}

// MultiPartitionResult aggregates holdings across the searched partitions.
// Warnings carry per-partition soft failures; a partition failure does not
// invalidate results from the others.
type MultiPartitionResult struct {
	TotalCount int
	Books      []Book
	Warnings   []PartitionWarning
}

// SearchMultiPartition checks an ISBN across several partitions: the
// preferred partition first if given, then the canonical partition order,
// deduplicated and truncated to the configured maximum. Partitions are
// searched sequentially to keep load on the service bounded.
func (c *Client) SearchMultiPartition(ctx context.Context, isbn, preferredProv string) (MultiPartitionResult, error) {
	var result MultiPartitionResult

	for _, prov := range c.partitionOrder(preferredProv) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		books, count, err := c.SearchAllPages(ctx, isbn, prov)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("catalog partition %s failed for %s: %v", prov, isbn, err)
			result.Warnings = append(result.Warnings, PartitionWarning{ProvCode: prov, Message: err.Error()})
			continue
		}
		result.Books = append(result.Books, books...)
		result.TotalCount += count
	}

	return result, nil
}

func (c *Client) partitionOrder(preferredProv string) []string {
	order := make([]string, 0, c.maxPartitions)
	seen := make(map[string]bool)

	if preferredProv != "" {
		order = append(order, preferredProv)
		seen[preferredProv] = true
	}
	for _, prov := range CanonicalPartitions {
		if len(order) >= c.maxPartitions {
			break
		}
		if seen[prov] {
			continue
		}
		order = append(order, prov)
		seen[prov] = true
	}
	if len(order) > c.maxPartitions {
		order = order[:c.maxPartitions]
	}
	return order
}

// SchoolMatches is the outcome of filtering catalog holdings by school name.
type SchoolMatches struct {
	Books            []Book
	FirstMatchedName string
	// AllMatchedNames keeps every matched display name in catalog order,
	// duplicates included. More than one distinct value means the query
	// name was ambiguous.
	AllMatchedNames []string
}

// FindSchoolMatches filters holdings down to those whose school name matches
// the queried school. The first match's original display name is kept as the
// canonical match.
func FindSchoolMatches(books []Book, querySchoolName string) SchoolMatches {
	var matches SchoolMatches
	for _, b := range books {
		if !matcher.SchoolNameMatches(b.SchoolName, querySchoolName) {
			continue
		}
		matches.Books = append(matches.Books, b)
		matches.AllMatchedNames = append(matches.AllMatchedNames, b.SchoolName)
		if matches.FirstMatchedName == "" {
			matches.FirstMatchedName = b.SchoolName
		}
	}
	return matches
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
