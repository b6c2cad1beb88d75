// Package resolver turns a noisy (title, author) pair into an ISBN-13 via an
// external book-search API. Candidates come back from a text search on the
// title; the best one is picked by fuzzy similarity against the raw inputs.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AH100-1/book-project/internal/matcher"
	"github.com/AH100-1/book-project/internal/models"
)

// DefaultBaseURL points at the production book-search API.
const DefaultBaseURL = "https://www.aladin.co.kr/ttb/api/ItemSearch.aspx"

// DefaultThreshold is the minimum similarity score for accepting a candidate.
const DefaultThreshold = 0.6

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	APIKey     string        // caller-supplied credential token, required
	Timeout    time.Duration // per-request timeout (default 12s)
	MaxResults int           // candidates requested per search (default 20)
	Threshold  float64       // similarity threshold (default 0.6)
	RetryMax   int           // retry attempts per request (default 3, negative disables)
}

// Client queries the book-search API. Requests are retried on transport and
// 5xx failures with exponential backoff.
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	threshold  float64
	http       *retryablehttp.Client
}

// NewClient creates a resolver client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	} else if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 6 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		maxResults: opts.MaxResults,
		threshold:  opts.Threshold,
		http:       rc,
	}
}

type candidate struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN13 string `json:"isbn13"`
}

type searchResponse struct {
	Item []candidate `json:"item"`
}

// Resolve finds the ISBN-13 best matching the given title and author.
//
// Soft failures (blank title, no results, low similarity, blank ISBN on the
// best match) come back as a ResolvedISBN with an ErrorReason and a nil
// error. Transport and protocol failures are returned as errors; the caller
// decides what to do with them.
func (c *Client) Resolve(ctx context.Context, title, author string) (models.ResolvedISBN, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return models.ResolvedISBN{ErrorReason: "empty title"}, nil
	}

	params := url.Values{}
	params.Set("TTBKey", c.apiKey)
	params.Set("Query", queryTitle(title))
	params.Set("QueryType", "Title")
	params.Set("MaxResults", fmt.Sprintf("%d", c.maxResults))
	params.Set("start", "1")
	params.Set("SearchTarget", "Book")
	params.Set("output", "JS")
	params.Set("Version", "20131101")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.ResolvedISBN{}, fmt.Errorf("build resolver request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ResolvedISBN{}, fmt.Errorf("resolver search %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ResolvedISBN{}, fmt.Errorf("resolver returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.ResolvedISBN{}, fmt.Errorf("decode resolver response: %w", err)
	}

	if len(decoded.Item) == 0 {
		return models.ResolvedISBN{ErrorReason: "no results"}, nil
	}

	// Stable max: ties keep the first-seen candidate.
	best := decoded.Item[0]
	bestScore := -1.0
	for _, cand := range decoded.Item {
		score := matcher.TitleAuthorScore(cand.Title, cand.Author, title, author)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	count := len(decoded.Item)
	if bestScore < c.threshold {
		return models.ResolvedISBN{
			ErrorReason:    fmt.Sprintf("below threshold (%.2f)", bestScore),
			CandidateCount: count,
		}, nil
	}

	isbn := strings.TrimSpace(best.ISBN13)
	if isbn == "" {
		return models.ResolvedISBN{
			ErrorReason:    "isbn missing on best match",
			CandidateCount: count,
		}, nil
	}

	return models.ResolvedISBN{ISBN13: isbn, CandidateCount: count}, nil
}

var (
	annotationPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	punctPattern      = regexp.MustCompile(`[[:punct:]]+`)
)

// queryTitle normalizes a title for the outbound search: parenthetical and
// bracketed annotations are dropped and punctuation collapses to spaces.
// Scoring still uses the raw title.
func queryTitle(title string) string {
	cleaned := annotationPattern.ReplaceAllString(title, " ")
	cleaned = punctPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return title
	}
	return cleaned
}
