package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/resolver"
)

// SearchHandler exposes the external lookups as direct endpoints, mostly for
// smoke-testing credentials and connectivity.
type SearchHandler struct {
	resolver *resolver.Client
	catalog  *catalog.Client
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(res *resolver.Client, cat *catalog.Client) *SearchHandler {
	return &SearchHandler{resolver: res, catalog: cat}
}

type resolveRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Resolve resolves a title/author pair to an ISBN.
// POST /api/search/resolve
func (h *SearchHandler) Resolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	res, err := h.resolver.Resolve(c.Request().Context(), req.Title, req.Author)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"title":           req.Title,
		"author":          req.Author,
		"isbn13":          res.ISBN13,
		"error":           res.ErrorReason,
		"candidate_count": res.CandidateCount,
	})
}

type isbnSearchRequest struct {
	ISBN   string `json:"isbn"`
	Region string `json:"region"`
}

// ISBN runs a single-partition catalog search for an ISBN.
// POST /api/search/isbn
func (h *SearchHandler) ISBN(c echo.Context) error {
	var req isbnSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ISBN == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "isbn is required"})
	}

	provCode := catalog.ProvCode(req.Region)
	res, err := h.catalog.SearchPartition(c.Request().Context(), req.ISBN, provCode, 1, 100)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	books := res.Books
	if len(books) > 10 {
		books = books[:10]
	}
	return c.JSON(http.StatusOK, map[string]any{
		"isbn":        req.ISBN,
		"region":      req.Region,
		"prov_code":   provCode,
		"total_count": res.TotalCount,
		"books":       books,
	})
}

type bookSearchRequest struct {
	ISBN   string `json:"isbn"`
	School string `json:"school"`
	Region string `json:"region"`
}

// Book checks whether a school holds an ISBN, across partitions.
// POST /api/search/book
func (h *SearchHandler) Book(c echo.Context) error {
	var req bookSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ISBN == "" || req.School == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "isbn and school are required"})
	}

	res, err := h.catalog.SearchMultiPartition(c.Request().Context(), req.ISBN, catalog.ProvCode(req.Region))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	matches := catalog.FindSchoolMatches(res.Books, req.School)
	books := matches.Books
	if len(books) > 5 {
		books = books[:5]
	}

	return c.JSON(http.StatusOK, map[string]any{
		"isbn":            req.ISBN,
		"school":          req.School,
		"exists":          len(matches.Books) > 0,
		"school_count":    len(matches.Books),
		"total_count":     res.TotalCount,
		"matched_school":  matches.FirstMatchedName,
		"matched_schools": matches.AllMatchedNames,
		"warnings":        res.Warnings,
		"books":           books,
	})
}
