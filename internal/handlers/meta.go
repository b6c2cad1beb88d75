package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AH100-1/book-project/internal/cache"
	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/config"
)

// MetaHandler serves lookup lists and non-secret settings.
type MetaHandler struct {
	settings config.Settings
	cache    *cache.ResultCache
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(settings config.Settings, c *cache.ResultCache) *MetaHandler {
	return &MetaHandler{settings: settings, cache: c}
}

// Regions returns the region display names.
// GET /api/regions
func (h *MetaHandler) Regions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"regions": catalog.Regions})
}

// SchoolLevels returns the school levels.
// GET /api/school-levels
func (h *MetaHandler) SchoolLevels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"school_levels": catalog.SchoolLevels})
}

// Settings returns the current non-secret settings.
// GET /api/settings
func (h *MetaHandler) Settings(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"region":       h.settings.RegionName,
		"school_level": h.settings.SchoolLevel,
		"has_api_key":  h.settings.ResolverAPIKey != "",
		"mode":         "api",
	})
}

// CacheStats returns result-cache counters.
// GET /api/cache/stats
func (h *MetaHandler) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cache.Stats())
}

// DownloadHandler serves completed result workbooks.
type DownloadHandler struct {
	outputDir string
}

// NewDownloadHandler creates a DownloadHandler serving files from outputDir.
func NewDownloadHandler(outputDir string) *DownloadHandler {
	return &DownloadHandler{outputDir: outputDir}
}

// Download streams a result workbook.
// GET /api/download/:filename
func (h *DownloadHandler) Download(c echo.Context) error {
	filename := c.Param("filename")
	// Result handles are bare filenames; reject anything path-like.
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid filename"})
	}
	path := filepath.Join(h.outputDir, filename)
	return c.Attachment(path, filename)
}
