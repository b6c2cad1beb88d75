// Package handlers wires the verification service to its HTTP API.
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AH100-1/book-project/internal/excel"
	"github.com/AH100-1/book-project/internal/models"
)

// UploadHandler accepts purchase-list workbooks.
type UploadHandler struct {
	uploadDir string
}

// NewUploadHandler creates an UploadHandler storing files under uploadDir.
func NewUploadHandler(uploadDir string) *UploadHandler {
	return &UploadHandler{uploadDir: uploadDir}
}

// Upload handles workbook upload.
// POST /api/upload
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "only .xlsx workbooks are supported"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open upload"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to prepare upload directory"})
	}

	fileID := uuid.New().String()[:8]
	filename := fmt.Sprintf("%s_%s", fileID, filepath.Base(fh.Filename))
	path := filepath.Join(h.uploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store upload"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store upload"})
	}

	records, err := excel.ReadRecords(path)
	if err != nil {
		_ = os.Remove(path)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("failed to read workbook: %v", err)})
	}

	preview := records
	if len(preview) > 5 {
		preview = preview[:5]
	}

	return c.JSON(http.StatusOK, uploadResponse{
		FileID:    fileID,
		Filename:  filename,
		TotalRows: len(records),
		Preview:   preview,
	})
}

type uploadResponse struct {
	FileID    string              `json:"file_id"`
	Filename  string              `json:"filename"`
	TotalRows int                 `json:"total_rows"`
	Preview   []models.BookRecord `json:"preview"`
}
