package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/AH100-1/book-project/internal/engine"
	"github.com/AH100-1/book-project/internal/excel"
)

// VerifyHandler starts verification jobs for uploaded files.
type VerifyHandler struct {
	runner    *engine.Runner
	uploadDir string

	// submission defaults from settings
	defaultRegion string
	defaultLevel  string
}

// NewVerifyHandler creates a VerifyHandler.
func NewVerifyHandler(runner *engine.Runner, uploadDir, defaultRegion, defaultLevel string) *VerifyHandler {
	return &VerifyHandler{
		runner:        runner,
		uploadDir:     uploadDir,
		defaultRegion: defaultRegion,
		defaultLevel:  defaultLevel,
	}
}

type verifyRequest struct {
	Region      string `json:"region"`
	SchoolLevel string `json:"school_level"`
}

// Verify starts a background verification job for an uploaded file.
// POST /api/verify/:fileID
func (h *VerifyHandler) Verify(c echo.Context) error {
	fileID := c.Param("fileID")

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Region == "" {
		req.Region = h.defaultRegion
	}
	if req.SchoolLevel == "" {
		req.SchoolLevel = h.defaultLevel
	}

	matches, err := filepath.Glob(filepath.Join(h.uploadDir, fileID+"_*"))
	if err != nil || len(matches) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
	}
	inputFile := matches[0]

	records, err := excel.ReadRecords(inputFile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read workbook"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "workbook has no records"})
	}

	job := h.runner.Submit(records, engine.SubmitOptions{
		InputFile:   inputFile,
		Region:      req.Region,
		SchoolLevel: req.SchoolLevel,
	})

	return c.JSON(http.StatusAccepted, map[string]string{
		"job_id":  job.ID,
		"message": "verification started",
	})
}
