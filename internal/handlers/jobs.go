package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AH100-1/book-project/internal/jobs"
)

// JobHandler exposes job snapshots for polling.
type JobHandler struct {
	store *jobs.Store
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(store *jobs.Store) *JobHandler {
	return &JobHandler{store: store}
}

// List returns snapshots of all jobs, newest first.
// GET /api/jobs
func (h *JobHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"jobs": h.store.List()})
}

// Get returns one job snapshot.
// GET /api/jobs/:id
func (h *JobHandler) Get(c echo.Context) error {
	job, ok := h.store.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	return c.JSON(http.StatusOK, job)
}

// Delete removes a job. A running loop is cancelled cooperatively; the
// record becomes unobservable immediately.
// DELETE /api/jobs/:id
func (h *JobHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !h.store.Delete(id) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "job " + id + " deleted"})
}
