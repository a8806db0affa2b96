// Package handler exposes the cleanup service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense_tracker/internal/feature/cleanup/usecase"
)

// CleanupUsecase runs purges on demand and reports table sizes.
type CleanupUsecase interface {
	RunAll(ctx context.Context) *usecase.Report
	Stats(ctx context.Context) (map[string]int64, error)
}

// CleanupHandler serves the manual cleanup and table statistics endpoints.
type CleanupHandler struct {
	cleanup CleanupUsecase
}

// NewCleanupHandler creates a CleanupHandler backed by the given usecase.
func NewCleanupHandler(cleanup CleanupUsecase) *CleanupHandler {
	return &CleanupHandler{cleanup: cleanup}
}

// Run handles POST /cleanup. Partial failures are reported in the body with a 200.
func (h *CleanupHandler) Run(c *gin.Context) {
	report := h.cleanup.RunAll(c.Request.Context())
	message := "Cleanup completed"
	if report.Failed() {
		message = "Cleanup completed with errors"
	}
	slog.Info("manual cleanup", "deleted", report.Total(), "failed_tasks", len(report.Errors), "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"results": report.Results,
		"errors":  report.Errors,
	})
}

// Stats handles GET /stats.
func (h *CleanupHandler) Stats(c *gin.Context) {
	stats, err := h.cleanup.Stats(c.Request.Context())
	if err != nil {
		slog.Error("failed to collect stats", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
