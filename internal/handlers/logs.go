package handlers

import (
	"context"
	"net/http"
	"strconv"

	"DR-SIGN/internal/models"
	"DR-SIGN/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 1000
)

type ActivityLogReader interface {
	ListLogs(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type LogsHandler struct {
	logs   ActivityLogReader
	logger *zap.Logger
}

func NewLogsHandler(logs ActivityLogReader, logger *zap.Logger) *LogsHandler {
	return &LogsHandler{logs: logs, logger: logger}
}

type LogsResponse struct {
	Success    bool                 `json:"success"`
	Logs       []models.ActivityLog `json:"logs"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// GetAllLogs returns the organization's activity logs, newest first.
func (h *LogsHandler) GetAllLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLogLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	logs, total, err := h.logs.ListLogs(c.Request.Context(), repository.ActivityLogFilter{
		OrganizationID: organizationID(c),
		Method:         c.Query("method"),
		Path:           c.Query("path"),
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	c.JSON(http.StatusOK, LogsResponse{
		Success:    true,
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

// GetLogStats counts the organization's requests by method, path and status.
func (h *LogsHandler) GetLogStats(c *gin.Context) {
	logs, total, err := h.logs.ListLogs(c.Request.Context(), repository.ActivityLogFilter{
		OrganizationID: organizationID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	methodCounts := make(map[string]int)
	pathCounts := make(map[string]int)
	statusCounts := make(map[int]int)
	for _, log := range logs {
		methodCounts[log.Method]++
		pathCounts[log.Path]++
		statusCounts[log.StatusCode]++
	}

	respondOK(c, http.StatusOK, gin.H{
		"total_requests": total,
		"methods":        methodCounts,
		"paths":          pathCounts,
		"status_codes":   statusCounts,
	})
}
