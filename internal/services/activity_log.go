package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"DR-SIGN/internal/models"
	"DR-SIGN/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationHeader carries the caller's organization, set by the upstream
// gateway.
const OrganizationHeader = "X-Organization-ID"

type ActivityLogStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type ActivityLogService struct {
	store  ActivityLogStore
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewActivityLogService(store ActivityLogStore, logger *zap.Logger) *ActivityLogService {
	return &ActivityLogService{store: store, logger: logger}
}

// LogRequest saves the entry in the background. Failures are only logged.
func (s *ActivityLogService) LogRequest(c *gin.Context, statusCode int, responseTime time.Duration) {
	queryParams := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}
	queryParamsJSON, _ := json.Marshal(queryParams)

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	entry := &models.ActivityLog{
		ID:             uuid.New().String(),
		OrganizationID: c.GetHeader(OrganizationHeader),
		Method:         c.Request.Method,
		Path:           path,
		UserAgent:      c.Request.UserAgent(),
		IPAddress:      c.ClientIP(),
		QueryParams:    string(queryParamsJSON),
		StatusCode:     statusCode,
		ResponseTime:   responseTime.Milliseconds(),
		CreatedAt:      time.Now(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.Create(ctx, entry); err != nil {
			s.logger.Warn("Failed to save activity log", zap.String("path", entry.Path), zap.Error(err))
		}
	}()
}

// Wait blocks until pending log writes finish.
func (s *ActivityLogService) Wait() {
	s.wg.Wait()
}

func (s *ActivityLogService) ListLogs(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return s.store.List(ctx, filter)
}

// LoggingMiddleware records every request after it has been handled.
// Request bodies are never captured.
func (s *ActivityLogService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.LogRequest(c, c.Writer.Status(), time.Since(start))
	}
}
