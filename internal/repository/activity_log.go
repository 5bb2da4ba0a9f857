package repository

import (
	"context"
	"fmt"
	"strings"

	"DR-SIGN/internal/models"

	"gorm.io/gorm"
)

type ActivityLogFilter struct {
	OrganizationID string
	Method         string
	Path           string
	Limit          int
	Offset         int
}

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save activity log: %w", err)
	}
	return nil
}

// List returns one page of logs, most recent first, and the total count
// matching the filter.
func (r *ActivityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	query := r.filtered(ctx, filter)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch logs: %w", err)
	}
	return logs, total, nil
}

func (r *ActivityLogRepository) filtered(ctx context.Context, filter ActivityLogFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.OrganizationID != "" {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", strings.ToUpper(filter.Method))
	}
	if filter.Path != "" {
		query = query.Where("path LIKE ?", "%"+filter.Path+"%")
	}
	return query
}
