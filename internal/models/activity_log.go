package models

import (
	"time"
)

// ActivityLog is one audited HTTP request. Request bodies are never stored:
// the sign endpoints carry customer data.
type ActivityLog struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	Method         string    `gorm:"type:varchar(10);not null;index" json:"method"`
	Path           string    `gorm:"type:varchar(255);not null;index" json:"path"`
	UserAgent      string    `gorm:"type:text" json:"user_agent"`
	IPAddress      string    `gorm:"type:varchar(64)" json:"ip_address"`
	QueryParams    string    `gorm:"type:text" json:"query_params"`
	StatusCode     int       `gorm:"not null" json:"status_code"`
	ResponseTime   int64     `gorm:"not null" json:"response_time"` // in milliseconds
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
