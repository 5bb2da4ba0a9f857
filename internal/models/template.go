package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContractTemplate is either a legacy HTML string with {{placeholders}}
// (Content) or a JSON section list (Structure). Structure wins when both are set.
type ContractTemplate struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `json:"description"`
	ContractTypeID string         `gorm:"type:varchar(36);index;not null" json:"contract_type_id"`
	Content        *string        `json:"content,omitempty"`
	Structure      datatypes.JSON `json:"structure,omitempty"`
	IsDefault      bool           `gorm:"not null;default:false" json:"is_default"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	OrganizationID *string        `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	Version        int            `gorm:"not null;default:1" json:"version"`
	HTMLCache      *string        `gorm:"column:html_cache" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	CreatedBy      *string        `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ContractTemplate) TableName() string {
	return "contract_templates"
}

// HasStructure reports whether the template carries a non-empty JSON structure.
func (t *ContractTemplate) HasStructure() bool {
	s := string(t.Structure)
	return len(t.Structure) > 0 && s != "null"
}

// HasContent reports whether the template carries legacy HTML content.
func (t *ContractTemplate) HasContent() bool {
	return t.Content != nil && *t.Content != ""
}
