package repository

import (
	"context"
	"fmt"

	"DR-SIGN/internal/models"

	"gorm.io/gorm"
)

type TemplateStore interface {
	FindTemplate(ctx context.Context, id string) (*models.ContractTemplate, error)
	// FindDefaultTemplate returns the active default template for a contract
	// type. A nil organizationID selects the global default.
	FindDefaultTemplate(ctx context.Context, contractTypeID string, organizationID *string) (*models.ContractTemplate, error)
	ListTemplates(ctx context.Context, organizationID string) ([]models.ContractTemplate, error)
	CreateTemplate(ctx context.Context, t *models.ContractTemplate) error
	SaveTemplate(ctx context.Context, t *models.ContractTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	UnsetDefaults(ctx context.Context, contractTypeID string, organizationID *string, exceptID string) error
	UpdateHTMLCache(ctx context.Context, id string, html string) error
	CountContractsUsingTemplate(ctx context.Context, id string) (int64, error)
	WithinTransaction(ctx context.Context, fn func(TemplateStore) error) error
}

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) FindTemplate(ctx context.Context, id string) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err, "template")
	}
	return &t, nil
}

func (r *TemplateRepository) FindDefaultTemplate(ctx context.Context, contractTypeID string, organizationID *string) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	q := scopeOrganization(r.db.WithContext(ctx), organizationID).
		Where("contract_type_id = ? AND is_default = ? AND is_active = ?", contractTypeID, true, true)
	if err := q.First(&t).Error; err != nil {
		return nil, notFound(err, "template")
	}
	return &t, nil
}

// ListTemplates returns the organization's templates followed by global ones.
func (r *TemplateRepository) ListTemplates(ctx context.Context, organizationID string) ([]models.ContractTemplate, error) {
	var templates []models.ContractTemplate
	err := r.db.WithContext(ctx).
		Where("organization_id = ? OR organization_id IS NULL", organizationID).
		Order("organization_id IS NULL, name ASC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, t *models.ContractTemplate) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) SaveTemplate(ctx context.Context, t *models.ContractTemplate) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContractTemplate{}).Error; err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) UnsetDefaults(ctx context.Context, contractTypeID string, organizationID *string, exceptID string) error {
	err := scopeOrganization(r.db.WithContext(ctx).Model(&models.ContractTemplate{}), organizationID).
		Where("contract_type_id = ? AND is_default = ? AND id <> ?", contractTypeID, true, exceptID).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to unset default templates: %w", err)
	}
	return nil
}

func (r *TemplateRepository) UpdateHTMLCache(ctx context.Context, id string, html string) error {
	err := r.db.WithContext(ctx).
		Model(&models.ContractTemplate{}).
		Where("id = ?", id).
		UpdateColumn("html_cache", html).Error
	if err != nil {
		return fmt.Errorf("failed to cache template html: %w", err)
	}
	return nil
}

func (r *TemplateRepository) CountContractsUsingTemplate(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("template_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count contracts using template: %w", err)
	}
	return count, nil
}

func (r *TemplateRepository) WithinTransaction(ctx context.Context, fn func(TemplateStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TemplateRepository{db: tx})
	})
}

func scopeOrganization(db *gorm.DB, organizationID *string) *gorm.DB {
	if organizationID == nil {
		return db.Where("organization_id IS NULL")
	}
	return db.Where("organization_id = ?", *organizationID)
}
