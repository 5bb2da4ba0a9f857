package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/contractdata"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/renderer"
	"DR-SIGN/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type TemplateInput struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ContractTypeID string          `json:"contract_type_id"`
	Content        *string         `json:"content"`
	Structure      *datatypes.JSON `json:"structure"`
	IsDefault      *bool           `json:"is_default"`
	IsActive       *bool           `json:"is_active"`
}

type TemplateService struct {
	templates repository.TemplateStore
	documents *DocumentService
	logger    *zap.Logger
	now       func() time.Time
}

func NewTemplateService(templates repository.TemplateStore, documents *DocumentService, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		documents: documents,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateTemplate checks content and structure without saving anything.
func (s *TemplateService) ValidateTemplate(content *string, structure *datatypes.JSON) error {
	hasContent := content != nil && strings.TrimSpace(*content) != ""
	hasStructure := structure != nil && len(*structure) > 0 && string(*structure) != "null"
	if !hasContent && !hasStructure {
		return apperr.Validation("template requires content or structure")
	}
	if hasContent {
		if err := renderer.ValidateTemplate(*content); err != nil {
			return err
		}
	}
	if hasStructure {
		if _, err := renderer.ParseStructure(*structure); err != nil {
			return err
		}
	}
	return nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, organizationID string, createdBy *string, in TemplateInput) (*models.ContractTemplate, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.ContractTypeID == "" {
		return nil, apperr.Validation("contract_type_id is required")
	}
	if err := s.ValidateTemplate(in.Content, in.Structure); err != nil {
		return nil, err
	}

	tmpl := &models.ContractTemplate{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		ContractTypeID: in.ContractTypeID,
		Content:        in.Content,
		IsDefault:      in.IsDefault != nil && *in.IsDefault,
		IsActive:       in.IsActive == nil || *in.IsActive,
		OrganizationID: orgScope(organizationID),
		Version:        1,
		CreatedBy:      createdBy,
	}
	if in.Structure != nil {
		tmpl.Structure = *in.Structure
	}

	err := s.templates.WithinTransaction(ctx, func(tx repository.TemplateStore) error {
		if tmpl.IsDefault {
			if err := tx.UnsetDefaults(ctx, tmpl.ContractTypeID, tmpl.OrganizationID, tmpl.ID); err != nil {
				return err
			}
		}
		return tx.CreateTemplate(ctx, tmpl)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Template created", zap.String("template_id", tmpl.ID), zap.String("name", tmpl.Name))
	return tmpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, organizationID, id string) (*models.ContractTemplate, error) {
	tmpl, err := s.templates.FindTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(tmpl, organizationID) {
		return nil, apperr.NotFound("template")
	}
	return tmpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, organizationID string) ([]models.ContractTemplate, error) {
	return s.templates.ListTemplates(ctx, organizationID)
}

// UpdateTemplate applies the non-nil fields of in, bumps the version and
// drops the cached preview.
func (s *TemplateService) UpdateTemplate(ctx context.Context, organizationID, id string, in TemplateInput) (*models.ContractTemplate, error) {
	tmpl, err := s.ownedTemplate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if in.Content != nil || in.Structure != nil {
		content, structure := in.Content, in.Structure
		if content == nil {
			content = tmpl.Content
		}
		if structure == nil && tmpl.HasStructure() {
			structure = &tmpl.Structure
		}
		if err := s.ValidateTemplate(content, structure); err != nil {
			return nil, err
		}
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		tmpl.Name = name
	}
	if in.Description != "" {
		tmpl.Description = in.Description
	}
	if in.ContractTypeID != "" {
		tmpl.ContractTypeID = in.ContractTypeID
	}
	if in.Content != nil {
		tmpl.Content = in.Content
	}
	if in.Structure != nil {
		tmpl.Structure = *in.Structure
	}
	if in.IsActive != nil {
		tmpl.IsActive = *in.IsActive
	}
	if in.IsDefault != nil {
		tmpl.IsDefault = *in.IsDefault
	}
	tmpl.Version++
	tmpl.HTMLCache = nil

	err = s.templates.WithinTransaction(ctx, func(tx repository.TemplateStore) error {
		if tmpl.IsDefault {
			if err := tx.UnsetDefaults(ctx, tmpl.ContractTypeID, tmpl.OrganizationID, tmpl.ID); err != nil {
				return err
			}
		}
		return tx.SaveTemplate(ctx, tmpl)
	})
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// DuplicateTemplate copies a visible template into the caller's organization.
func (s *TemplateService) DuplicateTemplate(ctx context.Context, organizationID, id string, createdBy *string) (*models.ContractTemplate, error) {
	source, err := s.GetTemplate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	dup := &models.ContractTemplate{
		ID:             uuid.New().String(),
		Name:           source.Name + " (copie)",
		Description:    source.Description,
		ContractTypeID: source.ContractTypeID,
		Content:        source.Content,
		Structure:      source.Structure,
		IsDefault:      false,
		IsActive:       true,
		OrganizationID: orgScope(organizationID),
		Version:        1,
		CreatedBy:      createdBy,
	}
	if err := s.templates.CreateTemplate(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// DeleteTemplate refuses while contracts still reference the template.
func (s *TemplateService) DeleteTemplate(ctx context.Context, organizationID, id string) error {
	tmpl, err := s.ownedTemplate(ctx, organizationID, id)
	if err != nil {
		return err
	}

	count, err := s.templates.CountContractsUsingTemplate(ctx, tmpl.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict(fmt.Sprintf("template is used by %d contract(s)", count))
	}
	return s.templates.DeleteTemplate(ctx, tmpl.ID)
}

// PreviewTemplate renders the template with sample data. The HTML is cached
// until the template next changes.
func (s *TemplateService) PreviewTemplate(ctx context.Context, organizationID, id string) (string, error) {
	tmpl, err := s.GetTemplate(ctx, organizationID, id)
	if err != nil {
		return "", err
	}
	if tmpl.HTMLCache != nil && *tmpl.HTMLCache != "" {
		return *tmpl.HTMLCache, nil
	}

	data := contractdata.Prepare(SampleContract(s.now()), s.documents.dataOptions(s.now()))
	page, err := s.documents.RenderTemplate(tmpl, data)
	if err != nil {
		return "", err
	}
	if err := s.templates.UpdateHTMLCache(ctx, tmpl.ID, page); err != nil {
		s.logger.Warn("Failed to cache template preview", zap.String("template_id", tmpl.ID), zap.Error(err))
	}
	return page, nil
}

// Placeholders lists the variables used by the template's legacy content.
func (s *TemplateService) Placeholders(ctx context.Context, organizationID, id string) ([]string, error) {
	tmpl, err := s.GetTemplate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if !tmpl.HasContent() {
		return []string{}, nil
	}
	return renderer.ExtractPlaceholders(*tmpl.Content), nil
}

// ownedTemplate loads a template the organization may modify. Global
// templates are read-only for organizations.
func (s *TemplateService) ownedTemplate(ctx context.Context, organizationID, id string) (*models.ContractTemplate, error) {
	tmpl, err := s.templates.FindTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if organizationID == "" {
		return tmpl, nil
	}
	if tmpl.OrganizationID == nil || *tmpl.OrganizationID != organizationID {
		return nil, apperr.NotFound("template")
	}
	return tmpl, nil
}

func visibleTo(tmpl *models.ContractTemplate, organizationID string) bool {
	return organizationID == "" || tmpl.OrganizationID == nil || *tmpl.OrganizationID == organizationID
}

func orgScope(organizationID string) *string {
	if organizationID == "" {
		return nil
	}
	return &organizationID
}
