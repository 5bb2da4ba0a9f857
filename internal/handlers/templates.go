package handlers

import (
	"context"
	"net/http"

	"DR-SIGN/internal/models"
	"DR-SIGN/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// UserHeader optionally names the staff member behind a request.
const UserHeader = "X-User-ID"

type TemplateManager interface {
	ValidateTemplate(content *string, structure *datatypes.JSON) error
	CreateTemplate(ctx context.Context, organizationID string, createdBy *string, in services.TemplateInput) (*models.ContractTemplate, error)
	GetTemplate(ctx context.Context, organizationID, id string) (*models.ContractTemplate, error)
	ListTemplates(ctx context.Context, organizationID string) ([]models.ContractTemplate, error)
	UpdateTemplate(ctx context.Context, organizationID, id string, in services.TemplateInput) (*models.ContractTemplate, error)
	DuplicateTemplate(ctx context.Context, organizationID, id string, createdBy *string) (*models.ContractTemplate, error)
	DeleteTemplate(ctx context.Context, organizationID, id string) error
	PreviewTemplate(ctx context.Context, organizationID, id string) (string, error)
	Placeholders(ctx context.Context, organizationID, id string) ([]string, error)
}

type TemplateHandler struct {
	templates TemplateManager
	logger    *zap.Logger
}

func NewTemplateHandler(templates TemplateManager, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.ListTemplates(c.Request.Context(), organizationID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": templates, "total": len(templates)})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var in services.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	tmpl, err := h.templates.CreateTemplate(c.Request.Context(), organizationID(c), requestUser(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"data": tmpl})
}

// Validate checks a draft without saving it.
func (h *TemplateHandler) Validate(c *gin.Context) {
	var in services.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if err := h.templates.ValidateTemplate(in.Content, in.Structure); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"valid": true})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tmpl, err := h.templates.GetTemplate(c.Request.Context(), organizationID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": tmpl})
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var in services.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	tmpl, err := h.templates.UpdateTemplate(c.Request.Context(), organizationID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": tmpl})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), organizationID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func (h *TemplateHandler) Duplicate(c *gin.Context) {
	tmpl, err := h.templates.DuplicateTemplate(c.Request.Context(), organizationID(c), c.Param("id"), requestUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"data": tmpl})
}

// Preview renders the template against sample data and returns the page.
func (h *TemplateHandler) Preview(c *gin.Context) {
	page, err := h.templates.PreviewTemplate(c.Request.Context(), organizationID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *TemplateHandler) Placeholders(c *gin.Context) {
	keys, err := h.templates.Placeholders(c.Request.Context(), organizationID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": keys, "total": len(keys)})
}

func requestUser(c *gin.Context) *string {
	user := c.GetHeader(UserHeader)
	if user == "" {
		return nil
	}
	return &user
}
