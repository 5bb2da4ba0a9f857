package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"DR-SIGN/internal/models"
	"DR-SIGN/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignLinkWorkflow is the signing surface the HTTP layer drives.
type SignLinkWorkflow interface {
	RequestSignature(ctx context.Context, contractID string) (*services.SignRequestResult, error)
	ActiveSignLink(ctx context.Context, contractID string) (*models.ContractSignLink, string, error)
	FetchByToken(ctx context.Context, token string) (*models.ContractSignLink, error)
	Sign(ctx context.Context, token, ip string) (*models.Contract, error)
	GenerateManually(ctx context.Context, contractID string) (string, error)
	UploadSigned(ctx context.Context, contractID string, data []byte, contentType string) (*models.Contract, error)
}

type SignatureExport interface {
	Export(ctx context.Context, organizationID string) ([]byte, error)
}

type ContractHandler struct {
	signing  SignLinkWorkflow
	exporter SignatureExport
	logger   *zap.Logger
}

func NewContractHandler(signing SignLinkWorkflow, exporter SignatureExport, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{signing: signing, exporter: exporter, logger: logger}
}

// RequestSignLink issues a new sign link and emails it to the customer.
func (h *ContractHandler) RequestSignLink(c *gin.Context) {
	result, err := h.signing.RequestSignature(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{
		"data":        result.Link,
		"link":        result.URL,
		"emailSentTo": result.EmailSentTo,
	})
}

func (h *ContractHandler) GetSignLink(c *gin.Context) {
	link, url, err := h.signing.ActiveSignLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": link, "link": url})
}

func (h *ContractHandler) GeneratePDF(c *gin.Context) {
	url, err := h.signing.GenerateManually(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"link": url})
}

// UploadSignedPDF accepts a multipart "file" field holding a signed PDF.
func (h *ContractHandler) UploadSignedPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxSignedUploadSize+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > services.MaxSignedUploadSize {
		respondBadRequest(c, "file exceeds the 15MB limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, services.MaxSignedUploadSize+1))
	if err != nil {
		respondBadRequest(c, "Failed to read uploaded file")
		return
	}

	contract, err := h.signing.UploadSigned(c.Request.Context(), c.Param("id"), data, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"link": contract.SignedPDFURL, "data": contract})
}

// ExportSignatures streams the signed contracts of the caller's organization
// as an XLSX workbook.
func (h *ContractHandler) ExportSignatures(c *gin.Context) {
	data, err := h.exporter.Export(c.Request.Context(), organizationID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("signatures_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
