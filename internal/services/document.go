package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/contractdata"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/pdfgen"
	"DR-SIGN/internal/renderer"
	"DR-SIGN/internal/repository"
	"DR-SIGN/internal/storage"

	"go.uber.org/zap"
)

type DocumentOptions struct {
	IncludeSignatureBlock bool
	Now                   time.Time
}

// DocumentGenerator produces a contract PDF and stores it, returning its URL.
type DocumentGenerator interface {
	Generate(ctx context.Context, contract *models.Contract, opts DocumentOptions) (string, error)
}

type DocumentService struct {
	templates  repository.TemplateStore
	converter  HTMLConverter
	store      storage.ObjectStore
	structured *renderer.StructuredRenderer
	locale     string
	location   *time.Location
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDocumentService wires the generator. converter may be nil, in which case
// every document uses the fixed layout.
func NewDocumentService(
	templates repository.TemplateStore,
	converter HTMLConverter,
	store storage.ObjectStore,
	locale string,
	location *time.Location,
	timeout time.Duration,
	logger *zap.Logger,
) *DocumentService {
	if location == nil {
		location = time.UTC
	}
	return &DocumentService{
		templates:  templates,
		converter:  converter,
		store:      store,
		structured: renderer.NewStructuredRenderer(location),
		locale:     locale,
		location:   location,
		timeout:    timeout,
		logger:     logger,
	}
}

// Generate renders the contract and uploads it under
// contracts/{id}/signed_{millis}.pdf. Nothing is uploaded if rendering fails.
func (s *DocumentService) Generate(ctx context.Context, contract *models.Contract, opts DocumentOptions) (string, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	pdf, err := s.Render(ctx, contract, opts)
	if err != nil {
		return "", err
	}

	url, err := s.store.Put(ctx, storage.SignedObjectName(contract.ID, opts.Now), pdf, "application/pdf")
	if err != nil {
		return "", apperr.Storage("failed to store contract document", err)
	}

	s.logger.Info("Contract document stored",
		zap.String("contract_id", contract.ID),
		zap.Int("size", len(pdf)),
		zap.String("url", url))
	return url, nil
}

// Render returns the PDF bytes for contract, preferring its template when an
// HTML converter is available.
func (s *DocumentService) Render(ctx context.Context, contract *models.Contract, opts DocumentOptions) ([]byte, error) {
	if contract == nil {
		return nil, apperr.Render("failed to generate document", errors.New("nil contract"))
	}

	if s.converter != nil {
		tmpl, err := s.resolveTemplate(ctx, contract)
		if err != nil {
			return nil, err
		}
		if tmpl != nil {
			data := contractdata.Prepare(contract, s.dataOptions(opts.Now))
			page, err := s.RenderTemplate(tmpl, data)
			if err != nil {
				return nil, err
			}
			if opts.IncludeSignatureBlock {
				page = appendSignatureHTML(page, contract, s.location)
			}
			pdf, err := s.converter.RenderHTML(ctx, page)
			if err != nil {
				return nil, apperr.Render("failed to convert document", err)
			}
			return pdf, nil
		}
	}

	pdf, err := pdfgen.Generate(contract, pdfgen.Options{
		IncludeSignatureBlock: opts.IncludeSignatureBlock,
		Locale:                s.locale,
		Location:              s.location,
		Now:                   opts.Now,
	})
	if err != nil {
		return nil, apperr.Render("failed to generate document", err)
	}
	return pdf, nil
}

// RenderTemplate renders a template to HTML. The JSON structure takes
// precedence over legacy content.
func (s *DocumentService) RenderTemplate(tmpl *models.ContractTemplate, data map[string]any) (string, error) {
	if tmpl.HasStructure() {
		structure, err := renderer.ParseStructure(tmpl.Structure)
		if err != nil {
			return "", err
		}
		return s.structured.Render(structure, data), nil
	}
	if tmpl.HasContent() {
		return renderer.Render(*tmpl.Content, data), nil
	}
	return "", apperr.Validation("template has neither content nor structure")
}

func (s *DocumentService) dataOptions(now time.Time) contractdata.Options {
	return contractdata.Options{Locale: s.locale, Location: s.location, Now: now}
}

// resolveTemplate picks the contract's own template, then the organization
// default for its type, then the global default. It returns nil when none
// applies.
func (s *DocumentService) resolveTemplate(ctx context.Context, contract *models.Contract) (*models.ContractTemplate, error) {
	if contract.TemplateID != nil && *contract.TemplateID != "" {
		tmpl, err := s.templates.FindTemplate(ctx, *contract.TemplateID)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("Contract template missing, using default",
			zap.String("contract_id", contract.ID),
			zap.String("template_id", *contract.TemplateID))
	}

	if contract.ContractTypeID == "" {
		return nil, nil
	}

	scopes := []*string{nil}
	if contract.OrganizationID != "" {
		orgID := contract.OrganizationID
		scopes = []*string{&orgID, nil}
	}
	for _, orgID := range scopes {
		tmpl, err := s.templates.FindDefaultTemplate(ctx, contract.ContractTypeID, orgID)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func appendSignatureHTML(page string, contract *models.Contract, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(`<section class="section signature">`)
	b.WriteString(`<h2 class="section-title">Signature électronique</h2>`)
	if contract.SignedAt == nil {
		b.WriteString(`<p>Document en attente de signature.</p>`)
	} else {
		signer := ""
		if contract.Customer != nil {
			signer = strings.TrimSpace(contract.Customer.Firstname + " " + contract.Customer.Lastname)
		}
		rows := [][2]string{
			{"Signataire", signer},
			{"Date de signature", contractdata.FormatDateTime(*contract.SignedAt, loc)},
			{"Adresse IP", contract.SignatureIP},
			{"Localisation", contract.SignatureLocation},
			{"Référence", contract.SignatureReference},
		}
		b.WriteString(`<div class="info-grid">`)
		for _, row := range rows {
			fmt.Fprintf(&b, `<div class="info-row"><span class="label">%s</span><span class="value">%s</span></div>`,
				html.EscapeString(row[0]), html.EscapeString(row[1]))
		}
		b.WriteString(`</div>`)
		fmt.Fprintf(&b, `<p class="disclaimer">%s</p>`, html.EscapeString(pdfgen.SignatureDisclaimer))
	}
	b.WriteString(`</section>`)

	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + b.String() + page[i:]
	}
	return page + b.String()
}
