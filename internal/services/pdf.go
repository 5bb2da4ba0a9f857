package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
	"go.uber.org/zap"
)

// HTMLConverter turns a rendered HTML document into PDF bytes.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFService converts rendered contract templates to PDF through Gotenberg's
// Chromium route.
type PDFService struct {
	client     *gotenberg.Client
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

func NewPDFService(gotenbergURL string, timeout time.Duration, logger *zap.Logger) (*PDFService, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	client, err := gotenberg.NewClient(gotenbergURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gotenberg client: %w", err)
	}

	return &PDFService{
		client:     client,
		timeout:    timeout,
		maxRetries: 3,
		logger:     logger,
	}, nil
}

func (s *PDFService) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		body, err := s.convert(ctx, html)
		if err == nil {
			return body, nil
		}
		lastErr = err
		s.logger.Warn("PDF conversion attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.maxRetries),
			zap.Error(err))

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("pdf conversion cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("failed to convert document after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *PDFService) convert(ctx context.Context, html string) ([]byte, error) {
	convertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	index, err := document.FromString("index.html", html)
	if err != nil {
		return nil, fmt.Errorf("failed to create document from html: %w", err)
	}

	req := gotenberg.NewHTMLRequest(index)
	req.PaperSize(gotenberg.A4)

	resp, err := s.client.Send(convertCtx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
