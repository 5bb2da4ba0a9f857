package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/geo"
	"DR-SIGN/internal/lock"
	"DR-SIGN/internal/mailer"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/notify"
	"DR-SIGN/internal/repository"
	"DR-SIGN/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxSignedUploadSize bounds manually uploaded signed PDFs.
const MaxSignedUploadSize = 15 << 20

const (
	lockTTL          = 2 * time.Minute
	lockWait         = 10 * time.Second
	backgroundBudget = 30 * time.Second
)

type SigningOptions struct {
	LinkTTL     time.Duration
	FrontendURL string
	GeoTimeout  time.Duration
	Location    *time.Location
}

// SignRequestResult is returned to staff after a link was issued.
type SignRequestResult struct {
	Link        *models.ContractSignLink `json:"link"`
	URL         string                   `json:"url"`
	EmailSentTo string                   `json:"email_sent_to"`
}

// SignLinkService drives a contract through the e-signature workflow.
type SignLinkService struct {
	contracts repository.ContractStore
	documents DocumentGenerator
	store     storage.ObjectStore
	mailer    mailer.Mailer
	notifier  notify.Notifier
	locator   geo.Locator
	locker    lock.Locker
	opts      SigningOptions
	logger    *zap.Logger

	now      func() time.Time
	newToken func() (string, error)
	wg       sync.WaitGroup
}

func NewSignLinkService(
	contracts repository.ContractStore,
	documents DocumentGenerator,
	store storage.ObjectStore,
	mail mailer.Mailer,
	notifier notify.Notifier,
	locator geo.Locator,
	locker lock.Locker,
	opts SigningOptions,
	logger *zap.Logger,
) *SignLinkService {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 7 * 24 * time.Hour
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = 3 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")

	return &SignLinkService{
		contracts: contracts,
		documents: documents,
		store:     store,
		mailer:    mail,
		notifier:  notifier,
		locator:   locator,
		locker:    locker,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		newToken:  GenerateToken,
	}
}

// GenerateToken returns 32 random bytes, base64url encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SignURL is the customer-facing page for token.
func (s *SignLinkService) SignURL(token string) string {
	return s.opts.FrontendURL + "/sign/" + token
}

// Wait blocks until background email and notification work has finished.
func (s *SignLinkService) Wait() {
	s.wg.Wait()
}

func (s *SignLinkService) lockContract(ctx context.Context, contractID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	unlock, err := s.locker.Acquire(waitCtx, "contract:"+contractID, lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return nil, apperr.Conflict("contract is being processed, retry shortly")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock contract %s: %w", contractID, err)
	}
	return unlock, nil
}

// RequestSignature replaces any existing link with a fresh one, moves the
// contract to PENDING_SIGNATURE and emails the customer in the background.
func (s *SignLinkService) RequestSignature(ctx context.Context, contractID string) (*SignRequestResult, error) {
	unlock, err := s.lockContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	contract, err := s.contracts.FindContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Customer == nil || strings.TrimSpace(contract.Customer.Email) == "" {
		return nil, apperr.Validation("customer email is required to request a signature")
	}
	if contract.Status.IsSigned() {
		return nil, apperr.Conflict("contract is already signed")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	link := &models.ContractSignLink{
		ID:         uuid.New().String(),
		ContractID: contract.ID,
		CustomerID: contract.CustomerID,
		Token:      token,
		ExpiresAt:  now.Add(s.opts.LinkTTL),
		CreatedAt:  now,
	}

	err = s.contracts.WithinTransaction(ctx, func(tx repository.ContractStore) error {
		if err := tx.DeleteSignLinksByContract(ctx, contract.ID); err != nil {
			return err
		}
		if err := tx.CreateSignLink(ctx, link); err != nil {
			return err
		}
		return tx.UpdateContract(ctx, contract.ID, map[string]any{
			"status": models.StatusPendingSignature,
		})
	})
	if err != nil {
		return nil, err
	}

	url := s.SignURL(token)
	email := strings.TrimSpace(contract.Customer.Email)
	s.sendSignRequest(contract, email, url, link.ExpiresAt)

	s.logger.Info("Signature requested",
		zap.String("contract_id", contract.ID),
		zap.Time("expires_at", link.ExpiresAt))

	return &SignRequestResult{Link: link, URL: url, EmailSentTo: email}, nil
}

func (s *SignLinkService) sendSignRequest(contract *models.Contract, email, url string, expiresAt time.Time) {
	data := mailer.SignRequest{
		CustomerName:   strings.TrimSpace(contract.Customer.Firstname + " " + contract.Customer.Lastname),
		ContractNumber: contract.ContractNumber,
		URL:            url,
		ExpiresAt:      mailer.FormatExpiry(expiresAt, s.opts.Location),
	}
	if contract.Organization != nil {
		data.OrganizationName = contract.Organization.Name
	}

	s.background(func(ctx context.Context) {
		msg, err := mailer.SignRequestMessage(email, data)
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		if err != nil {
			s.logger.Error("Failed to send signature request email",
				zap.String("contract_id", contract.ID),
				zap.String("to", email),
				zap.Error(err))
		}
	})
}

func (s *SignLinkService) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundBudget)
		defer cancel()
		fn(ctx)
	}()
}

// FetchByToken returns the link with its contract graph. An expired link is
// reported as Expired, never as NotFound.
func (s *SignLinkService) FetchByToken(ctx context.Context, token string) (*models.ContractSignLink, error) {
	link, err := s.contracts.FindSignLinkByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.now()) {
		return nil, apperr.Expired("sign link has expired")
	}
	return link, nil
}

// ActiveSignLink returns the current unexpired link of a contract and its URL.
func (s *SignLinkService) ActiveSignLink(ctx context.Context, contractID string) (*models.ContractSignLink, string, error) {
	link, err := s.contracts.FindActiveSignLink(ctx, contractID, s.now())
	if err != nil {
		return nil, "", err
	}
	return link, s.SignURL(link.Token), nil
}

// Sign records the customer's signature. The status change commits first;
// the PDF is generated afterwards and the link is consumed only once the
// document is stored, so a failed generation can be retried with the same
// link.
func (s *SignLinkService) Sign(ctx context.Context, token, ip string) (*models.Contract, error) {
	link, err := s.FetchByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockContract(ctx, link.ContractID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if ip == "" {
		ip = geo.Unknown
	}
	geoCtx, cancel := context.WithTimeout(ctx, s.opts.GeoTimeout)
	location := geo.Describe(geoCtx, s.locator, ip, s.logger)
	cancel()

	now := s.now()
	err = s.contracts.WithinTransaction(ctx, func(tx repository.ContractStore) error {
		current, err := tx.FindSignLinkByToken(ctx, token)
		if err != nil {
			return err
		}
		if current.Expired(now) {
			return apperr.Expired("sign link has expired")
		}
		contract, err := tx.FindContract(ctx, current.ContractID)
		if err != nil {
			return err
		}
		if signatureFinalized(contract) {
			return apperr.Conflict("contract is already signed")
		}
		return tx.UpdateContract(ctx, current.ContractID, map[string]any{
			"status":              models.StatusSignedElectronically,
			"signed_at":           now,
			"signature_ip":        ip,
			"signature_location":  location,
			"signature_reference": token,
		})
	})
	if err != nil {
		return nil, err
	}

	contract, err := s.contracts.FindContract(ctx, link.ContractID)
	if err != nil {
		return nil, err
	}
	s.notifySigned(contract, now)

	url, err := s.documents.Generate(ctx, contract, DocumentOptions{IncludeSignatureBlock: true, Now: now})
	if err != nil {
		s.logger.Error("Signed document generation failed",
			zap.String("contract_id", contract.ID),
			zap.Error(err))
		return nil, err
	}

	err = s.contracts.WithinTransaction(ctx, func(tx repository.ContractStore) error {
		if err := tx.UpdateContract(ctx, contract.ID, map[string]any{"signed_pdf_url": url}); err != nil {
			return err
		}
		return tx.DeleteSignLink(ctx, link.ID)
	})
	if err != nil {
		return nil, err
	}
	contract.SignedPDFURL = url

	s.logger.Info("Contract signed electronically",
		zap.String("contract_id", contract.ID),
		zap.String("ip", ip),
		zap.String("location", location))
	return contract, nil
}

func (s *SignLinkService) notifySigned(contract *models.Contract, at time.Time) {
	customer := ""
	if contract.Customer != nil {
		customer = strings.TrimSpace(contract.Customer.Firstname + " " + contract.Customer.Lastname)
	}
	event := notify.ContractSigned(contract.ID, contract.OrganizationID, contract.ContractNumber, customer, at)

	s.background(func(ctx context.Context) {
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("Failed to emit notification",
				zap.String("contract_id", contract.ID),
				zap.Error(err))
		}
	})
}

// GenerateManually renders the contract with an empty signature block for
// printing and moves it to PENDING. Signature metadata is untouched.
func (s *SignLinkService) GenerateManually(ctx context.Context, contractID string) (string, error) {
	unlock, err := s.lockContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	defer unlock()

	contract, err := s.contracts.FindContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	if contract.Status.IsSigned() {
		return "", apperr.Conflict("contract is already signed")
	}

	url, err := s.documents.Generate(ctx, contract, DocumentOptions{IncludeSignatureBlock: true, Now: s.now()})
	if err != nil {
		return "", err
	}

	if err := s.contracts.UpdateContract(ctx, contract.ID, map[string]any{"status": models.StatusPending}); err != nil {
		return "", err
	}
	return url, nil
}

// UploadSigned stores a PDF signed outside the platform verbatim and marks
// the contract SIGNED. Outstanding sign links are revoked.
func (s *SignLinkService) UploadSigned(ctx context.Context, contractID string, data []byte, contentType string) (*models.Contract, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	if len(data) > MaxSignedUploadSize {
		return nil, apperr.Validation("file exceeds the 15MB limit")
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/pdf" {
		return nil, apperr.Validation("only PDF files are accepted")
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, apperr.Validation("file content is not a PDF")
	}

	unlock, err := s.lockContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	contract, err := s.contracts.FindContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	url, err := s.store.Put(ctx, storage.UploadedObjectName(contract.ID, now), data, "application/pdf")
	if err != nil {
		return nil, apperr.Storage("failed to store signed document", err)
	}

	err = s.contracts.WithinTransaction(ctx, func(tx repository.ContractStore) error {
		if err := tx.UpdateContract(ctx, contract.ID, map[string]any{
			"status":         models.StatusSigned,
			"signed_at":      now,
			"signed_pdf_url": url,
		}); err != nil {
			return err
		}
		return tx.DeleteSignLinksByContract(ctx, contract.ID)
	})
	if err != nil {
		return nil, err
	}

	contract.Status = models.StatusSigned
	contract.SignedAt = &now
	contract.SignedPDFURL = url
	return contract, nil
}

// signatureFinalized reports whether the contract can no longer be signed
// through a link. An electronic signature without a stored document is still
// open so that a failed generation can be retried.
func signatureFinalized(c *models.Contract) bool {
	switch c.Status {
	case models.StatusSigned:
		return true
	case models.StatusSignedElectronically:
		return c.SignedPDFURL != ""
	default:
		return false
	}
}

// SweepExpired deletes links past their expiry.
func (s *SignLinkService) SweepExpired(ctx context.Context) (int64, error) {
	return s.contracts.DeleteExpiredSignLinks(ctx, s.now())
}
