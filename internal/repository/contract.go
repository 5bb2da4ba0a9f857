// Package repository persists contracts, sign-links, templates and activity
// logs with gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/models"

	"gorm.io/gorm"
)

// ContractStore is the persistence surface of the signing workflow.
type ContractStore interface {
	FindContract(ctx context.Context, id string) (*models.Contract, error)
	UpdateContract(ctx context.Context, id string, fields map[string]any) error
	ListSignedContracts(ctx context.Context, organizationID string) ([]models.Contract, error)

	FindSignLinkByToken(ctx context.Context, token string) (*models.ContractSignLink, error)
	FindActiveSignLink(ctx context.Context, contractID string, now time.Time) (*models.ContractSignLink, error)
	CreateSignLink(ctx context.Context, link *models.ContractSignLink) error
	DeleteSignLink(ctx context.Context, id string) error
	DeleteSignLinksByContract(ctx context.Context, contractID string) error
	DeleteExpiredSignLinks(ctx context.Context, now time.Time) (int64, error)

	// WithinTransaction runs fn against a store bound to one transaction.
	WithinTransaction(ctx context.Context, fn func(ContractStore) error) error
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

var contractRelations = []string{
	"Organization",
	"Customer",
	"ContractType",
	"Package",
	"Dresses.Dress",
	"AddonLinks.Addon",
}

func preloadContract(db *gorm.DB, prefix string) *gorm.DB {
	for _, rel := range contractRelations {
		db = db.Preload(prefix + rel)
	}
	return db
}

func (r *ContractRepository) FindContract(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	err := preloadContract(r.db.WithContext(ctx), "").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, notFound(err, "contract")
	}
	return &contract, nil
}

func (r *ContractRepository) UpdateContract(ctx context.Context, id string, fields map[string]any) error {
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update contract %s: %w", id, err)
	}
	return nil
}

func (r *ContractRepository) ListSignedContracts(ctx context.Context, organizationID string) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("organization_id = ? AND status IN ?", organizationID,
			[]string{string(models.StatusSigned), string(models.StatusSignedElectronically)}).
		Order("signed_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list signed contracts: %w", err)
	}
	return contracts, nil
}

func (r *ContractRepository) FindSignLinkByToken(ctx context.Context, token string) (*models.ContractSignLink, error) {
	var link models.ContractSignLink
	err := preloadContract(r.db.WithContext(ctx).Preload("Contract"), "Contract.").
		Where("token = ?", token).
		First(&link).Error
	if err != nil {
		return nil, notFound(err, "sign link")
	}
	return &link, nil
}

func (r *ContractRepository) FindActiveSignLink(ctx context.Context, contractID string, now time.Time) (*models.ContractSignLink, error) {
	var link models.ContractSignLink
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND expires_at >= ?", contractID, now).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		return nil, notFound(err, "sign link")
	}
	return &link, nil
}

func (r *ContractRepository) CreateSignLink(ctx context.Context, link *models.ContractSignLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create sign link: %w", err)
	}
	return nil
}

func (r *ContractRepository) DeleteSignLink(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContractSignLink{}).Error; err != nil {
		return fmt.Errorf("failed to delete sign link: %w", err)
	}
	return nil
}

func (r *ContractRepository) DeleteSignLinksByContract(ctx context.Context, contractID string) error {
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.ContractSignLink{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete sign links for contract %s: %w", contractID, err)
	}
	return nil
}

func (r *ContractRepository) DeleteExpiredSignLinks(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.ContractSignLink{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sign links: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ContractRepository) WithinTransaction(ctx context.Context, fn func(ContractStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ContractRepository{db: tx})
	})
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}
