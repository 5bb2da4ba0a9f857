package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	StatusDraft                ContractStatus = "DRAFT"
	StatusPending              ContractStatus = "PENDING"
	StatusPendingSignature     ContractStatus = "PENDING_SIGNATURE"
	StatusSigned               ContractStatus = "SIGNED"
	StatusSignedElectronically ContractStatus = "SIGNED_ELECTRONICALLY"
)

// IsSigned reports whether the status is a terminal signed state.
func (s ContractStatus) IsSigned() bool {
	return s == StatusSigned || s == StatusSignedElectronically
}

type Organization struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	ZipCode   string         `json:"zip_code"`
	Country   string         `json:"country"`
	Siret     string         `json:"siret"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Customer struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index" json:"organization_id"`
	Firstname      string         `json:"firstname"`
	Lastname       string         `json:"lastname"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	ZipCode        string         `json:"zip_code"`
	Country        string         `json:"country"`
	Birthday       *time.Time     `json:"birthday,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type ContractType struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID *string        `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	Name           string         `gorm:"not null" json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type ContractPackage struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	PriceHT        float64        `gorm:"type:decimal(10,2)" json:"price_ht"`
	PriceTTC       float64        `gorm:"type:decimal(10,2)" json:"price_ttc"`
	AddonIDs       datatypes.JSON `json:"addon_ids"` // JSON array of included ContractAddon ids
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// IncludedAddonIDs decodes AddonIDs. A malformed column yields an empty set.
func (p *ContractPackage) IncludedAddonIDs() map[string]bool {
	ids := make(map[string]bool)
	if p == nil || len(p.AddonIDs) == 0 {
		return ids
	}
	var list []string
	if err := json.Unmarshal(p.AddonIDs, &list); err != nil {
		return ids
	}
	for _, id := range list {
		ids[id] = true
	}
	return ids
}

type Dress struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	Reference      string         `json:"reference"`
	Type           string         `json:"type"`
	Size           string         `json:"size"`
	Color          string         `json:"color"`
	Condition      string         `json:"condition"`
	PriceHT        float64        `gorm:"type:decimal(10,2)" json:"price_ht"`
	PriceTTC       float64        `gorm:"type:decimal(10,2)" json:"price_ttc"`
	PricePerDayHT  float64        `gorm:"type:decimal(10,2)" json:"price_per_day_ht"`
	PricePerDayTTC float64        `gorm:"type:decimal(10,2)" json:"price_per_day_ttc"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type ContractDress struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractID string `gorm:"type:varchar(36);index;not null" json:"contract_id"`
	DressID    string `gorm:"type:varchar(36);index;not null" json:"dress_id"`
	Dress      *Dress `gorm:"foreignKey:DressID" json:"dress,omitempty"`
}

type ContractAddon struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `json:"description"`
	PriceHT        float64        `gorm:"type:decimal(10,2)" json:"price_ht"`
	PriceTTC       float64        `gorm:"type:decimal(10,2)" json:"price_ttc"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type ContractAddonLink struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractID string         `gorm:"type:varchar(36);index;not null" json:"contract_id"`
	AddonID    string         `gorm:"type:varchar(36);index;not null" json:"addon_id"`
	Addon      *ContractAddon `gorm:"foreignKey:AddonID" json:"addon,omitempty"`
}

type Contract struct {
	ID                   string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractNumber       string         `gorm:"type:varchar(64);index" json:"contract_number"`
	Status               ContractStatus `gorm:"type:varchar(32);not null;default:'DRAFT'" json:"status"`
	StartDatetime        time.Time      `json:"start_datetime"`
	EndDatetime          time.Time      `json:"end_datetime"`
	AccountHT            float64        `gorm:"type:decimal(10,2)" json:"account_ht"`
	AccountTTC           float64        `gorm:"type:decimal(10,2)" json:"account_ttc"`
	AccountPaidHT        float64        `gorm:"type:decimal(10,2)" json:"account_paid_ht"`
	AccountPaidTTC       float64        `gorm:"type:decimal(10,2)" json:"account_paid_ttc"`
	CautionHT            float64        `gorm:"type:decimal(10,2)" json:"caution_ht"`
	CautionTTC           float64        `gorm:"type:decimal(10,2)" json:"caution_ttc"`
	CautionPaidHT        float64        `gorm:"type:decimal(10,2)" json:"caution_paid_ht"`
	CautionPaidTTC       float64        `gorm:"type:decimal(10,2)" json:"caution_paid_ttc"`
	TotalPriceHT         float64        `gorm:"type:decimal(10,2)" json:"total_price_ht"`
	TotalPriceTTC        float64        `gorm:"type:decimal(10,2)" json:"total_price_ttc"`
	DepositPaymentMethod string         `json:"deposit_payment_method"`
	SignedAt             *time.Time     `json:"signed_at,omitempty"`
	SignatureIP          string         `gorm:"type:varchar(64)" json:"signature_ip,omitempty"`
	SignatureLocation    string         `json:"signature_location,omitempty"`
	SignatureReference   string         `gorm:"type:varchar(128)" json:"signature_reference,omitempty"`
	SignedPDFURL         string         `gorm:"column:signed_pdf_url" json:"signed_pdf_url,omitempty"`
	TemplateID           *string        `gorm:"type:varchar(36);index" json:"template_id,omitempty"`
	OrganizationID       string         `gorm:"type:varchar(36);index;not null" json:"organization_id"`
	CustomerID           string         `gorm:"type:varchar(36);index" json:"customer_id"`
	ContractTypeID       string         `gorm:"type:varchar(36);index" json:"contract_type_id"`
	PackageID            *string        `gorm:"type:varchar(36);index" json:"package_id,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	CreatedBy            *string        `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
	UpdatedBy            *string        `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy            *string        `gorm:"type:varchar(36)" json:"deleted_by,omitempty"`

	Organization *Organization       `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Customer     *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ContractType *ContractType       `gorm:"foreignKey:ContractTypeID" json:"contract_type,omitempty"`
	Package      *ContractPackage    `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Dresses      []ContractDress     `gorm:"foreignKey:ContractID" json:"dresses,omitempty"`
	AddonLinks   []ContractAddonLink `gorm:"foreignKey:ContractID" json:"addon_links,omitempty"`
}

// ContractSignLink is a single-use capability granting an unauthenticated
// customer the right to view and sign one contract until ExpiresAt.
type ContractSignLink struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractID string    `gorm:"type:varchar(36);index;not null" json:"contract_id"`
	CustomerID string    `gorm:"type:varchar(36);index" json:"customer_id"`
	Token      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	ExpiresAt  time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// Expired reports whether the link can no longer be used at now.
func (l *ContractSignLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
