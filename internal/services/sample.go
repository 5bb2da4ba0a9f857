package services

import (
	"time"

	"DR-SIGN/internal/models"

	"gorm.io/datatypes"
)

// SampleContract is the fictitious contract used to preview templates.
func SampleContract(now time.Time) *models.Contract {
	start := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.UTC).AddDate(0, 0, 14)
	pkgID := "sample-package"
	return &models.Contract{
		ID:                   "sample-contract",
		ContractNumber:       "CTR-EXEMPLE-001",
		Status:               models.StatusDraft,
		StartDatetime:        start,
		EndDatetime:          start.AddDate(0, 0, 2),
		AccountTTC:           600,
		AccountPaidTTC:       300,
		CautionTTC:           1000,
		CautionPaidTTC:       1000,
		TotalPriceTTC:        1850,
		DepositPaymentMethod: "Carte bancaire",
		OrganizationID:       "sample-organization",
		PackageID:            &pkgID,
		CreatedAt:            now,
		Organization: &models.Organization{
			Name:    "Maison Exemple",
			Address: "12 rue de la Paix",
			City:    "Paris",
			ZipCode: "75002",
			Country: "France",
			Siret:   "123 456 789 00012",
		},
		Customer: &models.Customer{
			Firstname: "Amina",
			Lastname:  "Benali",
			Email:     "amina.benali@example.com",
			Phone:     "06 12 34 56 78",
			Address:   "4 avenue des Lilas",
			City:      "Lyon",
			ZipCode:   "69003",
			Country:   "France",
		},
		ContractType: &models.ContractType{Name: "Forfait Négafa"},
		Package: &models.ContractPackage{
			ID:       pkgID,
			Name:     "Forfait Prestige",
			PriceTTC: 1500,
			AddonIDs: datatypes.JSON(`["sample-addon-1"]`),
		},
		Dresses: []models.ContractDress{
			{Dress: &models.Dress{Name: "Caftan Yasmine", Reference: "CAF-021", Type: "Caftan", Size: "38", Color: "Émeraude", PricePerDayTTC: 150}},
			{Dress: &models.Dress{Name: "Takchita Nour", Reference: "TAK-007", Type: "Takchita", Size: "38", Color: "Or", PricePerDayTTC: 200}},
		},
		AddonLinks: []models.ContractAddonLink{
			{AddonID: "sample-addon-1", Addon: &models.ContractAddon{ID: "sample-addon-1", Name: "Maquillage", PriceTTC: 120}},
			{AddonID: "sample-addon-2", Addon: &models.ContractAddon{ID: "sample-addon-2", Name: "Photographe", PriceTTC: 350}},
		},
	}
}
