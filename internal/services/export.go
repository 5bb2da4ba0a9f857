package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"DR-SIGN/internal/contractdata"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/repository"

	"github.com/xuri/excelize/v2"
)

const signatureSheet = "Signatures"

var signatureHeaders = []string{
	"Contrat", "Client", "Email", "Statut", "Signé le", "Adresse IP", "Localisation", "Référence", "PDF",
}

var signatureColumnWidths = []float64{18, 24, 28, 24, 18, 16, 24, 46, 60}

// SignatureExporter builds the spreadsheet of signed contracts.
type SignatureExporter struct {
	contracts repository.ContractStore
	location  *time.Location
}

func NewSignatureExporter(contracts repository.ContractStore, location *time.Location) *SignatureExporter {
	if location == nil {
		location = time.UTC
	}
	return &SignatureExporter{contracts: contracts, location: location}
}

func (e *SignatureExporter) Export(ctx context.Context, organizationID string) ([]byte, error) {
	contracts, err := e.contracts.ListSignedContracts(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return e.workbook(contracts)
}

func (e *SignatureExporter) workbook(contracts []models.Contract) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(signatureSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range signatureHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(signatureSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(signatureSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(signatureSheet, name, name, signatureColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, c := range contracts {
		row := i + 2
		customer, email := "", ""
		if c.Customer != nil {
			customer = strings.TrimSpace(c.Customer.Firstname + " " + c.Customer.Lastname)
			email = c.Customer.Email
		}
		signedAt := ""
		if c.SignedAt != nil {
			signedAt = contractdata.FormatDateTime(*c.SignedAt, e.location)
		}
		values := []any{
			c.ContractNumber, customer, email, string(c.Status), signedAt,
			c.SignatureIP, c.SignatureLocation, c.SignatureReference, c.SignedPDFURL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(signatureSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(signatureSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
