package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"DR-SIGN/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSignatureExporter(t *testing.T) {
	signedAt := signNow
	signed := baseContract()
	signed.Status = models.StatusSignedElectronically
	signed.SignedAt = &signedAt
	signed.SignatureIP = "203.0.113.7"
	signed.SignatureLocation = "Paris, France"
	signed.SignatureReference = "tok"
	signed.SignedPDFURL = "https://storage.example.com/bucket/contracts/c-1/signed_1.pdf"

	draft := baseContract()
	draft.ID = "c-2"
	draft.ContractNumber = "CTR-002"

	exporter := NewSignatureExporter(newMemContractStore(signed, draft), time.UTC)
	data, err := exporter.Export(context.Background(), "org-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(signatureSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, signatureHeaders, rows[0])
	assert.Equal(t, []string{
		"CTR-001", "Amina Benali", "amina@example.com", "SIGNED_ELECTRONICALLY", "15/03/2024 14:30",
		"203.0.113.7", "Paris, France", "tok", "https://storage.example.com/bucket/contracts/c-1/signed_1.pdf",
	}, rows[1])
}
