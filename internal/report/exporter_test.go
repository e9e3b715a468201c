package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

func TestExporter_Export(t *testing.T) {
	expenses := []*entity.Expense{
		{
			ID:                    uuid.New(),
			EmployeeID:            uuid.New(),
			Date:                  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Category:              "travel",
			Description:           "client visit",
			AmountOriginal:        decimal.NewFromFloat(120.50),
			CurrencyOriginal:      "EUR",
			AmountCompanyCurrency: decimal.NewFromFloat(130.14),
			Status:                entity.StatusApproved,
		},
		{
			ID:                    uuid.New(),
			EmployeeID:            uuid.New(),
			Date:                  time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			Category:              "meals",
			Description:           "team lunch",
			AmountOriginal:        decimal.NewFromFloat(45.00),
			CurrencyOriginal:      "USD",
			AmountCompanyCurrency: decimal.NewFromFloat(45.00),
			Status:                entity.StatusPending,
		},
	}

	var buf bytes.Buffer
	exporter := NewExporter(zap.NewNop())
	require.NoError(t, exporter.Export(&buf, "USD", expenses))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	category, err := f.GetCellValue(sheetName, "D2")
	require.NoError(t, err)
	assert.Equal(t, "travel", category)

	status, err := f.GetCellValue(sheetName, "I3")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, status)

	totalLabel, err := f.GetCellValue(sheetName, "G4")
	require.NoError(t, err)
	assert.Equal(t, "Total (USD)", totalLabel)

	total, err := f.GetCellValue(sheetName, "H4")
	require.NoError(t, err)
	assert.Equal(t, "175.14", total)
}

func TestExporter_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewExporter(zap.NewNop())
	require.NoError(t, exporter.Export(&buf, "EUR", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue(sheetName, "H2")
	require.NoError(t, err)
	assert.Equal(t, "0", total)
}
